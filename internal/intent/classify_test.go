package intent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/cursorctl/api/schemas"
)

func setupClassifierTest(t *testing.T) *Classifier {
	t.Helper()
	return NewClassifier(DefaultVocabulary())
}

func classify(c *Classifier, raw string) schemas.Intent {
	return c.Classify(Normalize(raw))
}

func TestClassify_Conversational(t *testing.T) {
	c := setupClassifierTest(t)

	testCases := []struct {
		input string
		want  schemas.IntentKind
	}{
		{"hello", schemas.IntentGreeting},
		{"hi!", schemas.IntentGreeting},
		{"Hey there", schemas.IntentGreeting},
		{"good morning", schemas.IntentGreeting},
		{"thanks", schemas.IntentGratitude},
		{"thank you so much", schemas.IntentGratitude},
		{"ty", schemas.IntentGratitude},
		{"help", schemas.IntentHelpRequest},
		{"What can you do?", schemas.IntentHelpRequest},
		{"bye", schemas.IntentFarewell},
		{"thank you for your help", schemas.IntentGratitude},
		{"thanks so much for that", schemas.IntentGratitude},
		{"thanks a lot for moving it over there", schemas.IntentGratitude},
		{"can you show me what you can do", schemas.IntentHelpRequest},
		{"hey so what can you do exactly for someone like me", schemas.IntentHelpRequest},
		{"ok bye for now", schemas.IntentFarewell},
		{"well hello there friend", schemas.IntentGreeting},
		{"what is the weather like today", schemas.IntentUnknownChat},
		{"hello my good friend how are you", schemas.IntentUnknownChat},
		{"", schemas.IntentUnknownChat},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got := classify(c, tc.input)
			assert.Equal(t, tc.want, got.Kind)
			assert.False(t, got.IsActionable())
		})
	}
}

func TestClassify_VerbBeatsGreeting(t *testing.T) {
	c := setupClassifierTest(t)

	got := classify(c, "type hello world")
	require.Equal(t, schemas.IntentTypeText, got.Kind)
	assert.Equal(t, "hello world", got.Text)

	got = classify(c, "hi, move to center")
	assert.Equal(t, schemas.IntentMoveCursorNamed, got.Kind)

	got = classify(c, "thanks, now click")
	assert.Equal(t, schemas.IntentClick, got.Kind)
}

func TestClassify_Move(t *testing.T) {
	c := setupClassifierTest(t)

	t.Run("named positions", func(t *testing.T) {
		cases := map[string]schemas.NamedPosition{
			"move cursor to center":            schemas.PositionCenter,
			"move the mouse to the top left":   schemas.PositionTopLeft,
			"Move to top-right corner":         schemas.PositionTopRight,
			"move to the bottom left corner":   schemas.PositionBottomLeft,
			"move cursor to lower right":       schemas.PositionBottomRight,
			"move to top center":               schemas.PositionTopCenter,
			"move to the bottom":               schemas.PositionBottomCenter,
			"move to left center":              schemas.PositionLeftCenter,
			"move cursor to the right side":    schemas.PositionRightCenter,
			"move to the middle of the screen": schemas.PositionCenter,
		}
		for input, want := range cases {
			got := classify(c, input)
			assert.Equal(t, schemas.IntentMoveCursorNamed, got.Kind, input)
			assert.Equal(t, want, got.Position, input)
		}
	})

	t.Run("absolute coordinates", func(t *testing.T) {
		for _, input := range []string{
			"move cursor to position 500, 300",
			"move to 500 300",
			"move mouse at (500,300)",
		} {
			got := classify(c, input)
			require.Equal(t, schemas.IntentMoveCursorAbsolute, got.Kind, input)
			assert.Equal(t, 500, got.X, input)
			assert.Equal(t, 300, got.Y, input)
		}
	})

	t.Run("trailing click directive chains a click", func(t *testing.T) {
		got := classify(c, "move to center and double click")
		require.Equal(t, schemas.IntentMoveCursorNamed, got.Kind)
		require.Len(t, got.Chain, 1)
		assert.Equal(t, schemas.IntentClick, got.Chain[0].Kind)
		assert.Equal(t, 2, got.Chain[0].Count)
	})

	t.Run("failures downgrade to unrecognized", func(t *testing.T) {
		cases := map[string]error{
			"move cursor to position": ErrMissingCoordinates,
			"move to 500":             ErrMissingCoordinates,
			"move to -5, 10":          ErrInvalidCoordinates,
			"move somewhere nice":     ErrUnrecognizedPosition,
		}
		for input, want := range cases {
			got, err := c.Interpret(Normalize(input))
			assert.Equal(t, schemas.IntentUnrecognized, got.Kind, input)
			assert.Equal(t, input, got.OriginalText)
			assert.NotEmpty(t, got.Reason)
			assert.True(t, errors.Is(err, want), "%s: got %v", input, err)

			var ee *ExtractionError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, "move", ee.Verb)
		}
	})
}

func TestClassify_Click(t *testing.T) {
	c := setupClassifierTest(t)

	testCases := []struct {
		input  string
		button schemas.MouseButton
		count  int
		target *schemas.Target
	}{
		{"click", schemas.ButtonLeft, 1, nil},
		{"please click on it", schemas.ButtonLeft, 1, nil},
		{"right click", schemas.ButtonRight, 1, nil},
		{"right-click", schemas.ButtonRight, 1, nil},
		{"middle click", schemas.ButtonMiddle, 1, nil},
		{"double click", schemas.ButtonLeft, 2, nil},
		{"triple click", schemas.ButtonLeft, 3, nil},
		{"double click at center", schemas.ButtonLeft, 2, &schemas.Target{Position: schemas.PositionCenter}},
		{"click at 10, 20", schemas.ButtonLeft, 1, &schemas.Target{Coordinates: &schemas.Point{X: 10, Y: 20}}},
		{"click twice", schemas.ButtonLeft, 2, nil},
		{"click once", schemas.ButtonLeft, 1, nil},
		{"click at 10, 20 thrice", schemas.ButtonLeft, 3, &schemas.Target{Coordinates: &schemas.Point{X: 10, Y: 20}}},
		{"right click 4 times at center", schemas.ButtonRight, 4, &schemas.Target{Position: schemas.PositionCenter}},
		{"double click two times", schemas.ButtonLeft, 4, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got := classify(c, tc.input)
			require.Equal(t, schemas.IntentClick, got.Kind)
			assert.Equal(t, tc.button, got.Button)
			assert.Equal(t, tc.count, got.Count)
			assert.Equal(t, tc.target, got.Target)
		})
	}

	t.Run("half a coordinate pair is an error", func(t *testing.T) {
		_, err := c.Interpret(Normalize("click at 10"))
		assert.ErrorIs(t, err, ErrMissingCoordinates)
	})

	t.Run("zero repetitions is an error", func(t *testing.T) {
		got, err := c.Interpret(Normalize("click 0 times"))
		assert.Equal(t, schemas.IntentUnrecognized, got.Kind)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})
}

func TestClassify_TypeText(t *testing.T) {
	c := setupClassifierTest(t)

	t.Run("unquoted payload keeps case", func(t *testing.T) {
		got := classify(c, "Type Hello World")
		require.Equal(t, schemas.IntentTypeText, got.Kind)
		assert.Equal(t, "Hello World", got.Text)
		assert.Empty(t, got.Chain)
	})

	t.Run("quoted payload is verbatim", func(t *testing.T) {
		got := classify(c, `please type "Hello,  World!" for me`)
		require.Equal(t, schemas.IntentTypeText, got.Kind)
		assert.Equal(t, "Hello,  World!", got.Text)
	})

	t.Run("verbs inside the payload are text", func(t *testing.T) {
		got := classify(c, "type click here to move")
		require.Equal(t, schemas.IntentTypeText, got.Kind)
		assert.Equal(t, "click here to move", got.Text)
	})

	t.Run("trailing enter directive chains a key press", func(t *testing.T) {
		got := classify(c, "type hello and press enter")
		require.Equal(t, schemas.IntentTypeText, got.Kind)
		assert.Equal(t, "hello", got.Text)
		require.Len(t, got.Chain, 1)
		assert.Equal(t, schemas.Intent{Kind: schemas.IntentPressKey, Keys: []string{"enter"}}, got.Chain[0])
	})

	t.Run("directive inside quotes is text", func(t *testing.T) {
		got := classify(c, `type "go and press enter"`)
		require.Equal(t, schemas.IntentTypeText, got.Kind)
		assert.Equal(t, "go and press enter", got.Text)
		assert.Empty(t, got.Chain)
	})

	t.Run("unquoted payload keeps punctuation", func(t *testing.T) {
		cases := map[string]string{
			"type Hello world!":               "Hello world!",
			"type what time is it?":           "what time is it?",
			"type a , b":                      "a , b",
			"type :)":                         ":)",
			"type done. and press enter":      "done.",
			"please type   spaced    out ...": "spaced    out ...",
		}
		for input, want := range cases {
			got, err := c.Interpret(Normalize(input))
			require.NoError(t, err, input)
			require.Equal(t, schemas.IntentTypeText, got.Kind, input)
			assert.Equal(t, want, got.Text, input)
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		got, err := c.Interpret(Normalize("type"))
		assert.Equal(t, schemas.IntentUnrecognized, got.Kind)
		assert.ErrorIs(t, err, ErrMissingText)
	})
}

func TestClassify_PressKey(t *testing.T) {
	c := setupClassifierTest(t)

	cases := map[string][]string{
		"press enter":            {"enter"},
		"hit return":             {"enter"},
		"press the escape key":   {"escape"},
		"press control+c":        {"ctrl", "c"},
		"press ctrl + shift + t": {"ctrl", "shift", "t"},
		"press page up":          {"pageup"},
		"press f5":               {"f5"},
		"copy":                   {"ctrl", "c"},
		"paste it":               {"ctrl", "v"},
		"select all":             {"ctrl", "a"},
		"save the file":          {"ctrl", "s"},
		"press copy":             {"ctrl", "c"},
	}
	for input, want := range cases {
		got := classify(c, input)
		require.Equal(t, schemas.IntentPressKey, got.Kind, input)
		assert.Equal(t, want, got.Keys, input)
	}

	_, err := c.Interpret(Normalize("press the frobnicate key"))
	require.ErrorIs(t, err, ErrUnknownKey)
	assert.Contains(t, err.Error(), "frobnicate")
}

func TestClassify_Scroll(t *testing.T) {
	c := setupClassifierTest(t)

	got := classify(c, "scroll down")
	require.Equal(t, schemas.IntentScroll, got.Kind)
	assert.Equal(t, schemas.ScrollDown, got.Direction)
	assert.Equal(t, DefaultScrollAmount, got.Amount)

	got = classify(c, "scroll up 10 times")
	assert.Equal(t, schemas.ScrollUp, got.Direction)
	assert.Equal(t, 10, got.Amount)

	got = classify(c, "scroll right 2")
	assert.Equal(t, schemas.ScrollRight, got.Direction)
	assert.Equal(t, 2, got.Amount)

	_, err := c.Interpret(Normalize("scroll a bit"))
	assert.ErrorIs(t, err, ErrMissingDirection)

	_, err = c.Interpret(Normalize("scroll down 0"))
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestClassify_Drag(t *testing.T) {
	c := setupClassifierTest(t)

	got := classify(c, "drag to 800, 600")
	require.Equal(t, schemas.IntentDrag, got.Kind)
	require.NotNil(t, got.Target)
	assert.Equal(t, &schemas.Point{X: 800, Y: 600}, got.Target.Coordinates)

	got = classify(c, "drag it to the bottom right")
	require.Equal(t, schemas.IntentDrag, got.Kind)
	assert.Equal(t, schemas.PositionBottomRight, got.Target.Position)

	_, err := c.Interpret(Normalize("drag"))
	assert.ErrorIs(t, err, ErrUnrecognizedPosition)
}

func TestClassify_Unrecognized(t *testing.T) {
	c := setupClassifierTest(t)

	got, err := c.Interpret(Normalize("do something random"))
	assert.Equal(t, schemas.IntentUnrecognized, got.Kind)
	assert.Equal(t, "do something random", got.OriginalText)
	assert.ErrorIs(t, err, ErrUnsupportedCommand)
	assert.False(t, got.IsActionable())

	got, err = c.Interpret(Normalize("could you open the browser"))
	assert.Equal(t, schemas.IntentUnrecognized, got.Kind)
	assert.ErrorIs(t, err, ErrUnsupportedCommand)

	got = classify(c, "I like turtles")
	assert.Equal(t, schemas.IntentUnknownChat, got.Kind, "small talk without an imperative stays chat")
}

func TestClassify_Pure(t *testing.T) {
	c := setupClassifierTest(t)
	inputs := []string{"hello", "move to center", "type abc", "press enter", "blah"}
	for _, in := range inputs {
		first := classify(c, in)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, classify(c, in))
		}
	}
}
