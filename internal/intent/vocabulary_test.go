package intent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xkilldash9x/cursorctl/api/schemas"
)

func TestDefaultVocabulary(t *testing.T) {
	v := DefaultVocabulary()

	assert.Same(t, v, DefaultVocabulary(), "built-in tables are parsed once")
	assert.Contains(t, v.Greetings, "hello")
	assert.Len(t, v.Positions, len(schemas.NamedPositions))

	chord, ok := v.Hotkey("copy")
	require.True(t, ok)
	assert.Equal(t, []string{"ctrl", "c"}, chord)
}

func TestLookupKey(t *testing.T) {
	v := DefaultVocabulary()

	cases := map[string]string{
		"Control": "ctrl",
		"return":  "enter",
		"esc":     "escape",
		"page up": "pageup",
		"option":  "alt",
		"f12":     "f12",
		"q":       "q",
		"7":       "7",
	}
	for in, want := range cases {
		got, ok := v.LookupKey(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "+", "hyper", "f13"} {
		_, ok := v.LookupKey(in)
		assert.False(t, ok, in)
	}
}

func TestFindPosition(t *testing.T) {
	v := DefaultVocabulary()

	pos, ok := v.FindPosition("to the top left corner please")
	require.True(t, ok)
	assert.Equal(t, schemas.PositionTopLeft, pos)

	pos, ok = v.FindPosition("center or top right")
	require.True(t, ok)
	assert.Equal(t, schemas.PositionCenter, pos, "earliest alias wins")

	_, ok = v.FindPosition("somewhere over there")
	assert.False(t, ok)

	_, ok = v.FindPosition("topology")
	assert.False(t, ok, "aliases match whole words only")
}

func TestLoadVocabulary(t *testing.T) {
	t.Run("empty path uses defaults", func(t *testing.T) {
		v, err := LoadVocabulary("")
		require.NoError(t, err)
		assert.Same(t, DefaultVocabulary(), v)
	})

	t.Run("overlay extends tables", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vocab.yaml")
		overlay := []byte(`
greetings: [ahoy]
hotkeys:
  find: [ctrl, f]
positions:
  center: [bullseye]
`)
		require.NoError(t, os.WriteFile(path, overlay, 0o600))

		v, err := LoadVocabulary(path)
		require.NoError(t, err)

		assert.Equal(t, []string{"ahoy"}, v.Greetings, "lists are replaced")
		chord, ok := v.Hotkey("find")
		require.True(t, ok)
		assert.Equal(t, []string{"ctrl", "f"}, chord)
		_, ok = v.Hotkey("copy")
		assert.True(t, ok, "maps are merged")

		pos, ok := v.FindPosition("move to the bullseye")
		require.True(t, ok)
		assert.Equal(t, schemas.PositionCenter, pos)

		c := NewClassifier(v)
		assert.Equal(t, schemas.IntentGreeting, c.Classify(Normalize("ahoy")).Kind)
		assert.Equal(t, schemas.IntentUnknownChat, c.Classify(Normalize("hello")).Kind)
	})

	t.Run("rejects unknown positions", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vocab.yaml")
		require.NoError(t, os.WriteFile(path, []byte("positions:\n  upside down: [flip]\n"), 0o600))

		_, err := LoadVocabulary(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown position")
	})

	t.Run("rejects hotkeys with unknown keys", func(t *testing.T) {
		_, err := ParseVocabulary([]byte("keys:\n  ctrl: [ctrl]\nhotkeys:\n  launch: [hyper, l]\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown key "hyper"`)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		_, err := ParseVocabulary([]byte("greetins: [hi]\n"))
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadVocabulary(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
