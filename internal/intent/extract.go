package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xkilldash9x/cursorctl/api/schemas"
)

// DefaultScrollAmount is used when a scroll command names no count.
const DefaultScrollAmount = 3

var (
	numberPattern    = regexp.MustCompile(`-?\d+`)
	targetKeyword    = regexp.MustCompile(`\b(?:at|on|to|over|position)\b`)
	enterDirective   = regexp.MustCompile(`\s(?:and then|and|then)\s+(?:press|hit)\s+(?:enter|return)$`)
	clickDirective   = regexp.MustCompile(`\s(?:and then|and|then)\s+(?:(double|triple|right|middle)[ -]?)?click$`)
	scrollDirections = map[string]schemas.ScrollDirection{
		"up": schemas.ScrollUp, "upward": schemas.ScrollUp, "upwards": schemas.ScrollUp,
		"down": schemas.ScrollDown, "downward": schemas.ScrollDown, "downwards": schemas.ScrollDown,
		"left": schemas.ScrollLeft, "right": schemas.ScrollRight,
	}
	quoteCharacters = `"'“”`

	repeatPattern = regexp.MustCompile(`\b(once|twice|thrice|(\d+|two|three|four|five) times)\b`)
	repeatWords   = map[string]int{"once": 1, "twice": 2, "thrice": 3, "two": 2, "three": 3, "four": 4, "five": 5}
)

func clickExtractor(button schemas.MouseButton, count int) func(*Classifier, Normalized, int, string) (schemas.Intent, error) {
	return func(c *Classifier, n Normalized, after int, _ string) (schemas.Intent, error) {
		rest, repeat, err := extractRepeat(n.textAfter(after), "click")
		if err != nil {
			return schemas.Intent{}, err
		}
		target, err := c.findTarget(rest, "click", false)
		if err != nil {
			return schemas.Intent{}, err
		}
		return schemas.Intent{Kind: schemas.IntentClick, Button: button, Count: count * repeat, Target: target}, nil
	}
}

// extractRepeat removes a repetition phrase ("twice", "3 times") from rest and returns the
// remaining text with the repetition, which is 1 when none is given.
func extractRepeat(rest, verb string) (string, int, error) {
	loc := repeatPattern.FindStringSubmatchIndex(rest)
	if loc == nil {
		return rest, 1, nil
	}
	word := submatch(rest, loc, 2)
	if word == "" {
		word = submatch(rest, loc, 1)
	}
	n, ok := repeatWords[word]
	if !ok {
		v, err := strconv.Atoi(word)
		if err != nil || v <= 0 {
			return "", 0, extractionError(verb, ErrInvalidAmount, "%q", submatch(rest, loc, 1))
		}
		n = v
	}
	return strings.TrimSpace(rest[:loc[0]] + " " + rest[loc[1]:]), n, nil
}

func extractMove(c *Classifier, n Normalized, after int, _ string) (schemas.Intent, error) {
	rest := n.textAfter(after)

	var chain []schemas.Intent
	if loc := clickDirective.FindStringSubmatchIndex(" " + rest); loc != nil {
		click := clickFromModifier(strings.TrimSpace(submatch(" "+rest, loc, 1)))
		chain = append(chain, click)
		rest = strings.TrimSpace((" " + rest)[:loc[0]])
	}

	target, err := c.findTarget(rest, "move", true)
	if err != nil {
		return schemas.Intent{}, err
	}

	in := schemas.Intent{Chain: chain}
	if target.Coordinates != nil {
		in.Kind = schemas.IntentMoveCursorAbsolute
		in.X, in.Y = target.Coordinates.X, target.Coordinates.Y
	} else {
		in.Kind = schemas.IntentMoveCursorNamed
		in.Position = target.Position
	}
	return in, nil
}

func extractDrag(c *Classifier, n Normalized, after int, _ string) (schemas.Intent, error) {
	target, err := c.findTarget(n.textAfter(after), "drag", true)
	if err != nil {
		return schemas.Intent{}, err
	}
	return schemas.Intent{Kind: schemas.IntentDrag, Button: schemas.ButtonLeft, Target: target}, nil
}

func extractType(c *Classifier, n Normalized, after int, _ string) (schemas.Intent, error) {
	end := len(n.Tokens)
	var chain []schemas.Intent

	if loc := enterDirective.FindStringIndex(n.Text); loc != nil {
		start := n.tokenAt(loc[0] + 1)
		if start > after && !rawHasQuote(n.Tokens[start:]) {
			end = start
			chain = append(chain, schemas.Intent{Kind: schemas.IntentPressKey, Keys: []string{"enter"}})
		}
	}

	text, quoted := n.longestQuote()
	if !quoted {
		text = n.rawAfter(after, end)
	}
	if text == "" {
		return schemas.Intent{}, extractionError("type", ErrMissingText, "say what to type, for example: type \"hello\"")
	}
	return schemas.Intent{Kind: schemas.IntentTypeText, Text: text, Chain: chain}, nil
}

func extractPress(c *Classifier, n Normalized, after int, _ string) (schemas.Intent, error) {
	keys, err := c.vocab.ParseKeyExpression(n.textAfter(after))
	if err != nil {
		return schemas.Intent{}, err
	}
	return schemas.Intent{Kind: schemas.IntentPressKey, Keys: keys}, nil
}

func extractHotkey(c *Classifier, _ Normalized, _ int, match string) (schemas.Intent, error) {
	keys, ok := c.vocab.Hotkey(match)
	if !ok {
		return schemas.Intent{}, extractionError("press", ErrUnknownKey, "%q", match)
	}
	return schemas.Intent{Kind: schemas.IntentPressKey, Keys: keys}, nil
}

func extractScroll(_ *Classifier, n Normalized, after int, _ string) (schemas.Intent, error) {
	in := schemas.Intent{Kind: schemas.IntentScroll, Amount: DefaultScrollAmount}
	counted := false

	for _, w := range strings.Fields(n.textAfter(after)) {
		if in.Direction == "" {
			if dir, ok := scrollDirections[w]; ok {
				in.Direction = dir
				continue
			}
		}
		if !counted && numberPattern.MatchString(w) {
			amount, err := strconv.Atoi(numberPattern.FindString(w))
			if err != nil || amount <= 0 {
				return schemas.Intent{}, extractionError("scroll", ErrInvalidAmount, "%q", w)
			}
			in.Amount, counted = amount, true
		}
	}
	if in.Direction == "" {
		return schemas.Intent{}, extractionError("scroll", ErrMissingDirection, "say up or down")
	}
	return in, nil
}

// findTarget resolves a named position or absolute coordinates in rest. When required is false
// a target is only looked for after a positional keyword and its absence is not an error.
func (c *Classifier) findTarget(rest, verb string, required bool) (*schemas.Target, error) {
	scope := rest
	if loc := targetKeyword.FindStringIndex(rest); loc != nil {
		scope = rest[loc[0]:]
	} else if !required {
		return nil, nil
	}

	if pos, ok := c.vocab.FindPosition(scope); ok {
		return &schemas.Target{Position: pos}, nil
	}

	numbers := numberPattern.FindAllString(scope, -1)
	if len(numbers) == 0 {
		if strings.Contains(scope, "position") {
			return nil, extractionError(verb, ErrMissingCoordinates, "expected two numbers such as 500, 300")
		}
		if !required {
			return nil, nil
		}
		return nil, extractionError(verb, ErrUnrecognizedPosition, "%q", strings.TrimSpace(rest))
	}

	point, err := parsePoint(verb, numbers)
	if err != nil {
		return nil, err
	}
	return &schemas.Target{Coordinates: &point}, nil
}

func parsePoint(verb string, numbers []string) (schemas.Point, error) {
	if len(numbers) < 2 {
		return schemas.Point{}, extractionError(verb, ErrMissingCoordinates, "found %d number, need x and y", len(numbers))
	}
	x, errX := strconv.Atoi(numbers[0])
	y, errY := strconv.Atoi(numbers[1])
	if errX != nil || errY != nil {
		return schemas.Point{}, extractionError(verb, ErrInvalidCoordinates, "%s, %s", numbers[0], numbers[1])
	}
	if x < 0 || y < 0 {
		return schemas.Point{}, extractionError(verb, ErrInvalidCoordinates, "%d, %d is negative", x, y)
	}
	return schemas.Point{X: x, Y: y}, nil
}

func clickFromModifier(modifier string) schemas.Intent {
	click := schemas.Intent{Kind: schemas.IntentClick, Button: schemas.ButtonLeft, Count: 1}
	switch modifier {
	case "double":
		click.Count = 2
	case "triple":
		click.Count = 3
	case "right":
		click.Button = schemas.ButtonRight
	case "middle":
		click.Button = schemas.ButtonMiddle
	}
	return click
}

func submatch(s string, loc []int, group int) string {
	if 2*group+1 >= len(loc) || loc[2*group] < 0 {
		return ""
	}
	return s[loc[2*group]:loc[2*group+1]]
}

func rawHasQuote(tokens []Token) bool {
	for _, t := range tokens {
		if strings.ContainsAny(t.Raw, quoteCharacters) {
			return true
		}
	}
	return false
}
