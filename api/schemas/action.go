package schemas

import "fmt"

// -- Action Schemas --

// ActionType categorizes an atomic input-device operation.
type ActionType string

const (
	ActionMoveTo     ActionType = "MOVE_TO"
	ActionClickAt    ActionType = "CLICK_AT"
	ActionTypeChars  ActionType = "TYPE_CHARS"
	ActionKeyChord   ActionType = "KEY_CHORD"
	ActionScrollBy   ActionType = "SCROLL_BY"
	ActionButtonDown ActionType = "BUTTON_DOWN"
	ActionButtonUp   ActionType = "BUTTON_UP"
)

// Action carries only resolved, bounds-checked values. Fields not relevant to Type are zero.
type Action struct {
	Type ActionType `json:"type"`

	X          int         `json:"x,omitempty"`
	Y          int         `json:"y,omitempty"`
	DurationMs int         `json:"duration_ms,omitempty"`
	Button     MouseButton `json:"button,omitempty"`
	Count      int         `json:"count,omitempty"`
	Text       string      `json:"text,omitempty"`
	IntervalMs int         `json:"interval_ms,omitempty"`
	Keys       []string    `json:"keys,omitempty"`
	DX         int         `json:"dx,omitempty"`
	DY         int         `json:"dy,omitempty"`
}

// MoveTo builds a pointer move to (x, y) over durationMs.
func MoveTo(x, y, durationMs int) Action {
	return Action{Type: ActionMoveTo, X: x, Y: y, DurationMs: durationMs}
}

// ClickAt builds count clicks of button at the current pointer position.
func ClickAt(button MouseButton, count int) Action {
	return Action{Type: ActionClickAt, Button: button, Count: count}
}

// TypeChars builds a typing action paced at intervalMs per character.
func TypeChars(text string, intervalMs int) Action {
	return Action{Type: ActionTypeChars, Text: text, IntervalMs: intervalMs}
}

// KeyChord builds a chord pressed in order and released in reverse.
func KeyChord(keys ...string) Action {
	return Action{Type: ActionKeyChord, Keys: keys}
}

// ScrollBy builds a wheel gesture. Positive DY scrolls up, positive DX scrolls right.
func ScrollBy(dx, dy int) Action {
	return Action{Type: ActionScrollBy, DX: dx, DY: dy}
}

// ButtonDown presses and holds button.
func ButtonDown(button MouseButton) Action {
	return Action{Type: ActionButtonDown, Button: button}
}

// ButtonUp releases button.
func ButtonUp(button MouseButton) Action {
	return Action{Type: ActionButtonUp, Button: button}
}

// Units is the number of discrete device operations the action is made of.
// Partial failures are reported against this count.
func (a Action) Units() int {
	switch a.Type {
	case ActionClickAt:
		return a.Count
	case ActionTypeChars:
		return len([]rune(a.Text))
	case ActionScrollBy:
		return abs(a.DX) + abs(a.DY)
	default:
		return 1
	}
}

func (a Action) String() string {
	switch a.Type {
	case ActionMoveTo:
		return fmt.Sprintf("MoveTo(%d,%d,%dms)", a.X, a.Y, a.DurationMs)
	case ActionClickAt:
		return fmt.Sprintf("ClickAt(%s,x%d)", a.Button, a.Count)
	case ActionTypeChars:
		return fmt.Sprintf("TypeChars(%q,%dms)", a.Text, a.IntervalMs)
	case ActionKeyChord:
		return fmt.Sprintf("KeyChord(%v)", a.Keys)
	case ActionScrollBy:
		return fmt.Sprintf("ScrollBy(%d,%d)", a.DX, a.DY)
	case ActionButtonDown, ActionButtonUp:
		return fmt.Sprintf("%s(%s)", a.Type, a.Button)
	}
	return string(a.Type)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
