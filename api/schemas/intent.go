package schemas

// -- Intent Schemas --

// IntentKind tags the variant carried by an Intent.
type IntentKind string

const (
	IntentGreeting           IntentKind = "GREETING"
	IntentGratitude          IntentKind = "GRATITUDE"
	IntentHelpRequest        IntentKind = "HELP_REQUEST"
	IntentFarewell           IntentKind = "FAREWELL"
	IntentUnknownChat        IntentKind = "UNKNOWN_CHAT"
	IntentMoveCursorNamed    IntentKind = "MOVE_CURSOR_NAMED"
	IntentMoveCursorAbsolute IntentKind = "MOVE_CURSOR_ABSOLUTE"
	IntentClick              IntentKind = "CLICK"
	IntentTypeText           IntentKind = "TYPE_TEXT"
	IntentPressKey           IntentKind = "PRESS_KEY"
	IntentScroll             IntentKind = "SCROLL"
	IntentDrag               IntentKind = "DRAG"
	IntentUnrecognized       IntentKind = "UNRECOGNIZED"
)

// NamedPosition is one of the closed set of screen anchors.
type NamedPosition string

const (
	PositionCenter       NamedPosition = "center"
	PositionTopLeft      NamedPosition = "top left"
	PositionTopRight     NamedPosition = "top right"
	PositionBottomLeft   NamedPosition = "bottom left"
	PositionBottomRight  NamedPosition = "bottom right"
	PositionTopCenter    NamedPosition = "top center"
	PositionBottomCenter NamedPosition = "bottom center"
	PositionLeftCenter   NamedPosition = "left center"
	PositionRightCenter  NamedPosition = "right center"
)

// NamedPositions lists every anchor in a stable order.
var NamedPositions = []NamedPosition{
	PositionCenter,
	PositionTopLeft, PositionTopRight, PositionBottomLeft, PositionBottomRight,
	PositionTopCenter, PositionBottomCenter, PositionLeftCenter, PositionRightCenter,
}

// MouseButton defines the mouse button being pressed.
type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

// ScrollDirection is the direction of a wheel gesture.
type ScrollDirection string

const (
	ScrollUp    ScrollDirection = "up"
	ScrollDown  ScrollDirection = "down"
	ScrollLeft  ScrollDirection = "left"
	ScrollRight ScrollDirection = "right"
)

// Target is a pointer destination. Exactly one of Position or Coordinates is set.
type Target struct {
	Position    NamedPosition `json:"position,omitempty"`
	Coordinates *Point        `json:"coordinates,omitempty"`
}

// Intent is the tagged variant produced by classification. Only the fields relevant to Kind are
// populated. Chain holds follow-up intents spawned by trailing directives such as
// "and press enter".
type Intent struct {
	Kind IntentKind `json:"kind"`

	Position  NamedPosition   `json:"position,omitempty"`
	X         int             `json:"x,omitempty"`
	Y         int             `json:"y,omitempty"`
	Button    MouseButton     `json:"button,omitempty"`
	Count     int             `json:"count,omitempty"`
	Target    *Target         `json:"target,omitempty"`
	Text      string          `json:"text,omitempty"`
	Keys      []string        `json:"keys,omitempty"`
	Direction ScrollDirection `json:"direction,omitempty"`
	Amount    int             `json:"amount,omitempty"`

	// OriginalText and Reason are set on Unrecognized intents.
	OriginalText string `json:"original_text,omitempty"`
	Reason       string `json:"reason,omitempty"`

	Chain []Intent `json:"chain,omitempty"`
}

// IsActionable reports whether the intent maps to input-device actions.
func (i Intent) IsActionable() bool {
	switch i.Kind {
	case IntentMoveCursorNamed, IntentMoveCursorAbsolute, IntentClick, IntentTypeText,
		IntentPressKey, IntentScroll, IntentDrag:
		return true
	}
	return false
}

// IsConversational reports whether the intent is answered with a reply only.
func (i Intent) IsConversational() bool {
	switch i.Kind {
	case IntentGreeting, IntentGratitude, IntentHelpRequest, IntentFarewell, IntentUnknownChat:
		return true
	}
	return false
}
