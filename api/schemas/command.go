package schemas

import "time"

// -- Command Schemas --

// Command is a single raw utterance submitted to a session. It is immutable once created.
type Command struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Index      int       `json:"index"`
	Raw        string    `json:"raw"`
	ReceivedAt time.Time `json:"received_at"`
}

// Point is an integer pixel coordinate with the origin at the top left of the primary display.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ScreenGeometry describes the primary display in pixels.
type ScreenGeometry struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether p lies within [0,Width) x [0,Height).
func (g ScreenGeometry) Contains(p Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.Width && p.Y < g.Height
}
