package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xkilldash9x/cursorctl/api/schemas"
)

// EventKind names a recorded device event.
type EventKind string

const (
	EventMove       EventKind = "move"
	EventButtonDown EventKind = "button_down"
	EventButtonUp   EventKind = "button_up"
	EventKeyDown    EventKind = "key_down"
	EventKeyUp      EventKind = "key_up"
	EventRune       EventKind = "rune"
	EventScroll     EventKind = "scroll"
)

// Event is one device event seen by the virtual backend.
type Event struct {
	Kind   EventKind           `json:"kind"`
	Point  schemas.Point       `json:"point"`
	Button schemas.MouseButton `json:"button,omitempty"`
	Key    string              `json:"key,omitempty"`
	Rune   rune                `json:"rune,omitempty"`
	DX     int                 `json:"dx,omitempty"`
	DY     int                 `json:"dy,omitempty"`
	At     time.Time           `json:"at"`
}

// Virtual is an in-memory pointer and keyboard. It backs --dry-run and the end-to-end tests.
type Virtual struct {
	mu       sync.Mutex
	geometry schemas.ScreenGeometry
	pos      schemas.Point
	buttons  map[schemas.MouseButton]bool
	keys     map[string]bool
	events   []Event
	now      func() time.Time

	failAfter int
	failErr   error
}

// NewVirtual creates a virtual device with the pointer at the screen center.
func NewVirtual(geometry schemas.ScreenGeometry) *Virtual {
	return &Virtual{
		geometry: geometry,
		pos:      schemas.Point{X: geometry.Width / 2, Y: geometry.Height / 2},
		buttons:  make(map[schemas.MouseButton]bool),
		keys:     make(map[string]bool),
		now:      time.Now,
	}
}

// SetClock replaces the timestamp source for recorded events.
func (v *Virtual) SetClock(now func() time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = now
}

// FailAfter makes the (n+1)th device event from now on fail with err. n of 0 fails the next event.
func (v *Virtual) FailAfter(n int, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failAfter = n
	v.failErr = err
}

// record must be called with v.mu held.
func (v *Virtual) record(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.failErr != nil {
		if v.failAfter == 0 {
			err := v.failErr
			v.failErr = nil
			return err
		}
		v.failAfter--
	}
	e.At = v.now()
	if e.Kind != EventMove {
		e.Point = v.pos
	}
	v.events = append(v.events, e)
	return nil
}

func (v *Virtual) ScreenSize(_ context.Context) (schemas.ScreenGeometry, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.geometry, nil
}

func (v *Virtual) PointerPosition(_ context.Context) (schemas.Point, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pos, nil
}

func (v *Virtual) SetPointerPosition(ctx context.Context, p schemas.Point) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.geometry.Contains(p) {
		return fmt.Errorf("%w: (%d,%d) on %dx%d", ErrOutOfBounds, p.X, p.Y, v.geometry.Width, v.geometry.Height)
	}
	if err := v.record(ctx, Event{Kind: EventMove, Point: p}); err != nil {
		return err
	}
	v.pos = p
	return nil
}

func (v *Virtual) PressButton(ctx context.Context, button schemas.MouseButton) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.record(ctx, Event{Kind: EventButtonDown, Button: button}); err != nil {
		return err
	}
	v.buttons[button] = true
	return nil
}

func (v *Virtual) ReleaseButton(ctx context.Context, button schemas.MouseButton) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.record(ctx, Event{Kind: EventButtonUp, Button: button}); err != nil {
		return err
	}
	delete(v.buttons, button)
	return nil
}

func (v *Virtual) PressKey(ctx context.Context, key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.record(ctx, Event{Kind: EventKeyDown, Key: key}); err != nil {
		return err
	}
	v.keys[key] = true
	return nil
}

func (v *Virtual) ReleaseKey(ctx context.Context, key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.record(ctx, Event{Kind: EventKeyUp, Key: key}); err != nil {
		return err
	}
	delete(v.keys, key)
	return nil
}

func (v *Virtual) Scroll(ctx context.Context, dx, dy int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.record(ctx, Event{Kind: EventScroll, DX: dx, DY: dy})
}

// TypeRune records a character emitted without a key mapping.
func (v *Virtual) TypeRune(ctx context.Context, r rune) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.record(ctx, Event{Kind: EventRune, Rune: r})
}

// Events returns a copy of everything recorded so far.
func (v *Virtual) Events() []Event {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]Event(nil), v.events...)
}

var typedKeys = map[string]string{"space": " ", "enter": "\n", "tab": "\t"}

// Typed reconstructs the text produced by rune events and character key presses,
// honouring a held shift key.
func (v *Virtual) Typed() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	var b strings.Builder
	shift := false
	for _, e := range v.events {
		switch {
		case e.Kind == EventRune:
			b.WriteRune(e.Rune)
		case e.Key == "shift":
			shift = e.Kind == EventKeyDown
		case e.Kind != EventKeyDown:
		case typedKeys[e.Key] != "":
			b.WriteString(typedKeys[e.Key])
		case len([]rune(e.Key)) == 1 && shift:
			b.WriteString(strings.ToUpper(e.Key))
		case len([]rune(e.Key)) == 1:
			b.WriteString(e.Key)
		}
	}
	return b.String()
}

// Held reports whether a button is currently pressed.
func (v *Virtual) Held(button schemas.MouseButton) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.buttons[button]
}

// Reset clears the event log and releases everything, keeping the pointer where it is.
func (v *Virtual) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = nil
	v.buttons = make(map[schemas.MouseButton]bool)
	v.keys = make(map[string]bool)
	v.failErr = nil
}
