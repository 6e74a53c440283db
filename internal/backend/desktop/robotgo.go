// Package desktop drives the real OS pointer and keyboard through robotgo.
package desktop

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"
	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/backend"
	"go.uber.org/zap"
)

// keyNames maps canonical key names onto robotgo's key table.
var keyNames = map[string]string{
	"ctrl":      "ctrl",
	"shift":     "shift",
	"alt":       "alt",
	"cmd":       "cmd",
	"enter":     "enter",
	"space":     "space",
	"tab":       "tab",
	"backspace": "backspace",
	"delete":    "delete",
	"escape":    "esc",
	"up":        "up",
	"down":      "down",
	"left":      "left",
	"right":     "right",
	"home":      "home",
	"end":       "end",
	"pageup":    "pageup",
	"pagedown":  "pagedown",
	"insert":    "insert",
	"capslock":  "capslock",
}

var buttonNames = map[schemas.MouseButton]string{
	schemas.ButtonLeft:   "left",
	schemas.ButtonRight:  "right",
	schemas.ButtonMiddle: "center",
}

// Robotgo is the OS backend. It is not safe for concurrent use; the dispatcher serializes access.
type Robotgo struct {
	logger *zap.Logger
}

// New creates the OS backend. It fails with ErrPermissionDenied when no display can be reached.
func New(logger *zap.Logger) (*Robotgo, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Robotgo{logger: logger.Named("desktop")}
	geo, err := r.ScreenSize(context.Background())
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Desktop backend ready.", zap.Int("width", geo.Width), zap.Int("height", geo.Height))
	return r, nil
}

func (r *Robotgo) ScreenSize(_ context.Context) (schemas.ScreenGeometry, error) {
	w, h := robotgo.GetScreenSize()
	if w <= 0 || h <= 0 {
		return schemas.ScreenGeometry{}, fmt.Errorf("%w: no accessible display", backend.ErrPermissionDenied)
	}
	return schemas.ScreenGeometry{Width: w, Height: h}, nil
}

func (r *Robotgo) PointerPosition(_ context.Context) (schemas.Point, error) {
	x, y := robotgo.Location()
	return schemas.Point{X: x, Y: y}, nil
}

func (r *Robotgo) SetPointerPosition(ctx context.Context, p schemas.Point) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	robotgo.Move(p.X, p.Y)
	return nil
}

func (r *Robotgo) PressButton(ctx context.Context, button schemas.MouseButton) error {
	return r.toggleButton(ctx, button, "down")
}

func (r *Robotgo) ReleaseButton(ctx context.Context, button schemas.MouseButton) error {
	return r.toggleButton(ctx, button, "up")
}

func (r *Robotgo) toggleButton(ctx context.Context, button schemas.MouseButton, state string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, ok := buttonNames[button]
	if !ok {
		return fmt.Errorf("desktop: unknown mouse button %q", button)
	}
	if err := robotgo.Toggle(name, state); err != nil {
		return fmt.Errorf("desktop: button %s %s: %w", name, state, err)
	}
	return nil
}

func (r *Robotgo) PressKey(ctx context.Context, key string) error {
	return r.toggleKey(ctx, key, "down")
}

func (r *Robotgo) ReleaseKey(ctx context.Context, key string) error {
	return r.toggleKey(ctx, key, "up")
}

func (r *Robotgo) toggleKey(ctx context.Context, key, state string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := robotgoKey(key)
	if err != nil {
		return err
	}
	if err := robotgo.KeyToggle(name, state); err != nil {
		return fmt.Errorf("desktop: key %s %s: %w", name, state, err)
	}
	return nil
}

func (r *Robotgo) Scroll(ctx context.Context, dx, dy int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch {
	case dy > 0:
		robotgo.ScrollDir(1, "up")
	case dy < 0:
		robotgo.ScrollDir(1, "down")
	}
	switch {
	case dx > 0:
		robotgo.ScrollDir(1, "right")
	case dx < 0:
		robotgo.ScrollDir(1, "left")
	}
	return nil
}

// TypeRune emits a character through the OS text input path.
func (r *Robotgo) TypeRune(ctx context.Context, ch rune) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	robotgo.TypeStr(string(ch))
	return nil
}

func robotgoKey(key string) (string, error) {
	if name, ok := keyNames[key]; ok {
		return name, nil
	}
	if len(key) == 2 || len(key) == 3 {
		if strings.HasPrefix(key, "f") && strings.Trim(key[1:], "0123456789") == "" {
			return key, nil
		}
	}
	if len([]rune(key)) == 1 {
		return key, nil
	}
	return "", fmt.Errorf("%w: %q", backend.ErrUnknownKey, key)
}
