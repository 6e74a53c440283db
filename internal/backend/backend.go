// Package backend defines the OS input device seam and the adapters that do not need a display.
package backend

import (
	"context"
	"errors"

	"github.com/xkilldash9x/cursorctl/api/schemas"
)

var (
	// ErrPermissionDenied is returned when the OS refuses synthetic input.
	ErrPermissionDenied = errors.New("backend: permission denied")
	// ErrOutOfBounds is returned when a pointer position lies outside the screen.
	ErrOutOfBounds = errors.New("backend: position outside the screen")
	// ErrUnknownKey is returned when a key name has no device mapping.
	ErrUnknownKey = errors.New("backend: unknown key")
)

// Backend is the low-level pointer and keyboard surface the dispatcher drives.
// Implementations must not block beyond the single device event they emit.
type Backend interface {
	ScreenSize(ctx context.Context) (schemas.ScreenGeometry, error)
	PointerPosition(ctx context.Context) (schemas.Point, error)
	SetPointerPosition(ctx context.Context, p schemas.Point) error
	PressButton(ctx context.Context, button schemas.MouseButton) error
	ReleaseButton(ctx context.Context, button schemas.MouseButton) error
	PressKey(ctx context.Context, key string) error
	ReleaseKey(ctx context.Context, key string) error
	// Scroll emits a single wheel tick. dx and dy are each -1, 0 or 1.
	Scroll(ctx context.Context, dx, dy int) error
}

// CharTyper is implemented by backends that can emit a character directly, which covers
// characters that have no single-key equivalent on the active layout.
type CharTyper interface {
	TypeRune(ctx context.Context, r rune) error
}
