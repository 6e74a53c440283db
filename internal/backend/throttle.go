package backend

import (
	"context"
	"math"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"golang.org/x/time/rate"
)

// Throttled caps the number of device events per second emitted by the wrapped backend.
// Queries (screen size, pointer position) are not limited.
type Throttled struct {
	next    Backend
	limiter *rate.Limiter
}

type throttledTyper struct {
	*Throttled
	typer CharTyper
}

// NewThrottled wraps next with a token bucket. A non-positive rate returns next unchanged.
// The wrapper keeps the CharTyper capability of next.
func NewThrottled(next Backend, eventsPerSecond float64) Backend {
	if eventsPerSecond <= 0 {
		return next
	}
	burst := max(1, int(math.Ceil(eventsPerSecond/100)))
	t := &Throttled{next: next, limiter: rate.NewLimiter(rate.Limit(eventsPerSecond), burst)}
	if typer, ok := next.(CharTyper); ok {
		return &throttledTyper{Throttled: t, typer: typer}
	}
	return t
}

func (t *Throttled) ScreenSize(ctx context.Context) (schemas.ScreenGeometry, error) {
	return t.next.ScreenSize(ctx)
}

func (t *Throttled) PointerPosition(ctx context.Context) (schemas.Point, error) {
	return t.next.PointerPosition(ctx)
}

func (t *Throttled) SetPointerPosition(ctx context.Context, p schemas.Point) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.SetPointerPosition(ctx, p)
}

func (t *Throttled) PressButton(ctx context.Context, button schemas.MouseButton) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.PressButton(ctx, button)
}

func (t *Throttled) ReleaseButton(ctx context.Context, button schemas.MouseButton) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.ReleaseButton(ctx, button)
}

func (t *Throttled) PressKey(ctx context.Context, key string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.PressKey(ctx, key)
}

func (t *Throttled) ReleaseKey(ctx context.Context, key string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.ReleaseKey(ctx, key)
}

func (t *Throttled) Scroll(ctx context.Context, dx, dy int) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.Scroll(ctx, dx, dy)
}

func (t *throttledTyper) TypeRune(ctx context.Context, r rune) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.typer.TypeRune(ctx, r)
}
