package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/xkilldash9x/cursorctl/api/schemas"
)

type op string

const (
	opMove       op = "move"
	opButtonDown op = "button_down"
	opButtonUp   op = "button_up"
	opKeyDown    op = "key_down"
	opKeyUp      op = "key_up"
	opRune       op = "rune"
	opScroll     op = "scroll"
)

type recordedEvent struct {
	op     op
	point  schemas.Point
	button schemas.MouseButton
	key    string
	r      rune
	dx, dy int
	at     time.Time
}

// fakeClock advances virtual time on every Sleep.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// mockBackend records every device event. Queries are not counted as calls.
type mockBackend struct {
	t      *testing.T
	clock  *fakeClock
	mu     sync.Mutex
	pos    schemas.Point
	geo    schemas.ScreenGeometry
	events []recordedEvent

	returnErr    error
	failOnCall   int
	callCount    int
	cancelOnCall int
	cancelFunc   context.CancelFunc

	// Overrides may call the matching Default* method.
	MockPressKey    func(ctx context.Context, key string) error
	MockPressButton func(ctx context.Context, button schemas.MouseButton) error
}

func newMockBackend(t *testing.T, clock *fakeClock) *mockBackend {
	return &mockBackend{
		t:     t,
		clock: clock,
		geo:   schemas.ScreenGeometry{Width: 1920, Height: 1080},
	}
}

// record always stores the event before deciding whether to fail, so cleanup attempts are visible.
func (m *mockBackend) record(ctx context.Context, e recordedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.at = m.clock.Now()
	m.events = append(m.events, e)
	m.callCount++

	if m.returnErr != nil && (m.failOnCall == 0 || m.callCount >= m.failOnCall) {
		return m.returnErr
	}
	if ctx.Err() != nil && ctx != context.Background() {
		return ctx.Err()
	}
	if m.cancelOnCall > 0 && m.callCount == m.cancelOnCall && m.cancelFunc != nil {
		m.cancelFunc()
	}
	if e.op == opMove {
		m.pos = e.point
	}
	return nil
}

func (m *mockBackend) ScreenSize(_ context.Context) (schemas.ScreenGeometry, error) {
	return m.geo, nil
}

func (m *mockBackend) PointerPosition(_ context.Context) (schemas.Point, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pos, nil
}

func (m *mockBackend) SetPointerPosition(ctx context.Context, p schemas.Point) error {
	return m.record(ctx, recordedEvent{op: opMove, point: p})
}

func (m *mockBackend) PressButton(ctx context.Context, button schemas.MouseButton) error {
	if m.MockPressButton != nil {
		return m.MockPressButton(ctx, button)
	}
	return m.DefaultPressButton(ctx, button)
}

func (m *mockBackend) DefaultPressButton(ctx context.Context, button schemas.MouseButton) error {
	return m.record(ctx, recordedEvent{op: opButtonDown, button: button})
}

func (m *mockBackend) ReleaseButton(ctx context.Context, button schemas.MouseButton) error {
	return m.record(ctx, recordedEvent{op: opButtonUp, button: button})
}

func (m *mockBackend) PressKey(ctx context.Context, key string) error {
	if m.MockPressKey != nil {
		return m.MockPressKey(ctx, key)
	}
	return m.DefaultPressKey(ctx, key)
}

func (m *mockBackend) DefaultPressKey(ctx context.Context, key string) error {
	return m.record(ctx, recordedEvent{op: opKeyDown, key: key})
}

func (m *mockBackend) ReleaseKey(ctx context.Context, key string) error {
	return m.record(ctx, recordedEvent{op: opKeyUp, key: key})
}

func (m *mockBackend) Scroll(ctx context.Context, dx, dy int) error {
	return m.record(ctx, recordedEvent{op: opScroll, dx: dx, dy: dy})
}

func (m *mockBackend) Events() []recordedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedEvent(nil), m.events...)
}

func (m *mockBackend) ops() []op {
	var out []op
	for _, e := range m.Events() {
		out = append(out, e.op)
	}
	return out
}

// typingBackend adds the native character path.
type typingBackend struct {
	*mockBackend
}

func (b typingBackend) TypeRune(ctx context.Context, r rune) error {
	return b.record(ctx, recordedEvent{op: opRune, r: r})
}
