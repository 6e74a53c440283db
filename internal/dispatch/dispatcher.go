// Package dispatch executes action sequences against an input backend, strictly in order.
package dispatch

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
	"unicode"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/backend"
	"github.com/xkilldash9x/cursorctl/internal/config"
	"go.uber.org/zap"
)

// deviceMu serializes every dispatch in the process. There is one pointer and one keyboard,
// however many dispatchers exist.
var deviceMu sync.Mutex

// Options controls pacing.
type Options struct {
	StepsPerSecond int
	ClickGapMs     int
	KeyHoldMs      int
	ActionGapMs    int
}

// DefaultOptions mirrors the dispatcher defaults.
func DefaultOptions() Options {
	return Options{StepsPerSecond: 100, ClickGapMs: 80, KeyHoldMs: 20, ActionGapMs: 50}
}

// OptionsFromConfig extracts the pacing options from the dispatcher config.
func OptionsFromConfig(cfg config.DispatcherConfig) Options {
	return Options{
		StepsPerSecond: cfg.StepsPerSecond,
		ClickGapMs:     cfg.ClickGapMs,
		KeyHoldMs:      cfg.KeyHoldMs,
		ActionGapMs:    cfg.ActionGapMs,
	}
}

// Transition is emitted whenever an action changes state.
type Transition struct {
	Index  int
	Action schemas.Action
	State  schemas.ActionState
	At     time.Time
	Err    error
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(d *Dispatcher) { d.clock = c }
}

// WithObserver registers a callback for every state transition. It runs on the dispatching
// goroutine while the device lock is held and must not dispatch.
func WithObserver(fn func(Transition)) Option {
	return func(d *Dispatcher) { d.observer = fn }
}

// Dispatcher drives a backend. It holds no state between dispatches besides its configuration.
type Dispatcher struct {
	backend  backend.Backend
	opts     Options
	logger   *zap.Logger
	clock    Clock
	observer func(Transition)
}

// New creates a Dispatcher. A non-positive step rate falls back to the default.
func New(b backend.Backend, opts Options, logger *zap.Logger, options ...Option) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.StepsPerSecond <= 0 {
		opts.StepsPerSecond = DefaultOptions().StepsPerSecond
	}
	d := &Dispatcher{
		backend: b,
		opts:    opts,
		logger:  logger.Named("dispatcher"),
		clock:   realClock{},
	}
	for _, o := range options {
		o(d)
	}
	return d
}

// Backend returns the device the dispatcher drives.
func (d *Dispatcher) Backend() backend.Backend { return d.backend }

// dispatchRun is the per-call state. heldButtons tracks buttons that must be released if the
// sequence halts early.
type dispatchRun struct {
	heldButtons map[schemas.MouseButton]bool
}

// Dispatch executes actions in order and halts on the first failure. Actions after the failed
// one are never attempted, and there is no retry. The returned result is always populated.
func (d *Dispatcher) Dispatch(ctx context.Context, actions []schemas.Action) schemas.ExecutionResult {
	deviceMu.Lock()
	defer deviceMu.Unlock()

	start := d.clock.Now()
	result := schemas.ExecutionResult{Executed: make([]schemas.Action, 0, len(actions))}
	run := &dispatchRun{heldButtons: make(map[schemas.MouseButton]bool)}

	for i, a := range actions {
		d.notify(i, a, schemas.ActionPending, nil)
	}

	for i, a := range actions {
		var err error
		units := 0
		if i > 0 {
			err = d.pause(ctx, d.opts.ActionGapMs)
		} else {
			err = ctx.Err()
		}
		if err == nil {
			d.notify(i, a, schemas.ActionExecuting, nil)
			d.logger.Debug("Executing action.", zap.Int("index", i), zap.Stringer("action", a))
			units, err = d.execute(ctx, a, run)
		}
		if err != nil {
			dErr := &DispatchError{Kind: classify(err), Index: i, Action: a, Err: err}
			result.Failed = &schemas.FailedAction{
				Index:          i,
				Action:         a,
				UnitsCompleted: units,
				Err:            dErr,
				Message:        dErr.Error(),
			}
			d.notify(i, a, schemas.ActionFailed, dErr)
			d.logger.Warn("Action failed, halting sequence.",
				zap.Int("index", i),
				zap.Stringer("action", a),
				zap.Int("units_completed", units),
				zap.Int("dropped", len(actions)-i-1),
				zap.Error(err))
			break
		}
		result.Executed = append(result.Executed, a)
		d.notify(i, a, schemas.ActionCompleted, nil)
	}

	if result.Failed != nil {
		d.releaseHeld(run)
	}

	if pos, err := d.backend.PointerPosition(context.Background()); err == nil {
		result.Cursor = &pos
	}
	result.Success = result.Failed == nil
	result.Elapsed = d.clock.Now().Sub(start)
	return result
}

func (d *Dispatcher) notify(i int, a schemas.Action, state schemas.ActionState, err error) {
	if d.observer == nil {
		return
	}
	d.observer(Transition{Index: i, Action: a, State: state, At: d.clock.Now(), Err: err})
}

func (d *Dispatcher) pause(ctx context.Context, ms int) error {
	return d.clock.Sleep(ctx, time.Duration(ms)*time.Millisecond)
}

// execute runs a single action and reports how many of its units completed.
func (d *Dispatcher) execute(ctx context.Context, a schemas.Action, run *dispatchRun) (int, error) {
	switch a.Type {
	case schemas.ActionMoveTo:
		return d.moveTo(ctx, a)
	case schemas.ActionClickAt:
		return d.click(ctx, a, run)
	case schemas.ActionTypeChars:
		return d.typeChars(ctx, a)
	case schemas.ActionKeyChord:
		return d.keyChord(ctx, a)
	case schemas.ActionScrollBy:
		return d.scroll(ctx, a)
	case schemas.ActionButtonDown:
		if err := d.backend.PressButton(ctx, a.Button); err != nil {
			return 0, err
		}
		run.heldButtons[a.Button] = true
		return 1, nil
	case schemas.ActionButtonUp:
		if err := d.backend.ReleaseButton(ctx, a.Button); err != nil {
			return 0, err
		}
		delete(run.heldButtons, a.Button)
		return 1, nil
	}
	return 0, fmt.Errorf("%w: unknown action type %q", ErrInvalidAction, a.Type)
}

// moveTo interpolates linearly from the current pointer position. The last step lands exactly
// on the target.
func (d *Dispatcher) moveTo(ctx context.Context, a schemas.Action) (int, error) {
	from, err := d.backend.PointerPosition(ctx)
	if err != nil {
		return 0, err
	}
	to := schemas.Point{X: a.X, Y: a.Y}

	numSteps := max(1, a.DurationMs*d.opts.StepsPerSecond/1000)
	interval := time.Duration(a.DurationMs) * time.Millisecond / time.Duration(numSteps)

	for step := 1; step <= numSteps; step++ {
		if err := d.clock.Sleep(ctx, interval); err != nil {
			return 0, err
		}
		p := to
		if step < numSteps {
			t := float64(step) / float64(numSteps)
			p = schemas.Point{
				X: from.X + int(math.Round(float64(to.X-from.X)*t)),
				Y: from.Y + int(math.Round(float64(to.Y-from.Y)*t)),
			}
		}
		if err := d.backend.SetPointerPosition(ctx, p); err != nil {
			return 0, err
		}
	}
	return 1, nil
}

func (d *Dispatcher) click(ctx context.Context, a schemas.Action, run *dispatchRun) (int, error) {
	count := max(1, a.Count)
	for n := 0; n < count; n++ {
		if n > 0 {
			if err := d.pause(ctx, d.opts.ClickGapMs); err != nil {
				return n, err
			}
		}
		if err := d.backend.PressButton(ctx, a.Button); err != nil {
			return n, err
		}
		run.heldButtons[a.Button] = true
		if err := d.backend.ReleaseButton(ctx, a.Button); err != nil {
			return n, err
		}
		delete(run.heldButtons, a.Button)
	}
	return count, nil
}

func (d *Dispatcher) typeChars(ctx context.Context, a schemas.Action) (int, error) {
	for i, r := range []rune(a.Text) {
		if i > 0 {
			if err := d.pause(ctx, a.IntervalMs); err != nil {
				return i, err
			}
		}
		if err := d.typeRune(ctx, r); err != nil {
			return i, err
		}
	}
	return len([]rune(a.Text)), nil
}

// typeRune sends plain keys for ASCII letters, digits and whitespace. Anything else goes
// through the backend's character path when it has one.
func (d *Dispatcher) typeRune(ctx context.Context, r rune) error {
	key, shifted, plain := keyForRune(r)
	if !plain {
		if typer, ok := d.backend.(backend.CharTyper); ok {
			return typer.TypeRune(ctx, r)
		}
	}
	if shifted {
		if err := d.backend.PressKey(ctx, "shift"); err != nil {
			return err
		}
		defer d.releaseKey("shift")
	}
	if err := d.backend.PressKey(ctx, key); err != nil {
		return err
	}
	return d.backend.ReleaseKey(ctx, key)
}

func keyForRune(r rune) (key string, shifted, plain bool) {
	switch {
	case r == ' ':
		return "space", false, true
	case r == '\n':
		return "enter", false, true
	case r == '\t':
		return "tab", false, true
	case r >= 'A' && r <= 'Z':
		return string(unicode.ToLower(r)), true, true
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return string(r), false, true
	}
	return string(r), false, false
}

// keyChord presses keys in order, holds, and releases in reverse. Keys pressed before a failure
// are released before returning.
func (d *Dispatcher) keyChord(ctx context.Context, a schemas.Action) (int, error) {
	if len(a.Keys) == 0 {
		return 0, fmt.Errorf("%w: empty key chord", ErrInvalidAction)
	}

	pressed := make([]string, 0, len(a.Keys))
	releasePressed := func() {
		for i := len(pressed) - 1; i >= 0; i-- {
			d.releaseKey(pressed[i])
		}
	}

	for _, key := range a.Keys {
		if err := d.backend.PressKey(ctx, key); err != nil {
			releasePressed()
			return 0, err
		}
		pressed = append(pressed, key)
	}
	if err := d.pause(ctx, d.opts.KeyHoldMs); err != nil {
		releasePressed()
		return 0, err
	}
	for len(pressed) > 0 {
		key := pressed[len(pressed)-1]
		if err := d.backend.ReleaseKey(ctx, key); err != nil {
			pressed = pressed[:len(pressed)-1]
			releasePressed()
			return 0, err
		}
		pressed = pressed[:len(pressed)-1]
	}
	return 1, nil
}

// scroll emits one wheel tick per unit, vertical first, paced at the step rate.
func (d *Dispatcher) scroll(ctx context.Context, a schemas.Action) (int, error) {
	tick := time.Second / time.Duration(d.opts.StepsPerSecond)
	units := 0
	for _, axis := range []struct{ dx, dy, n int }{
		{0, sign(a.DY), abs(a.DY)},
		{sign(a.DX), 0, abs(a.DX)},
	} {
		for i := 0; i < axis.n; i++ {
			if units > 0 {
				if err := d.clock.Sleep(ctx, tick); err != nil {
					return units, err
				}
			}
			if err := d.backend.Scroll(ctx, axis.dx, axis.dy); err != nil {
				return units, err
			}
			units++
		}
	}
	return units, nil
}

// releaseKey and releaseHeld run after a failure or cancellation, so they use a fresh context.
func (d *Dispatcher) releaseKey(key string) {
	if err := d.backend.ReleaseKey(context.Background(), key); err != nil {
		d.logger.Warn("Failed to release key during cleanup.", zap.String("key", key), zap.Error(err))
	}
}

func (d *Dispatcher) releaseHeld(run *dispatchRun) {
	for button := range run.heldButtons {
		if err := d.backend.ReleaseButton(context.Background(), button); err != nil {
			d.logger.Warn("Failed to release button during cleanup.", zap.String("button", string(button)), zap.Error(err))
			continue
		}
		d.logger.Debug("Released button left down by a halted sequence.", zap.String("button", string(button)))
	}
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	}
	return 0
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
