// Package translate turns classified intents into resolved, bounds-checked device actions.
package translate

import (
	"fmt"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/config"
	"go.uber.org/zap"
)

// Options is the static translation option set.
type Options struct {
	MarginPx       int
	MoveDurationMs int
	TypeIntervalMs int
}

// DefaultOptions mirrors the engine defaults.
func DefaultOptions() Options {
	return Options{MarginPx: 100, MoveDurationMs: 500, TypeIntervalMs: 10}
}

// OptionsFromConfig extracts the translation options from the engine config.
func OptionsFromConfig(cfg config.EngineConfig) Options {
	return Options{
		MarginPx:       cfg.MarginPx,
		MoveDurationMs: cfg.MoveDurationMs,
		TypeIntervalMs: cfg.TypeIntervalMs,
	}
}

// Translator is stateless apart from its options and is safe for concurrent use.
type Translator struct {
	opts   Options
	logger *zap.Logger
}

// New creates a Translator. A nil logger is replaced with a no-op logger.
func New(opts Options, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Translator{opts: opts, logger: logger.Named("translator")}
}

// Options returns the option set the translator was built with.
func (t *Translator) Options() Options { return t.opts }

// Translate converts an actionable intent and everything chained to it into an ordered action
// list. Out-of-range absolute coordinates are clamped into the screen and logged.
func (t *Translator) Translate(in schemas.Intent, geo schemas.ScreenGeometry) ([]schemas.Action, error) {
	if geo.Width <= 0 || geo.Height <= 0 {
		return nil, &TranslationError{
			Kind:   ErrInvalidGeometry,
			Intent: in.Kind,
			Detail: fmt.Sprintf("screen is %dx%d", geo.Width, geo.Height),
		}
	}

	actions, err := t.translateOne(in, geo)
	if err != nil {
		return nil, err
	}
	for _, next := range in.Chain {
		more, err := t.translateOne(next, geo)
		if err != nil {
			return nil, err
		}
		actions = append(actions, more...)
	}
	return actions, nil
}

func (t *Translator) translateOne(in schemas.Intent, geo schemas.ScreenGeometry) ([]schemas.Action, error) {
	switch in.Kind {
	case schemas.IntentMoveCursorNamed:
		p, err := t.Resolve(in.Position, geo)
		if err != nil {
			return nil, err
		}
		return []schemas.Action{schemas.MoveTo(p.X, p.Y, t.opts.MoveDurationMs)}, nil

	case schemas.IntentMoveCursorAbsolute:
		p := t.Clamp(schemas.Point{X: in.X, Y: in.Y}, geo)
		return []schemas.Action{schemas.MoveTo(p.X, p.Y, t.opts.MoveDurationMs)}, nil

	case schemas.IntentClick:
		click := schemas.ClickAt(buttonOrLeft(in.Button), max(in.Count, 1))
		if in.Target == nil {
			return []schemas.Action{click}, nil
		}
		p, err := t.targetPoint(in, geo)
		if err != nil {
			return nil, err
		}
		return []schemas.Action{schemas.MoveTo(p.X, p.Y, t.opts.MoveDurationMs), click}, nil

	case schemas.IntentDrag:
		p, err := t.targetPoint(in, geo)
		if err != nil {
			return nil, err
		}
		button := buttonOrLeft(in.Button)
		return []schemas.Action{
			schemas.ButtonDown(button),
			schemas.MoveTo(p.X, p.Y, t.opts.MoveDurationMs),
			schemas.ButtonUp(button),
		}, nil

	case schemas.IntentTypeText:
		return []schemas.Action{schemas.TypeChars(in.Text, t.opts.TypeIntervalMs)}, nil

	case schemas.IntentPressKey:
		return []schemas.Action{schemas.KeyChord(in.Keys...)}, nil

	case schemas.IntentScroll:
		amount := in.Amount
		switch in.Direction {
		case schemas.ScrollUp:
			return []schemas.Action{schemas.ScrollBy(0, amount)}, nil
		case schemas.ScrollDown:
			return []schemas.Action{schemas.ScrollBy(0, -amount)}, nil
		case schemas.ScrollLeft:
			return []schemas.Action{schemas.ScrollBy(-amount, 0)}, nil
		case schemas.ScrollRight:
			return []schemas.Action{schemas.ScrollBy(amount, 0)}, nil
		}
		return nil, &TranslationError{Kind: ErrNotActionable, Intent: in.Kind, Detail: fmt.Sprintf("scroll direction %q", in.Direction)}
	}

	return nil, &TranslationError{Kind: ErrNotActionable, Intent: in.Kind, Detail: "no device action for this intent"}
}

func (t *Translator) targetPoint(in schemas.Intent, geo schemas.ScreenGeometry) (schemas.Point, error) {
	switch {
	case in.Target == nil:
		return schemas.Point{}, &TranslationError{Kind: ErrNotActionable, Intent: in.Kind, Detail: "missing target"}
	case in.Target.Coordinates != nil:
		return t.Clamp(*in.Target.Coordinates, geo), nil
	default:
		return t.Resolve(in.Target.Position, geo)
	}
}

// Resolve maps a named position to pixels. Corners and edge anchors are inset by the margin;
// center is the exact midpoint.
func (t *Translator) Resolve(pos schemas.NamedPosition, geo schemas.ScreenGeometry) (schemas.Point, error) {
	m := t.opts.MarginPx
	w, h := geo.Width, geo.Height
	if w <= 2*m || h <= 2*m {
		return schemas.Point{}, &TranslationError{
			Kind:   ErrInvalidGeometry,
			Intent: schemas.IntentMoveCursorNamed,
			Detail: fmt.Sprintf("screen %dx%d is too small for a %dpx margin", w, h, m),
		}
	}

	switch pos {
	case schemas.PositionCenter:
		return schemas.Point{X: w / 2, Y: h / 2}, nil
	case schemas.PositionTopLeft:
		return schemas.Point{X: m, Y: m}, nil
	case schemas.PositionTopRight:
		return schemas.Point{X: w - m, Y: m}, nil
	case schemas.PositionBottomLeft:
		return schemas.Point{X: m, Y: h - m}, nil
	case schemas.PositionBottomRight:
		return schemas.Point{X: w - m, Y: h - m}, nil
	case schemas.PositionTopCenter:
		return schemas.Point{X: w / 2, Y: m}, nil
	case schemas.PositionBottomCenter:
		return schemas.Point{X: w / 2, Y: h - m}, nil
	case schemas.PositionLeftCenter:
		return schemas.Point{X: m, Y: h / 2}, nil
	case schemas.PositionRightCenter:
		return schemas.Point{X: w - m, Y: h / 2}, nil
	}
	return schemas.Point{}, &TranslationError{
		Kind:   ErrNotActionable,
		Intent: schemas.IntentMoveCursorNamed,
		Detail: fmt.Sprintf("unknown position %q", pos),
	}
}

// Clamp forces p into [0,Width) x [0,Height).
func (t *Translator) Clamp(p schemas.Point, geo schemas.ScreenGeometry) schemas.Point {
	clamped := schemas.Point{
		X: min(max(p.X, 0), geo.Width-1),
		Y: min(max(p.Y, 0), geo.Height-1),
	}
	if clamped != p {
		t.logger.Warn("Coordinates outside the screen were clamped.",
			zap.Int("x", p.X), zap.Int("y", p.Y),
			zap.Int("clamped_x", clamped.X), zap.Int("clamped_y", clamped.Y),
			zap.Int("width", geo.Width), zap.Int("height", geo.Height))
	}
	return clamped
}

func buttonOrLeft(b schemas.MouseButton) schemas.MouseButton {
	if b == "" {
		return schemas.ButtonLeft
	}
	return b
}
