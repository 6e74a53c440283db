package agent

import (
	"context"
	"fmt"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/backend"
	"github.com/xkilldash9x/cursorctl/internal/config"
	"github.com/xkilldash9x/cursorctl/internal/dispatch"
	"github.com/xkilldash9x/cursorctl/internal/intent"
	"github.com/xkilldash9x/cursorctl/internal/respond"
	"github.com/xkilldash9x/cursorctl/internal/translate"
	"go.uber.org/zap"
)

// Runtime is the assembled component graph for one process.
type Runtime struct {
	Backend    backend.Backend
	Dispatcher *dispatch.Dispatcher
	Queue      *dispatch.Queue
	Engine     *Engine
	Session    *Session
}

// Build assembles a runtime around dev. Screen geometry comes from the config when both
// dimensions are set, otherwise from the device, and is fixed from then on.
func Build(ctx context.Context, cfg config.Interface, dev backend.Backend, logger *zap.Logger, options ...dispatch.Option) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	vocab, err := intent.LoadVocabulary(cfg.Vocabulary().Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}

	geometry := schemas.ScreenGeometry{Width: cfg.Backend().ScreenWidth, Height: cfg.Backend().ScreenHeight}
	if geometry.Width <= 0 || geometry.Height <= 0 {
		geometry, err = dev.ScreenSize(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read screen size: %w", err)
		}
	}

	device := backend.NewThrottled(dev, cfg.Backend().MaxEventsPerSecond)
	d := dispatch.New(device, dispatch.OptionsFromConfig(cfg.Dispatcher()), logger, options...)
	q := dispatch.NewQueue(d, cfg.Dispatcher().QueueSize, logger)

	engine := NewEngine(
		intent.NewClassifier(vocab),
		translate.New(translate.OptionsFromConfig(cfg.Engine()), logger),
		q,
		respond.NewComposer(),
		geometry,
		logger,
	)

	logger.Info("Runtime assembled.",
		zap.Int("screen_width", geometry.Width),
		zap.Int("screen_height", geometry.Height),
		zap.Float64("max_events_per_second", cfg.Backend().MaxEventsPerSecond))

	return &Runtime{
		Backend:    device,
		Dispatcher: d,
		Queue:      q,
		Engine:     engine,
		Session:    NewSession(engine, cfg.Engine().ContextCapacity),
	}, nil
}

// Start launches the dispatch worker.
func (r *Runtime) Start(ctx context.Context) { r.Queue.Start(ctx) }

// Stop shuts the dispatch worker down and waits for it.
func (r *Runtime) Stop() { r.Queue.Stop() }
