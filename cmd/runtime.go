package cmd

import (
	"context"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/agent"
	"github.com/xkilldash9x/cursorctl/internal/backend"
	"github.com/xkilldash9x/cursorctl/internal/backend/desktop"
	"github.com/xkilldash9x/cursorctl/internal/config"
	"github.com/xkilldash9x/cursorctl/internal/dispatch"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// virtualScreen is the display size the virtual backend assumes when none is configured.
var virtualScreen = schemas.ScreenGeometry{Width: 1920, Height: 1080}

// dispatchOptions lets tests swap the dispatcher clock.
var dispatchOptions []dispatch.Option

// openBackend selects the device backend named in the config.
func openBackend(cfg config.Interface, logger *zap.Logger) (backend.Backend, error) {
	switch kind := cfg.Backend().Kind; kind {
	case config.BackendVirtual:
		geo := virtualScreen
		if w, h := cfg.Backend().ScreenWidth, cfg.Backend().ScreenHeight; w > 0 && h > 0 {
			geo = schemas.ScreenGeometry{Width: w, Height: h}
		}
		logger.Info("Using the virtual backend; no real input will be sent.",
			zap.Int("width", geo.Width), zap.Int("height", geo.Height))
		return backend.NewVirtual(geo), nil
	case config.BackendRobotgo:
		dev, err := desktop.New(logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open the desktop backend: %w", err)
		}
		return dev, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}

// newRuntime assembles a runtime for the configured backend. The caller starts and stops it.
func newRuntime(ctx context.Context, cfg config.Interface, logger *zap.Logger) (*agent.Runtime, error) {
	dev, err := openBackend(cfg, logger)
	if err != nil {
		return nil, err
	}
	return agent.Build(ctx, cfg, dev, logger, dispatchOptions...)
}

// printReply writes a reply as text or, with --json, as an indented JSON document.
func printReply(out io.Writer, reply agent.Reply, asJSON bool) error {
	if asJSON {
		body, err := json.MarshalIndent(reply, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode reply: %w", err)
		}
		_, err = fmt.Fprintln(out, string(body))
		return err
	}
	_, err := fmt.Fprintln(out, reply.Text)
	return err
}
