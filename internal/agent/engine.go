// Package agent wires normalization, classification, translation, dispatch and reply
// composition into the single handle(text) seam used by every front end.
package agent

import (
	"context"
	"time"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/conversation"
	"github.com/xkilldash9x/cursorctl/internal/intent"
	"github.com/xkilldash9x/cursorctl/internal/respond"
	"github.com/xkilldash9x/cursorctl/internal/translate"
	"go.uber.org/zap"
)

// Executor runs an action sequence to completion or first failure. The error is reserved for
// sequences that never reached the device (queue closed, caller gave up).
type Executor interface {
	Do(ctx context.Context, actions []schemas.Action) (schemas.ExecutionResult, error)
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, actions []schemas.Action) (schemas.ExecutionResult, error)

func (f ExecutorFunc) Do(ctx context.Context, actions []schemas.Action) (schemas.ExecutionResult, error) {
	return f(ctx, actions)
}

// Reply is the outcome of one handled command.
type Reply struct {
	Text    string                   `json:"text"`
	Command schemas.Command          `json:"command"`
	Intent  schemas.Intent           `json:"intent"`
	Actions []schemas.Action         `json:"actions,omitempty"`
	Result  *schemas.ExecutionResult `json:"result,omitempty"`
	Err     error                    `json:"-"`
	Error   string                   `json:"error,omitempty"`
}

// Engine is the stateless core. History is passed in explicitly so one engine can serve many
// conversations.
type Engine struct {
	classifier *intent.Classifier
	translator *translate.Translator
	executor   Executor
	composer   *respond.Composer
	geometry   schemas.ScreenGeometry
	logger     *zap.Logger
}

// NewEngine assembles an engine. geometry is fixed for the engine's lifetime.
func NewEngine(
	classifier *intent.Classifier,
	translator *translate.Translator,
	executor Executor,
	composer *respond.Composer,
	geometry schemas.ScreenGeometry,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		classifier: classifier,
		translator: translator,
		executor:   executor,
		composer:   composer,
		geometry:   geometry,
		logger:     logger.With(zap.String("component", "engine")),
	}
}

// Geometry returns the screen the engine translates against.
func (e *Engine) Geometry() schemas.ScreenGeometry { return e.geometry }

// Translator exposes position resolution for front ends that list positions.
func (e *Engine) Translator() *translate.Translator { return e.translator }

// Vocabulary returns the phrase and key tables the classifier was built with.
func (e *Engine) Vocabulary() *intent.Vocabulary { return e.classifier.Vocabulary() }

// Handle runs one command through the pipeline and records the turn in hist, which may be nil.
// It never panics on user input and always returns a reply.
func (e *Engine) Handle(ctx context.Context, hist *conversation.History, cmd schemas.Command) Reply {
	start := time.Now()
	logger := e.logger.With(zap.String("session_id", cmd.SessionID), zap.String("command_id", cmd.ID))

	var recent []conversation.Turn
	if hist != nil {
		recent = hist.Recent(hist.Cap())
	}

	in, extractErr := e.classifier.Interpret(intent.Normalize(cmd.Raw))
	reply := Reply{Command: cmd, Intent: in}
	composeErr := extractErr

	if in.IsActionable() {
		actions, err := e.translator.Translate(in, e.geometry)
		if err == nil {
			reply.Actions = actions
			var res schemas.ExecutionResult
			res, err = e.executor.Do(ctx, actions)
			if err == nil {
				reply.Result = &res
				reply.Err = res.Err()
			}
		}
		if err != nil {
			reply.Err = err
			composeErr = err
		}
	}

	reply.Text = e.composer.Compose(in, reply.Result, composeErr, recent)
	if reply.Err != nil {
		reply.Error = reply.Err.Error()
	}

	if hist != nil {
		hist.Append(conversation.Turn{Command: cmd, Intent: in, Result: reply.Result, Reply: reply.Text})
	}

	fields := []zap.Field{
		zap.String("intent", string(in.Kind)),
		zap.Int("actions", len(reply.Actions)),
		zap.Duration("duration", time.Since(start)),
	}
	switch {
	case reply.Err != nil:
		logger.Warn("Command failed.", append(fields, zap.Error(reply.Err))...)
	case extractErr != nil:
		logger.Info("Command not understood.", append(fields, zap.Error(extractErr))...)
	default:
		logger.Debug("Command handled.", fields...)
	}
	return reply
}
