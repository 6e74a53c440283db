package playbook

import (
	"context"
	"fmt"
	"time"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/agent"
	"go.uber.org/zap"
)

// StepResult is the outcome of one playbook step.
type StepResult struct {
	Index   int                      `json:"index"`
	Label   string                   `json:"label"`
	Reply   string                   `json:"reply,omitempty"`
	Intent  schemas.IntentKind       `json:"intent,omitempty"`
	Actions []schemas.Action         `json:"actions,omitempty"`
	Result  *schemas.ExecutionResult `json:"result,omitempty"`
	Err     error                    `json:"-"`
	Error   string                   `json:"error,omitempty"`
}

// Report summarizes a playbook run. Steps holds every step that was attempted, in order.
type Report struct {
	Playbook string        `json:"playbook"`
	Success  bool          `json:"success"`
	Steps    []StepResult  `json:"steps"`
	Failures int           `json:"failures"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Runner executes playbooks against one session. Spoken steps go through the session so they
// share its history; raw actions go straight to the executor.
type Runner struct {
	session  *agent.Session
	executor agent.Executor
	logger   *zap.Logger
}

// NewRunner creates a Runner.
func NewRunner(session *agent.Session, executor agent.Executor, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		session:  session,
		executor: executor,
		logger:   logger.With(zap.String("component", "playbook")),
	}
}

// Run executes the steps in order. A failing step stops the run unless it, or the playbook,
// sets continue_on_error. Cancellation always stops the run.
func (r *Runner) Run(ctx context.Context, pb *Playbook) Report {
	start := time.Now()
	report := Report{Playbook: pb.Name, Success: true}
	r.logger.Info("Running playbook.", zap.String("playbook", pb.Name), zap.Int("steps", len(pb.Steps)))

	for i, step := range pb.Steps {
		if err := ctx.Err(); err != nil {
			report.Success = false
			r.logger.Warn("Playbook canceled.", zap.Int("next_step", i+1), zap.Error(err))
			break
		}

		res := r.runStep(ctx, i, step)
		report.Steps = append(report.Steps, res)
		if res.Err == nil {
			continue
		}

		report.Success = false
		report.Failures++
		r.logger.Warn("Playbook step failed.",
			zap.Int("step", i+1),
			zap.String("label", res.Label),
			zap.Error(res.Err))
		if !step.ContinueOnError && !pb.ContinueOnError {
			break
		}
	}

	report.Elapsed = time.Since(start)
	r.logger.Info("Playbook finished.",
		zap.String("playbook", pb.Name),
		zap.Bool("success", report.Success),
		zap.Int("attempted", len(report.Steps)),
		zap.Duration("elapsed", report.Elapsed))
	return report
}

func (r *Runner) runStep(ctx context.Context, i int, step Step) StepResult {
	res := StepResult{Index: i, Label: step.Label(i)}

	if step.Action == nil {
		reply := r.session.Handle(ctx, step.Say)
		res.Reply = reply.Text
		res.Intent = reply.Intent.Kind
		res.Actions = reply.Actions
		res.Result = reply.Result
		res.Err = reply.Err
		if res.Err == nil && notUnderstood(reply.Intent.Kind) {
			res.Err = fmt.Errorf("%w: %q", ErrNotUnderstood, step.Say)
		}
	} else {
		engine := r.session.Engine()
		actions, err := step.Action.Compile(engine.Vocabulary(), engine.Translator(), engine.Geometry())
		if err != nil {
			res.Err = fmt.Errorf("step %d: %w", i+1, err)
		} else {
			res.Actions = actions
			result, err := r.executor.Do(ctx, actions)
			if err != nil {
				res.Err = err
			} else {
				res.Result = &result
				res.Err = result.Err()
			}
		}
	}

	if res.Err != nil {
		res.Error = res.Err.Error()
	}
	return res
}

// notUnderstood reports whether a spoken step produced neither an action nor a recognized
// conversational reply.
func notUnderstood(kind schemas.IntentKind) bool {
	return kind == schemas.IntentUnrecognized || kind == schemas.IntentUnknownChat
}
