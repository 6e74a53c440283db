package schemas

import "time"

// -- Execution Result Schemas --

// ActionState is the lifecycle of one action inside a dispatch.
type ActionState string

const (
	ActionPending   ActionState = "PENDING"
	ActionExecuting ActionState = "EXECUTING"
	ActionCompleted ActionState = "COMPLETED"
	ActionFailed    ActionState = "FAILED"
)

// FailedAction records the action that halted a dispatch.
type FailedAction struct {
	Index          int    `json:"index"`
	Action         Action `json:"action"`
	UnitsCompleted int    `json:"units_completed"`
	Err            error  `json:"-"`
	Message        string `json:"error"`
}

// ExecutionResult is the outcome of dispatching an action sequence. Executed holds exactly the
// actions that reached Completed, in order. Nothing after Failed was attempted.
type ExecutionResult struct {
	Success  bool          `json:"success"`
	Executed []Action      `json:"executed"`
	Failed   *FailedAction `json:"failed,omitempty"`
	Cursor   *Point        `json:"cursor,omitempty"`
	Elapsed  time.Duration `json:"elapsed"`
}

// Err returns the error that halted the dispatch, if any.
func (r *ExecutionResult) Err() error {
	if r == nil || r.Failed == nil {
		return nil
	}
	return r.Failed.Err
}
