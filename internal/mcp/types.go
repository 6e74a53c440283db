// File: internal/mcp/types.go
package mcp

import "github.com/xkilldash9x/cursorctl/api/schemas"

// CommandResponse is the JSON body returned by the run_command tool.
type CommandResponse struct {
	Status  string                   `json:"status"` // "done", "replied", "not_understood", "error"
	Reply   string                   `json:"reply"`
	Intent  schemas.IntentKind       `json:"intent"`
	Actions []schemas.Action         `json:"actions,omitempty"`
	Result  *schemas.ExecutionResult `json:"result,omitempty"`
	Error   string                   `json:"error,omitempty"`
}

// ScreenInfo is the JSON body returned by the screen_info tool.
type ScreenInfo struct {
	Width     int                                     `json:"width"`
	Height    int                                     `json:"height"`
	Pointer   *schemas.Point                          `json:"pointer,omitempty"`
	Positions map[schemas.NamedPosition]schemas.Point `json:"positions,omitempty"`
}

const (
	statusDone          = "done"
	statusReplied       = "replied"
	statusNotUnderstood = "not_understood"
	statusError         = "error"
)
