package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/backend"
)

var (
	ErrBackendRejected  = errors.New("backend rejected the action")
	ErrPermissionDenied = errors.New("input permission denied")
	ErrCanceled         = errors.New("dispatch canceled")
	ErrInvalidAction    = errors.New("invalid action")
	ErrQueueClosed      = errors.New("dispatch queue is closed")
)

// DispatchError describes the action that halted a dispatch. It matches both its Kind and the
// underlying backend error with errors.Is.
type DispatchError struct {
	Kind   error
	Index  int
	Action schemas.Action
	Err    error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch: action %d %s: %v: %v", e.Index, e.Action, e.Kind, e.Err)
}

func (e *DispatchError) Unwrap() []error { return []error{e.Kind, e.Err} }

func classify(err error) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCanceled
	case errors.Is(err, backend.ErrPermissionDenied):
		return ErrPermissionDenied
	case errors.Is(err, ErrInvalidAction):
		return ErrInvalidAction
	default:
		return ErrBackendRejected
	}
}
