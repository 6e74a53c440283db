package intent

import (
	"errors"
	"fmt"
)

// Extraction failure kinds. Match them with errors.Is.
var (
	ErrMissingCoordinates   = errors.New("missing coordinates")
	ErrInvalidCoordinates   = errors.New("invalid coordinates")
	ErrUnrecognizedPosition = errors.New("unrecognized position")
	ErrUnknownKey           = errors.New("unknown key")
	ErrMissingText          = errors.New("nothing to type")
	ErrMissingDirection     = errors.New("missing scroll direction")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrUnsupportedCommand   = errors.New("unsupported command")
)

// ExtractionError reports why an actionable verb could not be turned into a complete intent.
type ExtractionError struct {
	Kind   error
	Verb   string
	Detail string
}

func (e *ExtractionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Verb, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %s", e.Verb, e.Kind, e.Detail)
}

func (e *ExtractionError) Unwrap() error { return e.Kind }

func extractionError(verb string, kind error, format string, args ...any) *ExtractionError {
	return &ExtractionError{Kind: kind, Verb: verb, Detail: fmt.Sprintf(format, args...)}
}
