package translate

import (
	"errors"
	"fmt"

	"github.com/xkilldash9x/cursorctl/api/schemas"
)

var (
	// ErrInvalidGeometry means the screen is too small for the configured margin, or empty.
	ErrInvalidGeometry = errors.New("invalid screen geometry")
	// ErrNotActionable means a conversational or unrecognized intent reached the translator.
	ErrNotActionable = errors.New("intent is not actionable")
)

// TranslationError wraps a failure to turn an intent into actions.
type TranslationError struct {
	Kind   error
	Intent schemas.IntentKind
	Detail string
}

func (e *TranslationError) Error() string {
	return fmt.Sprintf("translate %s: %v: %s", e.Intent, e.Kind, e.Detail)
}

func (e *TranslationError) Unwrap() error { return e.Kind }
