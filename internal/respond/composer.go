// Package respond turns intents and execution outcomes into plain-text replies.
package respond

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/conversation"
	"github.com/xkilldash9x/cursorctl/internal/dispatch"
	"github.com/xkilldash9x/cursorctl/internal/intent"
	"github.com/xkilldash9x/cursorctl/internal/translate"
)

// SupportedVerbs is the guidance listed whenever a command is not understood.
var SupportedVerbs = []string{
	`move the cursor ("move to center", "move to 500, 300")`,
	`click, double click, right click or middle click ("click at 200, 100")`,
	`type text ("type \"hello\" and press enter")`,
	`press a key or shortcut ("press enter", "press ctrl+c", "copy")`,
	`scroll up, down, left or right ("scroll down 5")`,
	`drag to a place ("drag to top right")`,
}

var conversational = map[schemas.IntentKind][]string{
	schemas.IntentGreeting: {
		"Hello! Tell me where to move the cursor or what to type.",
		"Hi there. What should I do with the mouse or keyboard?",
		"Hey again. Ready when you are.",
	},
	schemas.IntentGratitude: {
		"You're welcome.",
		"Happy to help.",
		"Any time.",
	},
	schemas.IntentFarewell: {
		"Goodbye!",
		"See you later.",
		"Bye for now.",
	},
	schemas.IntentUnknownChat: {
		"I'm not sure how to answer that, but I can move the cursor, click, type, press keys and scroll.",
		"I only understand mouse and keyboard commands. Try \"help\" to see them.",
		"That one is beyond me. Ask for help to see what I can do.",
	},
}

var helpIntros = []string{
	"Here is what I can do:",
	"You can ask me to:",
	"Commands I understand:",
}

var unrecognizedIntros = []string{
	"I didn't catch a command there.",
	"Sorry, I couldn't turn that into an action.",
	"I still don't follow, sorry.",
}

var doneOpeners = []string{"", "Done. ", "Okay. "}

// extractionHints maps an extraction failure onto a clarifying sentence.
var extractionHints = map[error]string{
	intent.ErrMissingCoordinates:   `I need two numbers for a position, like "move to 500, 300".`,
	intent.ErrInvalidCoordinates:   "Coordinates have to be whole numbers, zero or more.",
	intent.ErrUnrecognizedPosition: "I know center, the four corners and the middle of each edge.",
	intent.ErrMissingText:          `Tell me what to type, for example type "hello".`,
	intent.ErrMissingDirection:     "Say which way to scroll: up, down, left or right.",
	intent.ErrInvalidAmount:        "Amounts and repeat counts have to be positive numbers.",
}

// Composer picks reply phrasing. It is stateless; variation comes from the recent turns the
// caller passes in.
type Composer struct{}

// NewComposer creates a Composer.
func NewComposer() *Composer { return &Composer{} }

// Compose builds the reply for one turn. result is nil for conversational and unrecognized
// turns, err is the extraction or translation failure, if any. recent must not include the
// turn being answered.
func (c *Composer) Compose(in schemas.Intent, result *schemas.ExecutionResult, err error, recent []conversation.Turn) string {
	switch {
	case in.Kind == schemas.IntentUnrecognized:
		return c.unrecognized(err, nextVariant(unrecognizedIntros, in.Kind, recent))
	case in.Kind == schemas.IntentHelpRequest:
		return pick(helpIntros, nextVariant(helpIntros, in.Kind, recent)) + " " + strings.Join(SupportedVerbs, "; ") + "."
	case in.IsConversational():
		options := conversational[in.Kind]
		return pick(options, nextVariant(options, in.Kind, recent))
	case err != nil:
		return c.translationFailure(err)
	case result == nil:
		return "Nothing was done."
	case result.Success:
		return pick(doneOpeners, nextVariant(doneOpeners, in.Kind, recent)) + describe(in)
	default:
		return c.dispatchFailure(in, result)
	}
}

func (c *Composer) unrecognized(err error, variant int) string {
	var b strings.Builder
	b.WriteString(pick(unrecognizedIntros, variant))

	var ee *intent.ExtractionError
	if errors.As(err, &ee) {
		switch {
		case errors.Is(ee, intent.ErrUnknownKey) && strings.HasPrefix(ee.Detail, `"`):
			fmt.Fprintf(&b, " I don't know the key %s.", ee.Detail)
		case errors.Is(ee, intent.ErrUnknownKey):
			b.WriteString(` Which key? For example "press enter" or "press ctrl+c".`)
		case extractionHints[ee.Kind] != "":
			b.WriteString(" " + extractionHints[ee.Kind])
		}
	}

	b.WriteString(" I can " + strings.Join(SupportedVerbs, "; ") + ".")
	return b.String()
}

func (c *Composer) translationFailure(err error) string {
	switch {
	case errors.Is(err, translate.ErrInvalidGeometry):
		return "I can't place the cursor: the screen is too small for the configured margin."
	case errors.Is(err, dispatch.ErrQueueClosed):
		return "I'm shutting down and can't run that anymore."
	}
	return fmt.Sprintf("I couldn't do that: %v.", err)
}

func (c *Composer) dispatchFailure(in schemas.Intent, result *schemas.ExecutionResult) string {
	f := result.Failed
	if f == nil {
		return "Something went wrong, but the device didn't say what."
	}

	var hint string
	switch {
	case errors.Is(f.Err, dispatch.ErrPermissionDenied):
		hint = " The system refused synthetic input; grant this program accessibility or input permissions."
	case errors.Is(f.Err, dispatch.ErrCanceled):
		return fmt.Sprintf("Stopped before finishing %s.", verbPhrase(in))
	}
	return fmt.Sprintf("I couldn't finish %s: step %d failed (%s).%s", verbPhrase(in), f.Index+1, cause(f), hint)
}

func cause(f *schemas.FailedAction) string {
	var dErr *dispatch.DispatchError
	if errors.As(f.Err, &dErr) && dErr.Err != nil {
		return dErr.Err.Error()
	}
	return f.Message
}

// describe summarizes a successful intent and its chain.
func describe(in schemas.Intent) string {
	parts := []string{sentence(in)}
	for _, next := range in.Chain {
		parts = append(parts, sentence(next))
	}
	return capitalize(strings.Join(parts, ", then ")) + "."
}

func sentence(in schemas.Intent) string {
	switch in.Kind {
	case schemas.IntentMoveCursorNamed:
		return fmt.Sprintf("moved the cursor to the %s", in.Position)
	case schemas.IntentMoveCursorAbsolute:
		return fmt.Sprintf("moved the cursor to %d, %d", in.X, in.Y)
	case schemas.IntentClick:
		s := clickWord(in.Button, in.Count)
		if in.Target != nil {
			s += " at " + targetPhrase(in.Target)
		}
		return s
	case schemas.IntentDrag:
		return "dragged to " + targetPhrase(in.Target)
	case schemas.IntentTypeText:
		return fmt.Sprintf("typed %q", in.Text)
	case schemas.IntentPressKey:
		return "pressed " + strings.Join(in.Keys, "+")
	case schemas.IntentScroll:
		return fmt.Sprintf("scrolled %s %d", in.Direction, in.Amount)
	}
	return "did that"
}

func verbPhrase(in schemas.Intent) string {
	switch in.Kind {
	case schemas.IntentMoveCursorNamed, schemas.IntentMoveCursorAbsolute:
		return "the move"
	case schemas.IntentClick:
		return "the click"
	case schemas.IntentDrag:
		return "the drag"
	case schemas.IntentTypeText:
		return "typing"
	case schemas.IntentPressKey:
		return "the key press"
	case schemas.IntentScroll:
		return "scrolling"
	}
	return "that"
}

func clickWord(button schemas.MouseButton, count int) string {
	var verb string
	switch count {
	case 0, 1:
		verb = "clicked"
	case 2:
		verb = "double-clicked"
	case 3:
		verb = "triple-clicked"
	default:
		verb = fmt.Sprintf("clicked %d times", count)
	}
	if button == schemas.ButtonRight || button == schemas.ButtonMiddle {
		return fmt.Sprintf("%s with the %s button", verb, button)
	}
	return verb
}

func targetPhrase(t *schemas.Target) string {
	switch {
	case t == nil:
		return "the pointer"
	case t.Coordinates != nil:
		return fmt.Sprintf("%d, %d", t.Coordinates.X, t.Coordinates.Y)
	default:
		return "the " + string(t.Position)
	}
}

// nextVariant picks the phrasing index for a turn of kind. When the previous turn had the same
// kind, the index follows the option that reply started with, so consecutive replies never share
// phrasing however long the run. Turns without a recorded reply fall back to the run length.
func nextVariant(options []string, kind schemas.IntentKind, recent []conversation.Turn) int {
	run := repeats(kind, recent)
	if run == 0 {
		return 0
	}
	prev := recent[len(recent)-1].Reply
	used := -1
	for i, o := range options {
		if strings.HasPrefix(prev, o) && (used < 0 || len(o) > len(options[used])) {
			used = i
		}
	}
	if prev == "" || used < 0 {
		return run
	}
	return used + 1
}

// repeats counts the turns immediately before this one that had the same intent kind.
func repeats(kind schemas.IntentKind, recent []conversation.Turn) int {
	n := 0
	for i := len(recent) - 1; i >= 0 && recent[i].Intent.Kind == kind; i-- {
		n++
	}
	return n
}

func pick(options []string, variant int) string {
	if len(options) == 0 {
		return ""
	}
	return options[variant%len(options)]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
