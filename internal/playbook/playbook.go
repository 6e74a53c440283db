// Package playbook loads batch files of commands and raw actions and runs them through a
// session, halting on the first failing step.
package playbook

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/xkilldash9x/cursorctl/api/schemas"
	"github.com/xkilldash9x/cursorctl/internal/intent"
	"github.com/xkilldash9x/cursorctl/internal/translate"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidPlaybook = errors.New("invalid playbook")
	ErrInvalidAction   = errors.New("invalid action")
	ErrNotUnderstood   = errors.New("command not understood")
)

// strict rejects unknown keys so typos in a playbook fail at load time.
var strict = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// Playbook is a named, ordered list of steps.
type Playbook struct {
	Name            string `yaml:"name" json:"name"`
	ContinueOnError bool   `yaml:"continue_on_error" json:"continue_on_error"`
	Steps           []Step `yaml:"steps" json:"steps"`
}

// Step is either a text command (Say) or a raw action, never both.
type Step struct {
	Name            string      `yaml:"name,omitempty" json:"name,omitempty"`
	Say             string      `yaml:"say,omitempty" json:"say,omitempty"`
	Action          *ActionSpec `yaml:"action,omitempty" json:"action,omitempty"`
	ContinueOnError bool        `yaml:"continue_on_error,omitempty" json:"continue_on_error,omitempty"`
}

// ActionSpec is the file form of a device action. Zero durations and intervals fall back to the
// engine defaults.
type ActionSpec struct {
	Type       string   `yaml:"type" json:"type"`
	Position   string   `yaml:"position,omitempty" json:"position,omitempty"`
	X          int      `yaml:"x,omitempty" json:"x,omitempty"`
	Y          int      `yaml:"y,omitempty" json:"y,omitempty"`
	DurationMs int      `yaml:"duration_ms,omitempty" json:"duration_ms,omitempty"`
	Button     string   `yaml:"button,omitempty" json:"button,omitempty"`
	Count      int      `yaml:"count,omitempty" json:"count,omitempty"`
	Text       string   `yaml:"text,omitempty" json:"text,omitempty"`
	IntervalMs int      `yaml:"interval_ms,omitempty" json:"interval_ms,omitempty"`
	Keys       []string `yaml:"keys,omitempty" json:"keys,omitempty"`
	DX         int      `yaml:"dx,omitempty" json:"dx,omitempty"`
	DY         int      `yaml:"dy,omitempty" json:"dy,omitempty"`
}

// Load reads a playbook from disk. Files ending in .json are decoded as JSON, anything else as
// YAML.
func Load(path string) (*Playbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read playbook: %w", err)
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	pb, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if pb.Name == "" {
		pb.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return pb, nil
}

// Parse decodes and validates a playbook in the given format ("yaml" or "json").
func Parse(data []byte, format string) (*Playbook, error) {
	var pb Playbook
	switch format {
	case "json":
		if err := strict.Unmarshal(data, &pb); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPlaybook, err)
		}
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&pb); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPlaybook, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %q", ErrInvalidPlaybook, format)
	}
	if err := pb.Validate(); err != nil {
		return nil, err
	}
	return &pb, nil
}

// Validate checks the shape of every step. Action values are checked against the screen when
// the step runs.
func (pb *Playbook) Validate() error {
	if len(pb.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidPlaybook)
	}
	for i, s := range pb.Steps {
		hasSay := strings.TrimSpace(s.Say) != ""
		switch {
		case hasSay && s.Action != nil:
			return fmt.Errorf("%w: step %d has both say and action", ErrInvalidPlaybook, i+1)
		case !hasSay && s.Action == nil:
			return fmt.Errorf("%w: step %d has neither say nor action", ErrInvalidPlaybook, i+1)
		case s.Action != nil && s.Action.Type == "":
			return fmt.Errorf("%w: step %d action has no type", ErrInvalidPlaybook, i+1)
		}
	}
	return nil
}

// Label names the step for logs and reports.
func (s Step) Label(index int) string {
	switch {
	case s.Name != "":
		return s.Name
	case s.Say != "":
		return s.Say
	default:
		return fmt.Sprintf("step %d: %s", index+1, s.Action.Type)
	}
}

// Compile resolves a file action into device actions for the given screen. Named positions are
// resolved and absolute points clamped the same way spoken commands are.
func (a ActionSpec) Compile(vocab *intent.Vocabulary, t *translate.Translator, geo schemas.ScreenGeometry) ([]schemas.Action, error) {
	opts := t.Options()
	button, err := parseButton(a.Button)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(a.Type) {
	case "move":
		p, err := a.point(vocab, t, geo)
		if err != nil {
			return nil, err
		}
		return []schemas.Action{schemas.MoveTo(p.X, p.Y, orDefault(a.DurationMs, opts.MoveDurationMs))}, nil

	case "click":
		count := orDefault(a.Count, 1)
		if a.Count < 0 {
			return nil, fmt.Errorf("%w: click count %d", ErrInvalidAction, a.Count)
		}
		var out []schemas.Action
		if a.Position != "" || a.X != 0 || a.Y != 0 {
			p, err := a.point(vocab, t, geo)
			if err != nil {
				return nil, err
			}
			out = append(out, schemas.MoveTo(p.X, p.Y, orDefault(a.DurationMs, opts.MoveDurationMs)))
		}
		return append(out, schemas.ClickAt(button, count)), nil

	case "type":
		if a.Text == "" {
			return nil, fmt.Errorf("%w: type needs text", ErrInvalidAction)
		}
		return []schemas.Action{schemas.TypeChars(a.Text, orDefault(a.IntervalMs, opts.TypeIntervalMs))}, nil

	case "press":
		if len(a.Keys) == 0 {
			return nil, fmt.Errorf("%w: press needs keys", ErrInvalidAction)
		}
		chord := make([]string, 0, len(a.Keys))
		for _, k := range a.Keys {
			canonical, ok := vocab.LookupKey(k)
			if !ok {
				return nil, fmt.Errorf("%w: unknown key %q", ErrInvalidAction, k)
			}
			chord = append(chord, canonical)
		}
		return []schemas.Action{schemas.KeyChord(chord...)}, nil

	case "scroll":
		if a.DX == 0 && a.DY == 0 {
			return nil, fmt.Errorf("%w: scroll needs dx or dy", ErrInvalidAction)
		}
		return []schemas.Action{schemas.ScrollBy(a.DX, a.DY)}, nil

	case "button_down", "down":
		return []schemas.Action{schemas.ButtonDown(button)}, nil

	case "button_up", "up":
		return []schemas.Action{schemas.ButtonUp(button)}, nil
	}
	return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidAction, a.Type)
}

func (a ActionSpec) point(vocab *intent.Vocabulary, t *translate.Translator, geo schemas.ScreenGeometry) (schemas.Point, error) {
	if a.Position != "" {
		pos, ok := vocab.FindPosition(strings.ToLower(a.Position))
		if !ok {
			return schemas.Point{}, fmt.Errorf("%w: unknown position %q", ErrInvalidAction, a.Position)
		}
		return t.Resolve(pos, geo)
	}
	if a.X < 0 || a.Y < 0 {
		return schemas.Point{}, fmt.Errorf("%w: negative coordinates %d, %d", ErrInvalidAction, a.X, a.Y)
	}
	return t.Clamp(schemas.Point{X: a.X, Y: a.Y}, geo), nil
}

func parseButton(s string) (schemas.MouseButton, error) {
	switch b := schemas.MouseButton(strings.ToLower(s)); b {
	case "":
		return schemas.ButtonLeft, nil
	case schemas.ButtonLeft, schemas.ButtonRight, schemas.ButtonMiddle:
		return b, nil
	}
	return "", fmt.Errorf("%w: unknown button %q", ErrInvalidAction, s)
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
