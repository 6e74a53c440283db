package intent

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/xkilldash9x/cursorctl/api/schemas"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// Vocabulary is the static set of phrase, position and key tables the interpreter matches against.
// It is read once at session start and never mutated afterwards.
type Vocabulary struct {
	Greetings        []string                           `yaml:"greetings"`
	Gratitude        []string                           `yaml:"gratitude"`
	Help             []string                           `yaml:"help"`
	Farewell         []string                           `yaml:"farewell"`
	UnsupportedVerbs []string                           `yaml:"unsupported_verbs"`
	Positions        map[schemas.NamedPosition][]string `yaml:"positions"`
	Keys             map[string][]string                `yaml:"keys"`
	Hotkeys          map[string][]string                `yaml:"hotkeys"`

	keyAliases      map[string]string
	positionAliases []positionAlias
	hotkeyPattern   *regexp.Regexp
}

type positionAlias struct {
	pattern  *regexp.Regexp
	alias    string
	position schemas.NamedPosition
}

var defaultVocabulary = sync.OnceValues(func() (*Vocabulary, error) {
	return ParseVocabulary(defaultVocabularyYAML)
})

// DefaultVocabulary returns the built-in tables.
func DefaultVocabulary() *Vocabulary {
	v, err := defaultVocabulary()
	if err != nil {
		panic(fmt.Sprintf("intent: built-in vocabulary is invalid: %v", err))
	}
	return v
}

// ParseVocabulary decodes a full vocabulary document.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	v := &Vocabulary{}
	if err := decodeVocabulary(data, v); err != nil {
		return nil, err
	}
	if err := v.compile(); err != nil {
		return nil, err
	}
	return v, nil
}

// LoadVocabulary reads the YAML file at path and layers it over the built-in tables.
// An empty path returns the built-in tables.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return DefaultVocabulary(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("intent: reading vocabulary: %w", err)
	}

	v := &Vocabulary{}
	if err := decodeVocabulary(defaultVocabularyYAML, v); err != nil {
		return nil, err
	}
	if err := decodeVocabulary(data, v); err != nil {
		return nil, fmt.Errorf("intent: %s: %w", path, err)
	}
	if err := v.compile(); err != nil {
		return nil, fmt.Errorf("intent: %s: %w", path, err)
	}
	return v, nil
}

func decodeVocabulary(data []byte, v *Vocabulary) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decoding vocabulary: %w", err)
	}
	return nil
}

// compile validates the tables and builds the lookup structures.
func (v *Vocabulary) compile() error {
	known := make(map[schemas.NamedPosition]bool, len(schemas.NamedPositions))
	for _, p := range schemas.NamedPositions {
		known[p] = true
	}

	v.positionAliases = v.positionAliases[:0]
	for pos, aliases := range v.Positions {
		if !known[pos] {
			return fmt.Errorf("unknown position %q", pos)
		}
		for _, a := range aliases {
			a = strings.ToLower(strings.TrimSpace(a))
			if a == "" {
				continue
			}
			v.positionAliases = append(v.positionAliases, positionAlias{
				pattern:  wordPattern(a),
				alias:    a,
				position: pos,
			})
		}
	}
	// Longer aliases first so "top left corner" is preferred over "top left" at the same offset.
	sort.SliceStable(v.positionAliases, func(i, j int) bool {
		return len(v.positionAliases[i].alias) > len(v.positionAliases[j].alias)
	})

	v.keyAliases = make(map[string]string)
	for canonical, aliases := range v.Keys {
		v.keyAliases[canonical] = canonical
		for _, a := range aliases {
			v.keyAliases[strings.ToLower(strings.TrimSpace(a))] = canonical
		}
	}

	names := make([]string, 0, len(v.Hotkeys))
	for name, keys := range v.Hotkeys {
		if len(keys) == 0 {
			return fmt.Errorf("hotkey %q has no keys", name)
		}
		for _, k := range keys {
			if _, ok := v.LookupKey(k); !ok {
				return fmt.Errorf("hotkey %q uses unknown key %q", name, k)
			}
		}
		names = append(names, regexp.QuoteMeta(strings.ToLower(name)))
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })
	if len(names) > 0 {
		v.hotkeyPattern = regexp.MustCompile(`\b(?:` + strings.Join(names, "|") + `)\b`)
	} else {
		v.hotkeyPattern = nil
	}
	return nil
}

// LookupKey resolves a spelled key name to its canonical form. Any single printable character
// is its own key.
func (v *Vocabulary) LookupKey(name string) (string, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := v.keyAliases[name]; ok {
		return canonical, true
	}
	if utf8.RuneCountInString(name) == 1 && name != " " && name != "+" {
		return name, true
	}
	return "", false
}

// Hotkey returns the chord bound to a hotkey name such as "copy".
func (v *Vocabulary) Hotkey(name string) ([]string, bool) {
	keys, ok := v.Hotkeys[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, false
	}
	chord := make([]string, 0, len(keys))
	for _, k := range keys {
		canonical, _ := v.LookupKey(k)
		chord = append(chord, canonical)
	}
	return chord, true
}

// FindPosition returns the named position whose alias appears earliest in text.
func (v *Vocabulary) FindPosition(text string) (schemas.NamedPosition, bool) {
	best, bestAt := schemas.NamedPosition(""), -1
	for _, pa := range v.positionAliases {
		loc := pa.pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if bestAt == -1 || loc[0] < bestAt {
			best, bestAt = pa.position, loc[0]
		}
	}
	return best, bestAt >= 0
}

// wordPattern matches phrase as whole words.
func wordPattern(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?:^|\s)` + regexp.QuoteMeta(phrase) + `(?:$|\s)`)
}
