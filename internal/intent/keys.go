package intent

import (
	"strings"
)

// keyFiller words are dropped from key expressions: "press the enter key".
var keyFiller = map[string]bool{
	"the": true, "key": true, "keys": true, "button": true, "combo": true,
	"combination": true, "shortcut": true, "please": true, "now": true,
}

// ParseKeyExpression turns a spoken key expression into an ordered chord. It accepts
// "enter", "ctrl+c", "control + shift + t", "ctrl shift t", "page up" and hotkey names such as
// "copy". Unknown names fail with ErrUnknownKey.
func (v *Vocabulary) ParseKeyExpression(expr string) ([]string, error) {
	expr = strings.ToLower(strings.TrimSpace(expr))

	var words []string
	for _, w := range strings.Fields(strings.ReplaceAll(expr, "+", " + ")) {
		if !keyFiller[w] {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil, extractionError("press", ErrUnknownKey, "no key given")
	}

	joined := strings.Join(words, " ")
	if chord, ok := v.Hotkey(joined); ok {
		return chord, nil
	}

	var chord []string
	for i := 0; i < len(words); {
		if words[i] == "+" {
			i++
			continue
		}
		// Prefer the longest multi-word alias starting here ("page up" before "page").
		matched := false
		for span := min(3, len(words)-i); span >= 1; span-- {
			candidate := strings.Join(words[i:i+span], " ")
			if strings.Contains(candidate, "+") {
				continue
			}
			if key, ok := v.LookupKey(candidate); ok {
				chord = append(chord, key)
				i += span
				matched = true
				break
			}
		}
		if !matched {
			return nil, extractionError("press", ErrUnknownKey, "%q", words[i])
		}
	}
	if len(chord) == 0 {
		return nil, extractionError("press", ErrUnknownKey, "no key given")
	}
	return chord, nil
}
