package intent

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// edgePunctuation is stripped from both ends of an utterance.
const edgePunctuation = "!?."

// tokenPunctuation is trimmed from each lowered token before matching.
const tokenPunctuation = "!?.,;:\"'“”()"

var quotePatterns = []*regexp.Regexp{
	regexp.MustCompile(`"([^"]*)"`),
	regexp.MustCompile(`“([^”]*)”`),
	// Single quotes only count at word boundaries so contractions survive.
	regexp.MustCompile(`(?:^|\s)'([^']+)'(?:$|[\s!?.,;:])`),
}

// Token is one whitespace-separated word, kept in both matching and verbatim form.
type Token struct {
	Lower string
	Raw   string
	// Start and End are the byte offsets of the word in the raw utterance.
	Start, End int
}

// Normalized is the canonical form of a raw utterance.
type Normalized struct {
	// Raw is the input exactly as received.
	Raw string
	// Text is the lowered tokens joined by single spaces.
	Text   string
	Tokens []Token
	// Quoted holds every quoted substring verbatim, in order of appearance.
	Quoted []string
}

// Normalize lower-cases, collapses whitespace and strips edge punctuation. It never fails; blank
// input yields a Normalized with no tokens.
func Normalize(raw string) Normalized {
	n := Normalized{Raw: raw}

	for _, re := range quotePatterns {
		for _, m := range re.FindAllStringSubmatch(raw, -1) {
			if m[1] != "" {
				n.Quoted = append(n.Quoted, m[1])
			}
		}
	}

	spans := fieldSpans(raw)
	words := make([]string, 0, len(spans))
	for i, span := range spans {
		f := raw[span[0]:span[1]]
		if i == 0 {
			f = strings.TrimLeft(f, edgePunctuation)
		}
		if i == len(spans)-1 {
			f = strings.TrimRight(f, edgePunctuation)
		}
		lower := strings.Trim(strings.ToLower(f), tokenPunctuation)
		if lower == "" {
			continue
		}
		n.Tokens = append(n.Tokens, Token{Lower: lower, Raw: raw[span[0]:span[1]], Start: span[0], End: span[1]})
		words = append(words, lower)
	}
	n.Text = strings.Join(words, " ")
	return n
}

// Empty reports whether the utterance had no words.
func (n Normalized) Empty() bool { return len(n.Tokens) == 0 }

// Words returns the lowered tokens.
func (n Normalized) Words() []string {
	words := make([]string, len(n.Tokens))
	for i, t := range n.Tokens {
		words[i] = t.Lower
	}
	return words
}

// tokenAt maps a byte offset in Text to the index of the token containing it.
func (n Normalized) tokenAt(offset int) int {
	if offset <= 0 {
		return 0
	}
	return strings.Count(n.Text[:offset], " ")
}

// rawAfter returns the raw utterance between the end of token i and the start of token end,
// trimmed of surrounding whitespace. Punctuation and dropped symbol-only words are kept. An end
// past the last token reads to the end of the input.
func (n Normalized) rawAfter(i, end int) string {
	if i < 0 || i >= len(n.Tokens) {
		return ""
	}
	from, to := n.Tokens[i].End, len(n.Raw)
	if end < len(n.Tokens) {
		to = n.Tokens[end].Start
	}
	if from >= to {
		return ""
	}
	return strings.TrimSpace(n.Raw[from:to])
}

// fieldSpans returns the [start, end) byte offsets of every whitespace-separated field in s.
func fieldSpans(s string) [][2]int {
	var spans [][2]int
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, [2]int{start, i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, [2]int{start, len(s)})
	}
	return spans
}

// textAfter returns the lowered text following the token at index i.
func (n Normalized) textAfter(i int) string {
	if i+1 >= len(n.Tokens) {
		return ""
	}
	words := n.Words()[i+1:]
	return strings.Join(words, " ")
}

// longestQuote returns the longest quoted substring, measured in characters.
func (n Normalized) longestQuote() (string, bool) {
	best, found := "", false
	for _, q := range n.Quoted {
		if utf8.RuneCountInString(q) > utf8.RuneCountInString(best) {
			best, found = q, true
		}
	}
	return best, found
}
