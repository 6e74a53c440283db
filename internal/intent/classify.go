package intent

import (
	"regexp"
	"strings"

	"github.com/xkilldash9x/cursorctl/api/schemas"
)

// verbRule binds an actionable verb pattern to the extractor that completes its intent.
type verbRule struct {
	verb    string
	pattern *regexp.Regexp
	extract func(c *Classifier, n Normalized, after int, match string) (schemas.Intent, error)
}

// phraseRule matches a conversational phrase table. A phrase matches tightly when at most
// maxSupersetTokens words surround it. Leading and anywhere widen the match for long sentences
// once no table matched tightly.
type phraseRule struct {
	kind     schemas.IntentKind
	phrases  [][]string
	leading  bool
	anywhere bool
}

// maxSupersetTokens bounds how much extra text may surround a conversational phrase.
const maxSupersetTokens = 3

// Classifier maps normalized text to exactly one Intent. It is a pure function of its input and
// the vocabulary it was built with; conversation history never influences the result.
type Classifier struct {
	vocab          *Vocabulary
	verbs          []verbRule
	conversational []phraseRule
	unsupported    map[string]bool
}

// NewClassifier builds a classifier over vocab. A nil vocab uses the built-in tables.
func NewClassifier(vocab *Vocabulary) *Classifier {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	c := &Classifier{vocab: vocab}

	// Rule order breaks ties between verbs that start at the same offset.
	c.verbs = []verbRule{
		{verb: "double click", pattern: regexp.MustCompile(`\bdouble[ -]?click\b`), extract: clickExtractor(schemas.ButtonLeft, 2)},
		{verb: "triple click", pattern: regexp.MustCompile(`\btriple[ -]?click\b`), extract: clickExtractor(schemas.ButtonLeft, 3)},
		{verb: "right click", pattern: regexp.MustCompile(`\bright[ -]?click\b`), extract: clickExtractor(schemas.ButtonRight, 1)},
		{verb: "middle click", pattern: regexp.MustCompile(`\bmiddle[ -]?click\b`), extract: clickExtractor(schemas.ButtonMiddle, 1)},
		{verb: "click", pattern: regexp.MustCompile(`\bclick\b`), extract: clickExtractor(schemas.ButtonLeft, 1)},
		{verb: "drag", pattern: regexp.MustCompile(`\bdrag\b`), extract: extractDrag},
		{verb: "move", pattern: regexp.MustCompile(`\b(?:move|go to)\b`), extract: extractMove},
		{verb: "type", pattern: regexp.MustCompile(`\btype\b`), extract: extractType},
		{verb: "press", pattern: regexp.MustCompile(`\b(?:press|hit)\b`), extract: extractPress},
		{verb: "scroll", pattern: regexp.MustCompile(`\bscroll\b`), extract: extractScroll},
	}
	if vocab.hotkeyPattern != nil {
		c.verbs = append(c.verbs, verbRule{verb: "hotkey", pattern: vocab.hotkeyPattern, extract: extractHotkey})
	}

	c.conversational = []phraseRule{
		{kind: schemas.IntentHelpRequest, phrases: splitPhrases(vocab.Help), anywhere: true},
		{kind: schemas.IntentGratitude, phrases: splitPhrases(vocab.Gratitude), leading: true},
		{kind: schemas.IntentFarewell, phrases: splitPhrases(vocab.Farewell)},
		{kind: schemas.IntentGreeting, phrases: splitPhrases(vocab.Greetings)},
	}

	c.unsupported = make(map[string]bool, len(vocab.UnsupportedVerbs))
	for _, v := range vocab.UnsupportedVerbs {
		c.unsupported[strings.ToLower(strings.TrimSpace(v))] = true
	}
	return c
}

// Vocabulary returns the tables the classifier matches against.
func (c *Classifier) Vocabulary() *Vocabulary { return c.vocab }

// Classify returns the intent for n. Extraction failures yield an Unrecognized intent.
func (c *Classifier) Classify(n Normalized) schemas.Intent {
	in, _ := c.Interpret(n)
	return in
}

// Interpret is Classify that also returns the *ExtractionError behind an Unrecognized intent.
func (c *Classifier) Interpret(n Normalized) (schemas.Intent, error) {
	if n.Empty() {
		return schemas.Intent{Kind: schemas.IntentUnknownChat, OriginalText: n.Raw}, nil
	}

	if rule, loc := c.earliestVerb(n.Text); rule != nil {
		// Everything after the last token of the verb phrase is the argument text.
		after := n.tokenAt(loc[1] - 1)
		in, err := rule.extract(c, n, after, n.Text[loc[0]:loc[1]])
		if err != nil {
			return schemas.Intent{
				Kind:         schemas.IntentUnrecognized,
				OriginalText: n.Raw,
				Reason:       err.Error(),
			}, err
		}
		return in, nil
	}

	words := n.Words()
	for _, pr := range c.conversational {
		if pr.matches(words) {
			return schemas.Intent{Kind: pr.kind}, nil
		}
	}
	for _, pr := range c.conversational {
		if pr.matchesLoosely(words) {
			return schemas.Intent{Kind: pr.kind}, nil
		}
	}

	if lead := leadingVerb(words); c.unsupported[lead] {
		err := extractionError(lead, ErrUnsupportedCommand, "%q", n.Text)
		return schemas.Intent{
			Kind:         schemas.IntentUnrecognized,
			OriginalText: n.Raw,
			Reason:       err.Error(),
		}, err
	}
	return schemas.Intent{Kind: schemas.IntentUnknownChat, OriginalText: n.Raw}, nil
}

// earliestVerb returns the rule whose pattern matches first in text. Rule order breaks ties.
func (c *Classifier) earliestVerb(text string) (*verbRule, []int) {
	var best *verbRule
	var bestLoc []int
	for i := range c.verbs {
		loc := c.verbs[i].pattern.FindStringIndex(text)
		if loc == nil {
			continue
		}
		if best == nil || loc[0] < bestLoc[0] {
			best, bestLoc = &c.verbs[i], loc
		}
	}
	return best, bestLoc
}

// leadingVerb skips politeness words and returns the first word of the imperative.
func leadingVerb(words []string) string {
	for _, w := range words {
		switch w {
		case "please", "can", "could", "would", "you", "now", "just", "kindly":
			continue
		}
		return w
	}
	return ""
}

func (p phraseRule) matches(words []string) bool {
	for _, phrase := range p.phrases {
		if len(words)-len(phrase) <= maxSupersetTokens && containsRun(words, phrase) {
			return true
		}
	}
	return false
}

func (p phraseRule) matchesLoosely(words []string) bool {
	for _, phrase := range p.phrases {
		if p.leading && len(phrase) <= len(words) && containsRun(words[:len(phrase)], phrase) {
			return true
		}
		if p.anywhere && containsRun(words, phrase) {
			return true
		}
	}
	return false
}

// containsRun reports whether run appears contiguously in words.
func containsRun(words, run []string) bool {
	if len(run) == 0 || len(run) > len(words) {
		return false
	}
outer:
	for i := 0; i+len(run) <= len(words); i++ {
		for j := range run {
			if words[i+j] != run[j] {
				continue outer
			}
		}
		return true
	}
	return false
}

func splitPhrases(phrases []string) [][]string {
	out := make([][]string, 0, len(phrases))
	for _, p := range phrases {
		if words := strings.Fields(strings.ToLower(p)); len(words) > 0 {
			out = append(out, words)
		}
	}
	return out
}
