// Package preprocess turns raw complaint text into the token form consumed by
// the statistical classifiers. The same Normalizer must be used when exporting
// training text and at inference time.
package preprocess

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"complaint-triage/internal/classifier/textre"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

const NumberPlaceholder = "num"

var (
	urlPattern   = textre.MustCompile(`http\S+|www\S+`)
	emailPattern = textre.MustCompile(`\S+@\S+`)
	digitPattern = textre.MustCompile(`\d+`)
)

const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Lemmatizer reduces a lowercase token to its dictionary base form.
type Lemmatizer interface {
	Lemma(word string) string
}

type Normalizer struct {
	lemmatizer Lemmatizer
	stopWords  map[string]struct{}
}

func New(lemmatizer Lemmatizer) *Normalizer {
	return &Normalizer{
		lemmatizer: lemmatizer,
		stopWords:  buildStopWords(),
	}
}

// NewDefault builds a Normalizer backed by the English golem dictionary.
// Loading the dictionary takes a moment, so call it once at startup.
func NewDefault() (*Normalizer, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemmatizer: %w", err)
	}
	return New(lemmatizer), nil
}

// Normalize lowercases text, strips URLs, emails and punctuation, replaces
// digit runs with a placeholder, removes stop words and short tokens, and
// lemmatizes what remains. Empty input yields "".
func (n *Normalizer) Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, "")
	text = emailPattern.ReplaceAllString(text, "")
	text = digitPattern.ReplaceAllString(text, " "+NumberPlaceholder+" ")
	text = stripPunctuation(text)

	tokens := strings.Fields(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !n.keep(tok) {
			continue
		}
		lemma := tok
		if n.lemmatizer != nil {
			lemma = n.lemmatizer.Lemma(tok)
		}
		// a lemma can land on a stop word ("doing" -> "do"); filtering it
		// again keeps Normalize idempotent
		if lemma != tok && !n.keep(lemma) {
			continue
		}
		out = append(out, lemma)
	}

	return strings.Join(out, " ")
}

// IsStopWord reports whether tok is removed during normalization.
func (n *Normalizer) IsStopWord(tok string) bool {
	_, ok := n.stopWords[tok]
	return ok
}

func (n *Normalizer) keep(tok string) bool {
	if utf8.RuneCountInString(tok) <= 1 {
		return false
	}
	return !n.IsStopWord(tok)
}

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if r < utf8.RuneSelf && strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, s)
}
