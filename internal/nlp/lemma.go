package nlp

import (
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
)

// Lemmatizer reduces inflected words to their dictionary form.
type Lemmatizer interface {
	Lemma(word string) string
}

// GolemLemmatizer is a Lemmatizer backed by golem's English dictionary.
type GolemLemmatizer struct {
	lem *golem.Lemmatizer
}

// NewGolemLemmatizer loads the English dictionary.
func NewGolemLemmatizer() (*GolemLemmatizer, error) {
	lem, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("load english lemma dictionary: %w", err)
	}
	return &GolemLemmatizer{lem: lem}, nil
}

// Lemma returns the lower-cased lemma of word.
func (g *GolemLemmatizer) Lemma(word string) string {
	return strings.ToLower(g.lem.Lemma(strings.ToLower(word)))
}
