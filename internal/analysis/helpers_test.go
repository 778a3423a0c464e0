package analysis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resumelens/internal/nlp"
	"resumelens/internal/types"
)

// fakePipeline splits lines into words, tags words ending in "ed" as past
// tense verbs and reports configured organizations when they appear.
type fakePipeline struct {
	orgs []string
	err  error
}

func (p fakePipeline) Process(text string) (*nlp.Document, error) {
	if p.err != nil {
		return nil, p.err
	}
	doc := &nlp.Document{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		doc.Sentences = append(doc.Sentences, line)

		var tokens []nlp.Token
		for _, field := range strings.Fields(line) {
			word := strings.Trim(field, ".,;:()")
			tag := "NN"
			if strings.HasSuffix(strings.ToLower(word), "ed") {
				tag = "VBD"
			}
			tokens = append(tokens, nlp.Token{Text: word, Tag: tag})
		}
		doc.Lines = append(doc.Lines, tokens)

		for _, org := range p.orgs {
			if strings.Contains(line, org) {
				doc.Entities = append(doc.Entities, nlp.Entity{Text: org, Label: nlp.LabelOrganization})
			}
		}
	}
	return doc, nil
}

type fakeLemmatizer map[string]string

func (f fakeLemmatizer) Lemma(word string) string {
	word = strings.ToLower(word)
	if lemma, ok := f[word]; ok {
		return lemma
	}
	return word
}

var testLemmas = fakeLemmatizer{
	"led":       "lead",
	"managed":   "manage",
	"developed": "develop",
	"built":     "build",
	"designed":  "design",
	"increased": "increase",
	"reduced":   "reduce",
}

// fakeDates parses "Jan 2006" and "January 2006" forms.
type fakeDates struct{}

func (fakeDates) ParseMonthYear(text string, bound nlp.Bound) (time.Time, error) {
	if text == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	normalized := strings.ToUpper(text[:1]) + strings.ToLower(text[1:])
	for _, layout := range []string{"Jan 2006", "January 2006"} {
		if t, err := time.Parse(layout, normalized); err == nil {
			return nlp.MonthBound(t.Year(), t.Month(), bound), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse %q", text)
}

type fakeGrammar struct {
	issues []types.GrammarIssue
	err    error
}

func (g fakeGrammar) Check(context.Context, string) ([]types.GrammarIssue, error) {
	return g.issues, g.err
}

var testNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

func newTestContext(t interface{ Fatalf(string, ...any) }, mutate func(*Context)) *Context {
	skills, err := NewSkillIndex(DefaultVocabulary(), DisplayOriginal)
	if err != nil {
		t.Fatalf("skill index: %v", err)
	}
	c := Context{
		Pipeline:   fakePipeline{},
		Lemmatizer: testLemmas,
		Dates:      fakeDates{},
		Skills:     skills,
		Clock:      func() time.Time { return testNow },
	}
	if mutate != nil {
		mutate(&c)
	}
	built, err := NewContext(c)
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	return built
}
