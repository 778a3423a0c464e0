// Package nlp wraps the natural-language capabilities the analyzers consume:
// sentence segmentation, part-of-speech tagging, organization recognition,
// lemmatization and month/year date parsing.
package nlp

import (
	"fmt"
	"strings"

	"github.com/jdkato/prose/v2"
	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// LabelOrganization is the entity label for companies, schools and institutions.
const LabelOrganization = "ORG"

// Token is a word with its Penn Treebank tag.
type Token struct {
	Text string
	Tag  string
}

// IsVerb reports whether the token is tagged as any verb form.
func (t Token) IsVerb() bool {
	return strings.HasPrefix(t.Tag, "VB")
}

// Entity is a recognized named entity.
type Entity struct {
	Text  string
	Label string
}

// Document is the processed form of a text. Lines holds the tagged
// tokens of each non-blank input line, in order.
type Document struct {
	Sentences []string
	Lines     [][]Token
	Entities  []Entity
}

// Tokens returns every token in document order.
func (d *Document) Tokens() []Token {
	var out []Token
	for _, line := range d.Lines {
		out = append(out, line...)
	}
	return out
}

// Organizations returns the text of every organization entity.
func (d *Document) Organizations() []string {
	var out []string
	for _, e := range d.Entities {
		if e.Label == LabelOrganization {
			out = append(out, e.Text)
		}
	}
	return out
}

// Pipeline processes text into sentences, tagged tokens and entities.
type Pipeline interface {
	Process(text string) (*Document, error)
}

// ProsePipeline is the Pipeline backed by prose's averaged perceptron
// tagger. prose's entity model only knows PERSON and GPE, so
// organizations come from the tagged tokens.
//
// The tagger model and the punkt sentence tokenizer are loaded once in
// NewProsePipeline and shared read-only by every Process call.
type ProsePipeline struct {
	model     *prose.Model
	segmenter *sentences.DefaultSentenceTokenizer
}

// NewProsePipeline loads the English models. It is expensive; build one
// per process.
func NewProsePipeline() (*ProsePipeline, error) {
	segmenter, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load sentence tokenizer: %w", err)
	}
	return &ProsePipeline{
		model:     prose.ModelFromData("en"),
		segmenter: segmenter,
	}, nil
}

// Process runs segmentation, tagging and organization recognition.
// Each line is processed separately so headers and bullets do not
// bleed into neighbouring sentences.
func (p *ProsePipeline) Process(text string) (*Document, error) {
	out := &Document{}
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		doc, err := prose.NewDocument(line,
			prose.UsingModel(p.model),
			prose.WithSegmentation(false),
			prose.WithExtraction(false))
		if err != nil {
			return nil, fmt.Errorf("prose: %w", err)
		}

		for _, s := range p.segmenter.Tokenize(line) {
			if sentence := strings.TrimSpace(s.Text); sentence != "" {
				out.Sentences = append(out.Sentences, sentence)
			}
		}

		tokens := make([]Token, 0, len(doc.Tokens()))
		for _, tok := range doc.Tokens() {
			tokens = append(tokens, Token{Text: tok.Text, Tag: tok.Tag})
		}
		out.Lines = append(out.Lines, tokens)

		for _, org := range FindOrganizations(tokens) {
			out.Entities = append(out.Entities, Entity{Text: org, Label: LabelOrganization})
		}
	}
	return out, nil
}
