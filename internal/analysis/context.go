package analysis

import (
	"context"
	"fmt"
	"sync"
	"time"

	"resumelens/internal/errors"
	"resumelens/internal/nlp"
	"resumelens/internal/types"
)

// GrammarChecker reports grammar and spelling issues for a text.
type GrammarChecker interface {
	Check(ctx context.Context, text string) ([]types.GrammarIssue, error)
}

// Settings are the tunable thresholds of the pipeline.
type Settings struct {
	GapThresholdDays int
	MinWords         int
	MaxWords         int
}

// DefaultSettings returns the stock thresholds.
func DefaultSettings() Settings {
	return Settings{GapThresholdDays: 60, MinWords: 300, MaxWords: 1500}
}

// Context holds the read-only handles every extractor shares. It is built
// once per process and must not be modified after NewContext returns.
type Context struct {
	Pipeline   nlp.Pipeline
	Lemmatizer nlp.Lemmatizer
	Dates      nlp.DateParser
	Skills     *SkillIndex
	Grammar    GrammarChecker
	Settings   Settings
	Clock      func() time.Time
	Location   *time.Location
}

// NewContext validates c and fills optional fields.
func NewContext(c Context) (*Context, error) {
	switch {
	case c.Pipeline == nil:
		return nil, fmt.Errorf("analysis context: nlp pipeline is required")
	case c.Lemmatizer == nil:
		return nil, fmt.Errorf("analysis context: lemmatizer is required")
	case c.Dates == nil:
		return nil, fmt.Errorf("analysis context: date parser is required")
	case c.Skills == nil:
		return nil, fmt.Errorf("analysis context: skill index is required")
	}
	if c.Grammar == nil {
		c.Grammar = noGrammar{}
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	if c.Settings == (Settings{}) {
		c.Settings = DefaultSettings()
	}
	return &c, nil
}

// AnalysisDate is today's date in the configured zone, as midnight UTC.
func (c *Context) AnalysisDate() time.Time {
	now := c.Clock().In(c.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

type noGrammar struct{}

func (noGrammar) Check(context.Context, string) ([]types.GrammarIssue, error) { return nil, nil }

// Loader builds a Context at most once, on first use.
type Loader struct {
	once  sync.Once
	build func() (*Context, error)
	ctx   *Context
	err   error
}

// NewLoader returns a Loader that calls build on the first Get.
func NewLoader(build func() (*Context, error)) *Loader {
	return &Loader{build: build}
}

// StaticLoader wraps an already built Context.
func StaticLoader(c *Context) *Loader {
	l := &Loader{ctx: c}
	l.once.Do(func() {})
	return l
}

// Get returns the shared Context. A failed build is reported on every call
// as SERVICE_UNAVAILABLE.
func (l *Loader) Get() (*Context, error) {
	l.once.Do(func() {
		l.ctx, l.err = l.build()
		if l.err != nil {
			l.err = errors.NewServiceError(errors.ErrCodeServiceUnavailable,
				"analysis resources could not be initialized", l.err)
		}
	})
	return l.ctx, l.err
}
