package nlp

import (
	"fmt"
	"time"

	dateparser "github.com/markusmobius/go-dateparser"
)

// Bound says which end of a month a parsed month/year resolves to.
type Bound int

const (
	StartOfMonth Bound = iota
	EndOfMonth
)

// DateParser turns free-text month/year strings into calendar dates.
type DateParser interface {
	ParseMonthYear(text string, bound Bound) (time.Time, error)
}

// MonthYearParser is a DateParser backed by go-dateparser.
type MonthYearParser struct {
	now func() time.Time
}

// NewMonthYearParser returns a parser. now anchors relative expressions.
func NewMonthYearParser(now func() time.Time) *MonthYearParser {
	return &MonthYearParser{now: now}
}

// ParseMonthYear parses text such as "Sept 2019" or "march 2021" and returns
// midnight UTC on the first or last day of that month.
func (p *MonthYearParser) ParseMonthYear(text string, bound Bound) (time.Time, error) {
	preferred := dateparser.First
	if bound == EndOfMonth {
		preferred = dateparser.Last
	}

	cfg := &dateparser.Configuration{
		Languages:           []string{"en"},
		CurrentTime:         p.now(),
		PreferredDayOfMonth: preferred,
	}
	parsed, err := dateparser.Parse(cfg, text)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse %q: %w", text, err)
	}
	if parsed.Time.IsZero() {
		return time.Time{}, fmt.Errorf("parse %q: no date found", text)
	}

	return MonthBound(parsed.Time.Year(), parsed.Time.Month(), bound), nil
}

// MonthBound returns the first or last day of a month at midnight UTC.
func MonthBound(year int, month time.Month, bound Bound) time.Time {
	if bound == EndOfMonth {
		return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
}
