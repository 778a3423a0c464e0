package analysis

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"resumelens/internal/types"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayCase controls how matched skills are rendered.
type DisplayCase string

const (
	// DisplayOriginal keeps the casing of the first occurrence.
	DisplayOriginal DisplayCase = "original"
	// DisplayTitle renders skills in title case, e.g. "Aws".
	DisplayTitle DisplayCase = "title"
)

type skillEntry struct {
	phrase   string
	category types.SkillCategory
}

// SkillIndex finds vocabulary phrases in text. It is immutable and safe for
// concurrent use.
type SkillIndex struct {
	matcher     ahocorasick.AhoCorasick
	entries     []skillEntry
	displayCase DisplayCase
}

// NewSkillIndex compiles vocab into a case-insensitive automaton. Match
// reports the leftmost longest whole-word phrase on overlap.
func NewSkillIndex(vocab Vocabulary, displayCase DisplayCase) (*SkillIndex, error) {
	entries := vocab.normalizedEntries()
	if len(entries) == 0 {
		return nil, fmt.Errorf("skill vocabulary is empty")
	}
	if displayCase == "" {
		displayCase = DisplayOriginal
	}

	patterns := make([]string, len(entries))
	for i, e := range entries {
		patterns[i] = e.phrase
	}

	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchKind:            ahocorasick.StandardMatch,
	})

	return &SkillIndex{
		matcher:     builder.Build(patterns),
		entries:     entries,
		displayCase: displayCase,
	}, nil
}

// Size returns the number of distinct phrases in the index.
func (s *SkillIndex) Size() int {
	return len(s.entries)
}

// Match returns the skills found in text grouped by category. Within a
// category, entries are unique by case-folded form and ordered by first
// occurrence.
func (s *SkillIndex) Match(text string) types.SkillMatches {
	matches := types.SkillMatches{
		Technical:      []string{},
		Tools:          []string{},
		SoftSkills:     []string{},
		Certifications: []string{},
	}

	// phrases may wrap across lines
	haystack := strings.ReplaceAll(text, "\n", " ")

	var titler cases.Caser
	if s.displayCase == DisplayTitle {
		titler = cases.Title(language.English)
	}

	seen := map[string]bool{}
	for _, m := range s.wholeWordMatches(haystack) {
		entry := s.entries[m.pattern]
		key := string(entry.category) + "\x00" + entry.phrase
		if seen[key] {
			continue
		}
		seen[key] = true

		display := strings.Join(strings.Fields(text[m.start:m.end]), " ")
		if s.displayCase == DisplayTitle {
			display = titler.String(display)
		}
		matches.Add(entry.category, display)
	}
	return matches
}

type phraseMatch struct {
	pattern    int
	start, end int
}

// wholeWordMatches collects every occurrence that sits on word boundaries,
// then keeps the leftmost longest of each overlapping group. The boundary
// check runs before selection so a longer phrase that ends mid-word does
// not hide a shorter one.
func (s *SkillIndex) wholeWordMatches(haystack string) []phraseMatch {
	var candidates []phraseMatch
	iter := s.matcher.IterOverlapping(haystack)
	for m := iter.Next(); m != nil; m = iter.Next() {
		if onWordBoundary(haystack, m.Start(), m.End()) {
			candidates = append(candidates, phraseMatch{pattern: m.Pattern(), start: m.Start(), end: m.End()})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].start != candidates[j].start {
			return candidates[i].start < candidates[j].start
		}
		return candidates[i].end > candidates[j].end
	})

	selected := candidates[:0]
	lastEnd := 0
	for _, c := range candidates {
		if c.start < lastEnd {
			continue
		}
		selected = append(selected, c)
		lastEnd = c.end
	}
	return selected
}

func onWordBoundary(text string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
