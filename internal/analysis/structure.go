package analysis

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"resumelens/internal/types"
)

const maxHeaderWords = 5

// Format issue texts reported by AnalyzeStructure.
const (
	IssueTooShort          = "Resume is too short"
	IssueTooLong           = "Resume is too long"
	IssueNoSections        = "No standard sections detected"
	IssueMissingExperience = "Missing experience or projects section"
	IssueMissingEducation  = "Missing education section"
	IssueMissingSkills     = "Missing skills section"
)

type sectionKeywords struct {
	section types.Section
	pattern *regexp.Regexp
}

func keywordPattern(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(words, "|") + `)\b`)
}

var sectionVocabulary = []sectionKeywords{
	{types.SectionSummary, keywordPattern("summary", "profile", "objective", "about me", "overview")},
	{types.SectionExperience, keywordPattern("experience", "work", "employment", "career history", "work history")},
	{types.SectionEducation, keywordPattern("education", "academic", "academics", "qualifications")},
	{types.SectionSkills, keywordPattern("skills", "competencies", "expertise", "technologies", "tech stack")},
	{types.SectionProjects, keywordPattern("projects", "portfolio")},
	{types.SectionCertifications, keywordPattern("certifications", "certificates", "licenses", "licences")},
	{types.SectionReferences, keywordPattern("references", "referees")},
}

var minorWords = map[string]bool{"and": true, "of": true, "&": true, "the": true, "in": true, "for": true, "to": true, "/": true}

// AnalyzeStructure detects canonical section headers, scores their order
// and reports length and completeness issues.
func AnalyzeStructure(text string, settings Settings) types.SectionSet {
	set := types.SectionSet{
		Sections:     []types.Section{},
		FormatIssues: []string{},
		WordCount:    len(strings.Fields(text)),
	}

	seen := map[types.Section]bool{}
	for _, line := range strings.Split(text, "\n") {
		for _, section := range headerSections(line) {
			if !seen[section] {
				seen[section] = true
				set.Sections = append(set.Sections, section)
			}
		}
	}

	set.OrderScore = OrderScore(set.Sections)

	if set.WordCount < settings.MinWords {
		set.FormatIssues = append(set.FormatIssues, IssueTooShort)
	}
	if set.WordCount > settings.MaxWords {
		set.FormatIssues = append(set.FormatIssues, IssueTooLong)
	}
	if len(set.Sections) == 0 {
		set.FormatIssues = append(set.FormatIssues, IssueNoSections)
	}
	if !seen[types.SectionExperience] && !seen[types.SectionProjects] {
		set.FormatIssues = append(set.FormatIssues, IssueMissingExperience)
	}
	if !seen[types.SectionEducation] {
		set.FormatIssues = append(set.FormatIssues, IssueMissingEducation)
	}
	if !seen[types.SectionSkills] {
		set.FormatIssues = append(set.FormatIssues, IssueMissingSkills)
	}
	return set
}

// headerSections returns the sections a header line names, in the order
// their keywords appear. Lines that do not look like headers yield nothing.
func headerSections(line string) []types.Section {
	trimmed := strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "•·*-–#>"))
	hasColon := strings.HasSuffix(trimmed, ":")
	trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ":"))

	words := strings.Fields(trimmed)
	if len(words) == 0 || len(words) > maxHeaderWords {
		return nil
	}
	if !hasColon && !isAllCaps(trimmed) && !isTitleCase(words) {
		return nil
	}

	type hit struct {
		pos     int
		section types.Section
	}
	var hits []hit
	for _, kw := range sectionVocabulary {
		if loc := kw.pattern.FindStringIndex(trimmed); loc != nil {
			hits = append(hits, hit{loc[0], kw.section})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]types.Section, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.section)
	}
	return out
}

func isAllCaps(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters > 0
}

func isTitleCase(words []string) bool {
	for _, w := range words {
		if minorWords[strings.ToLower(w)] {
			continue
		}
		r := []rune(w)
		if !unicode.IsUpper(r[0]) {
			return false
		}
	}
	return true
}

// OrderScore rates how closely the detected sections follow the ideal order:
// the share of adjacent pairs that are in ideal order, as a percentage.
// No sections score 0 and a single section scores 50.
func OrderScore(sections []types.Section) int {
	switch len(sections) {
	case 0:
		return 0
	case 1:
		return 50
	}

	rank := make(map[types.Section]int, len(types.IdealSectionOrder))
	for i, s := range types.IdealSectionOrder {
		rank[s] = i
	}

	ordered := 0
	for i := 0; i+1 < len(sections); i++ {
		if rank[sections[i]] < rank[sections[i+1]] {
			ordered++
		}
	}
	return int(math.Round(100 * float64(ordered) / float64(len(sections)-1)))
}
