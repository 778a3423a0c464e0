package analysis

import (
	"regexp"
	"slices"
	"strings"

	"resumelens/internal/nlp"
	"resumelens/internal/types"
)

const maxHighlights = 10

var (
	educationKeywords  = keywordPattern("bachelor", "bachelors", "master", "masters", "phd", "degree", "diploma", "certificate")
	experienceKeywords = keywordPattern("experience", "work", "job", "position", "role")
)

var jobTitleKeywords = []string{
	"engineer", "developer", "manager", "analyst", "designer", "architect",
	"consultant", "scientist", "administrator", "intern", "director", "lead",
}

var jobTitlePatterns = func() map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(jobTitleKeywords))
	for _, word := range jobTitleKeywords {
		patterns[word] = regexp.MustCompile(`(?i)\b` + word + `s?\b`)
	}
	return patterns
}()

// ExtractHighlights collects informational sentences about education and
// experience and the job-title keywords mentioned in text.
func ExtractHighlights(text string, doc *nlp.Document) types.Highlights {
	h := types.Highlights{
		EducationEntries:     []string{},
		ExperienceStatements: []string{},
		JobTitles:            findJobTitles(text),
	}
	if doc == nil {
		return h
	}

	for _, sentence := range doc.Sentences {
		sentence = strings.TrimSpace(sentence)
		if educationKeywords.MatchString(sentence) && len(h.EducationEntries) < maxHighlights {
			h.EducationEntries = append(h.EducationEntries, sentence)
		}
		if experienceKeywords.MatchString(sentence) && len(h.ExperienceStatements) < maxHighlights {
			h.ExperienceStatements = append(h.ExperienceStatements, sentence)
		}
	}
	return h
}

// findJobTitles returns the job-title keywords present in text, ordered by
// first occurrence.
func findJobTitles(text string) []string {
	type hit struct {
		word string
		at   int
	}
	var hits []hit
	for _, word := range jobTitleKeywords {
		if loc := jobTitlePatterns[word].FindStringIndex(text); loc != nil {
			hits = append(hits, hit{word: word, at: loc[0]})
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int { return a.at - b.at })

	titles := make([]string, 0, len(hits))
	for _, h := range hits {
		titles = append(titles, h.word)
	}
	return titles
}
