package analysis

import (
	"fmt"
	"math"
	"strings"

	"resumelens/internal/types"
)

// Sub-score weights of the composite score. They sum to 1.
const (
	weightContact    = 0.15
	weightStructure  = 0.20
	weightSkills     = 0.25
	weightExperience = 0.30
	weightGrammar    = 0.10
)

const (
	orderScoreTarget     = 80
	minTechnicalSkills   = 5
	pointsPerContact     = 20
	penaltyPerIssue      = 5
	pointsPerSkill       = 4
	pointsPerOrg         = 5
	pointsPerAchievement = 10
	penaltyPerGrammar    = 2
)

// Facets are the extractor outputs the aggregator combines.
type Facets struct {
	Contact    types.ContactInfo
	Structure  types.SectionSet
	Skills     types.SkillMatches
	Experience types.ExperienceProfile
	Grammar    []types.GrammarIssue
	Highlights types.Highlights
	Warnings   []string
}

// Aggregate scores the facets and assembles the final result.
func Aggregate(f Facets, settings Settings) *types.AnalysisResult {
	sub := ComputeSubScores(f)
	grammar := f.Grammar
	if grammar == nil {
		grammar = []types.GrammarIssue{}
	}
	return &types.AnalysisResult{
		Contact:         f.Contact,
		Structure:       f.Structure,
		Skills:          f.Skills,
		Experience:      f.Experience,
		Grammar:         grammar,
		Highlights:      f.Highlights,
		SubScores:       sub,
		Score:           Score(sub),
		Recommendations: Recommend(f, settings),
		Warnings:        f.Warnings,
	}
}

// ComputeSubScores normalizes each facet to [0,100].
func ComputeSubScores(f Facets) types.SubScores {
	return types.SubScores{
		Contact:    clamp(f.Contact.Count()*pointsPerContact, 0, 100),
		Structure:  clamp(100-len(f.Structure.FormatIssues)*penaltyPerIssue, 0, 100),
		Skills:     clamp(f.Skills.Total()*pointsPerSkill, 0, 100),
		Experience: clamp(experiencePoints(f.Experience), 0, 100),
		Grammar:    clamp(100-len(f.Grammar)*penaltyPerGrammar, 0, 100),
	}
}

func experiencePoints(e types.ExperienceProfile) int {
	return len(e.Organizations)*pointsPerOrg + len(e.Achievements)*pointsPerAchievement + e.VerbVarietyScore
}

// Score returns the weighted composite of s, rounded and clamped to [0,100].
func Score(s types.SubScores) int {
	total := weightContact*float64(s.Contact) +
		weightStructure*float64(s.Structure) +
		weightSkills*float64(s.Skills) +
		weightExperience*float64(s.Experience) +
		weightGrammar*float64(s.Grammar)
	return clamp(int(math.Round(total)), 0, 100)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Recommend evaluates every rule and returns the applicable suggestions
// in priority order: contact, structure, skills, experience, gaps, grammar.
func Recommend(f Facets, settings Settings) []string {
	recs := []string{}

	var missing []string
	if f.Contact.Email == "" {
		missing = append(missing, "email")
	}
	if f.Contact.Phone == "" {
		missing = append(missing, "phone")
	}
	if len(missing) > 0 {
		recs = append(recs, fmt.Sprintf("Add missing contact information: %s.", strings.Join(missing, ", ")))
	}

	if f.Structure.OrderScore < orderScoreTarget {
		if len(f.Structure.Sections) == 0 {
			recs = append(recs, "Add clear section headers such as Summary, Experience, Education and Skills.")
		} else {
			recs = append(recs, "Reorder sections to follow the conventional order: summary, experience, education, skills, projects, certifications, references.")
		}
	}

	if n := len(f.Skills.Technical); n < minTechnicalSkills {
		recs = append(recs, fmt.Sprintf("Add more technical skills: only %d found, aim for at least %d.", n, minTechnicalSkills))
	}

	if len(f.Experience.Achievements) == 0 {
		recs = append(recs, "Quantify your achievements with concrete figures such as percentages or revenue impact.")
	}

	if n := len(f.Experience.Gaps); n > 0 {
		recs = append(recs, fmt.Sprintf("Explain %d employment gap(s) longer than %d days.", n, settings.GapThresholdDays))
	}

	if n := len(f.Grammar); n > 0 {
		recs = append(recs, fmt.Sprintf("Fix %d grammar or spelling issue(s).", n))
	}
	return recs
}
