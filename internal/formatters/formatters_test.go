package formatters

import (
	"encoding/json"
	"testing"

	"resumelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		Contact: types.ContactInfo{Email: "jane@example.com", Phone: "(555) 123-4567"},
		Structure: types.SectionSet{
			Sections:     []types.Section{types.SectionSummary, types.SectionExperience},
			OrderScore:   100,
			FormatIssues: []string{"Resume is too short (120 words)"},
			WordCount:    120,
		},
		Skills: types.SkillMatches{Technical: []string{"Python", "Go"}, SoftSkills: []string{"leadership"}},
		Experience: types.ExperienceProfile{
			DateRanges:   []types.DateRange{{Start: "2019-01-01", End: "2021-03-31", Source: "Jan 2019 - Mar 2021"}},
			Gaps:         []types.Gap{{Start: "2021-04-01", End: "2022-04-01", Days: 366, Months: 12}},
			Achievements: []string{"Increased revenue by 20%"},
		},
		Grammar:         []types.GrammarIssue{{Message: "Possible typo", Context: "teh team", Replacements: []string{"the"}}},
		SubScores:       types.SubScores{Contact: 50, Structure: 60, Skills: 15, Experience: 40, Grammar: 95},
		Score:           47,
		Recommendations: []string{"Add a LinkedIn profile URL"},
		Warnings:        []string{"grammar check unavailable"},
	}
}

func TestRegistry_Format(t *testing.T) {
	registry := NewFormatterRegistry()
	result := sampleResult()

	tests := []struct {
		name     string
		format   string
		data     any
		contains []string
	}{
		{"text", "text", result, []string{"Score: 47/100", "Email: jane@example.com", "Technical: Python, Go", "Gap: 2021-04-01 to 2022-04-01, 366 days (12 months)", "1. Add a LinkedIn profile URL", "=== WARNINGS ==="}},
		{"text from value", "text", *result, []string{"Score: 47/100"}},
		{"markdown", "markdown", result, []string{"# Resume Analysis", "**Score:** 47/100", "| Grammar | 95 |", "- **Technical:** Python, Go", "### Employment gaps", "- Possible typo: `teh team`"}},
		{"json", "json", result, []string{`"score": 47`, `"soft_skills": [`}},
		{"json for other data", "json", map[string]int{"n": 1}, []string{`"n": 1`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := registry.Format(tt.data, tt.format)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestRegistry_JSONRoundTripsResult(t *testing.T) {
	out, err := NewFormatterRegistry().Format(sampleResult(), "json")
	require.NoError(t, err)

	var decoded types.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, *sampleResult(), decoded)
}

func TestRegistry_Errors(t *testing.T) {
	registry := NewFormatterRegistry()

	_, err := registry.Format(sampleResult(), "xml")
	assert.EqualError(t, err, "no formatter found for format 'xml' and type 'AnalysisResult'")

	_, err = registry.Format("plain", "text")
	assert.Error(t, err)

	var nilResult *types.AnalysisResult
	_, err = (&AnalysisTextFormatter{}).Format(nilResult)
	assert.Error(t, err)
}

func TestRegistry_SupportedFormats(t *testing.T) {
	assert.Equal(t, []string{"json", "markdown", "text"}, NewFormatterRegistry().GetSupportedFormats())
}

func TestTextFormatter_EmptyResult(t *testing.T) {
	out, err := (&AnalysisTextFormatter{}).Format(&types.AnalysisResult{})
	require.NoError(t, err)
	assert.Contains(t, out, "Sections: none detected")
	assert.Contains(t, out, "No issues found")
	assert.NotContains(t, out, "WARNINGS")
}
