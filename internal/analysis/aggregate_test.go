package analysis

import (
	"testing"

	"resumelens/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestScoreBounds(t *testing.T) {
	tests := []struct {
		name string
		sub  types.SubScores
		want int
	}{
		{"all zero", types.SubScores{}, 0},
		{"all maxed", types.SubScores{Contact: 100, Structure: 100, Skills: 100, Experience: 100, Grammar: 100}, 100},
		{"out of range high", types.SubScores{Contact: 1000, Structure: 1000, Skills: 1000, Experience: 1000, Grammar: 1000}, 100},
		{"out of range low", types.SubScores{Contact: -50, Structure: -50}, 0},
		{"weighted", types.SubScores{Contact: 40, Structure: 75, Skills: 12, Experience: 30, Grammar: 100}, 43},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.sub)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestComputeSubScores(t *testing.T) {
	f := Facets{
		Contact:   types.ContactInfo{Email: "a@b.co", Phone: "555-123-4567"},
		Structure: types.SectionSet{FormatIssues: []string{IssueTooShort, IssueMissingSkills}},
		Skills:    types.SkillMatches{Technical: []string{"Go", "Python", "AWS"}},
		Experience: types.ExperienceProfile{
			Organizations:    []string{"Acme"},
			Achievements:     []string{"Increased revenue by 25%"},
			VerbVarietyScore: 30,
		},
		Grammar: make([]types.GrammarIssue, 60),
	}

	assert.Equal(t, types.SubScores{
		Contact:    40,
		Structure:  90,
		Skills:     12,
		Experience: 45,
		Grammar:    0,
	}, ComputeSubScores(f))
}

func TestRecommendPriorityOrder(t *testing.T) {
	f := Facets{
		Contact:    types.ContactInfo{Website: "https://example.com"},
		Structure:  types.SectionSet{Sections: []types.Section{types.SectionSkills, types.SectionExperience}, OrderScore: 0},
		Skills:     types.SkillMatches{Technical: []string{"Go"}},
		Experience: types.ExperienceProfile{Gaps: []types.Gap{{}, {}}},
		Grammar:    []types.GrammarIssue{{Message: "typo"}},
	}

	assert.Equal(t, []string{
		"Add missing contact information: email, phone.",
		"Reorder sections to follow the conventional order: summary, experience, education, skills, projects, certifications, references.",
		"Add more technical skills: only 1 found, aim for at least 5.",
		"Quantify your achievements with concrete figures such as percentages or revenue impact.",
		"Explain 2 employment gap(s) longer than 60 days.",
		"Fix 1 grammar or spelling issue(s).",
	}, Recommend(f, DefaultSettings()))
}

func TestRecommendNothingToImprove(t *testing.T) {
	f := Facets{
		Contact:    types.ContactInfo{Email: "a@b.co", Phone: "555-123-4567"},
		Structure:  types.SectionSet{Sections: []types.Section{types.SectionExperience, types.SectionSkills}, OrderScore: 100},
		Skills:     types.SkillMatches{Technical: []string{"Go", "Python", "AWS", "Docker", "SQL"}},
		Experience: types.ExperienceProfile{Achievements: []string{"Cut latency by 50%"}},
	}

	assert.Empty(t, Recommend(f, DefaultSettings()))
}

func TestRecommendMissingOnlyPhone(t *testing.T) {
	f := Facets{Contact: types.ContactInfo{Email: "a@b.co"}}

	recs := Recommend(f, DefaultSettings())

	assert.Equal(t, "Add missing contact information: phone.", recs[0])
	assert.Contains(t, recs, "Add clear section headers such as Summary, Experience, Education and Skills.")
}

func TestAggregateNeverReturnsNilGrammar(t *testing.T) {
	result := Aggregate(Facets{}, DefaultSettings())

	assert.NotNil(t, result.Grammar)
	assert.Empty(t, result.Warnings)
}
