package analysis

import (
	"testing"
	"time"

	"resumelens/internal/nlp"
	"resumelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDateRanges(t *testing.T) {
	c := newTestContext(t, nil)

	tests := []struct {
		name string
		text string
		want []types.DateRange
	}{
		{
			name: "closed range",
			text: "Acme, Jan 2020 - Mar 2021",
			want: []types.DateRange{{Start: "2020-01-01", End: "2021-03-31", Source: "Jan 2020 - Mar 2021"}},
		},
		{
			name: "present resolves to analysis date",
			text: "Globex, April 2022 to Present",
			want: []types.DateRange{{Start: "2022-04-01", End: "2024-06-15", Source: "April 2022 to Present", Current: true}},
		},
		{
			name: "en dash and abbreviation dot",
			text: "Feb. 2019 – Dec. 2019",
			want: []types.DateRange{{Start: "2019-02-01", End: "2019-12-31", Source: "Feb. 2019 – Dec. 2019"}},
		},
		{
			name: "start after end is dropped",
			text: "Mar 2021 - Jan 2020",
			want: []types.DateRange{},
		},
		{
			name: "unparsable bound is dropped",
			text: "Sept 2019 - Jan 2020",
			want: []types.DateRange{},
		},
		{
			name: "no ranges",
			text: "Worked at several places",
			want: []types.DateRange{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := extractDateRanges(c, tt.text)
			assert.Equal(t, tt.want, got)
		})
	}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFindGaps(t *testing.T) {
	first := span{start: day(2020, 1, 1), end: day(2021, 3, 31)}
	second := span{start: day(2022, 4, 1), end: day(2024, 6, 15)}

	want := []types.Gap{{Start: "Apr 2021", End: "Apr 2022", Days: 366, Months: 12}}

	assert.Equal(t, want, findGaps([]span{first, second}, 60))
	assert.Equal(t, want, findGaps([]span{second, first}, 60), "gaps must not depend on textual order")
}

func TestFindGapsMergesOverlaps(t *testing.T) {
	spans := []span{
		{start: day(2018, 1, 1), end: day(2019, 12, 31)},
		{start: day(2019, 6, 1), end: day(2020, 5, 31)},
		{start: day(2020, 6, 1), end: day(2020, 12, 31)},
		{start: day(2021, 2, 1), end: day(2021, 8, 31)},
	}

	assert.Empty(t, findGaps(spans, 60), "contiguous and overlapping ranges leave no gap; a 32 day break is under threshold")
	assert.Len(t, findGaps(spans, 30), 1)
}

func TestFindGapsThresholdIsExclusive(t *testing.T) {
	spans := []span{
		{start: day(2020, 1, 1), end: day(2020, 1, 31)},
		{start: day(2020, 3, 31), end: day(2020, 5, 31)},
	}

	assert.Empty(t, findGaps(spans, 60))
	assert.Len(t, findGaps(spans, 59), 1)
}

func TestFindGapsFewerThanTwoRanges(t *testing.T) {
	assert.Equal(t, []types.Gap{}, findGaps(nil, 60))
	assert.Equal(t, []types.Gap{}, findGaps([]span{{start: day(2020, 1, 1), end: day(2020, 2, 1)}}, 60))
}

func TestFindAchievements(t *testing.T) {
	text := "Increased revenue by 25% in one year.\n" +
		"Reduced costs by $1.2M through automation.\n" +
		"Improved build speed 3x.\n" +
		"increased REVENUE by 25% in one year.\n" +
		"Improved morale across the team."

	assert.Equal(t, []string{
		"Increased revenue by 25%",
		"Reduced costs by $1.2M",
		"Improved build speed 3x",
	}, findAchievements(text))
}

func TestFindActionVerbs(t *testing.T) {
	doc := &nlp.Document{Lines: [][]nlp.Token{
		{{Text: "Led", Tag: "VBD"}, {Text: "a", Tag: "DT"}, {Text: "team", Tag: "NN"}},
		{{Text: "Build", Tag: "NN"}, {Text: "pipelines", Tag: "NNS"}},
		{{Text: "The", Tag: "DT"}, {Text: "team", Tag: "NN"}, {Text: "managed", Tag: "VBD"}, {Text: "releases", Tag: "NNS"}},
		{{Text: "Slept", Tag: "VBD"}},
		{{Text: "led", Tag: "VBD"}},
		{{Text: "design", Tag: "NN"}, {Text: "reviews", Tag: "NNS"}},
	}}

	got := findActionVerbs(doc, testLemmas)

	assert.Equal(t, []string{"lead", "build", "manage", "design"}, got)
}

func TestAnalyzeExperience(t *testing.T) {
	c := newTestContext(t, func(c *Context) {
		c.Pipeline = fakePipeline{orgs: []string{"Acme Corp", "Globex"}}
	})
	text := "Acme Corp, Jan 2020 - Mar 2021\n" +
		"Developed billing services and increased throughput by 40%\n" +
		"Globex, Apr 2022 - Present\n" +
		"Led the platform team at ACME CORP"

	doc, err := c.Pipeline.Process(text)
	require.NoError(t, err)
	profile := AnalyzeExperience(c, text, doc)

	assert.Len(t, profile.DateRanges, 2)
	assert.Equal(t, []types.Gap{{Start: "Apr 2021", End: "Apr 2022", Days: 366, Months: 12}}, profile.Gaps)
	assert.Equal(t, []string{"Acme Corp", "Globex"}, profile.Organizations)
	assert.Equal(t, []string{"develop", "increase", "lead"}, profile.ActionVerbs)
	assert.Equal(t, 30, profile.VerbVarietyScore)
	assert.Equal(t, []string{"increased throughput by 40%"}, profile.Achievements)
}

func TestAnalyzeExperienceWithoutDocument(t *testing.T) {
	c := newTestContext(t, nil)

	profile := AnalyzeExperience(c, "Nothing notable here", nil)

	assert.Equal(t, []types.DateRange{}, profile.DateRanges)
	assert.Equal(t, []types.Gap{}, profile.Gaps)
	assert.Equal(t, []string{}, profile.Organizations)
	assert.Equal(t, []string{}, profile.ActionVerbs)
	assert.Equal(t, []string{}, profile.Achievements)
	assert.Equal(t, 0, profile.VerbVarietyScore)
}

func TestVerbVarietyScoreCaps(t *testing.T) {
	var line []nlp.Token
	for _, verb := range []string{"lead", "manage", "develop", "create", "implement", "design", "build", "launch", "improve", "increase", "reduce", "achieve"} {
		line = append(line, nlp.Token{Text: verb, Tag: "VB"})
	}
	c := newTestContext(t, nil)

	profile := AnalyzeExperience(c, "", &nlp.Document{Lines: [][]nlp.Token{line}})

	assert.Len(t, profile.ActionVerbs, 12)
	assert.Equal(t, 100, profile.VerbVarietyScore)
}
