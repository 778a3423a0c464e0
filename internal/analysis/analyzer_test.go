package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"resumelens/internal/errors"
	"resumelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const workedExample = "John Smith\n" +
	"john@example.com | (555) 123-4567\n" +
	"Software Engineer, Jan 2020 - Mar 2021\n" +
	"Senior Engineer, Apr 2022 - Present\n" +
	"Python, AWS, Docker"

type recordedAnalysis struct {
	format string
	err    error
}

type fakeRecorder struct {
	mu       sync.Mutex
	analyses []recordedAnalysis
	degraded []string
}

func (r *fakeRecorder) RecordAnalysis(_ context.Context, format string, _ time.Duration, _ *types.AnalysisResult, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses = append(r.analyses, recordedAnalysis{format: format, err: err})
}

func (r *fakeRecorder) RecordDegraded(_ context.Context, extractor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.degraded = append(r.degraded, extractor)
}

type fakeExtractor struct {
	text string
	err  error
}

func (f fakeExtractor) Extract(context.Context, types.Document) (string, error) {
	return f.text, f.err
}

func newTestAnalyzer(t *testing.T, mutate func(*Context), opts ...Option) *Analyzer {
	t.Helper()
	c := newTestContext(t, mutate)
	return NewAnalyzer(StaticLoader(c), nil, errors.NewDiscardLogger(), opts...)
}

func TestAnalyzeWorkedExample(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(c *Context) {
		skills, err := NewSkillIndex(DefaultVocabulary(), DisplayTitle)
		require.NoError(t, err)
		c.Skills = skills
	})

	result, err := analyzer.Analyze(context.Background(), workedExample)
	require.NoError(t, err)

	assert.Equal(t, "john@example.com", result.Contact.Email)
	assert.Equal(t, "(555) 123-4567", result.Contact.Phone)
	assert.Equal(t, []types.Gap{{Start: "Apr 2021", End: "Apr 2022", Days: 366, Months: 12}}, result.Experience.Gaps)
	assert.Subset(t, result.Skills.Technical, []string{"Python", "Aws", "Docker"})
	assert.Greater(t, result.Score, 0)
	assert.Contains(t, result.Highlights.JobTitles, "engineer")
	assert.Empty(t, result.Warnings)
}

func TestAnalyzeShortDocumentWithoutSections(t *testing.T) {
	analyzer := newTestAnalyzer(t, nil)
	text := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", 10))

	result, err := analyzer.Analyze(context.Background(), text)
	require.NoError(t, err)

	assert.Contains(t, result.Structure.FormatIssues, IssueTooShort)
	assert.Contains(t, result.Structure.FormatIssues, IssueNoSections)
	assert.Equal(t, 0, result.Structure.OrderScore)
	assert.Contains(t, result.Recommendations, "Add more technical skills: only 0 found, aim for at least 5.")
}

func TestAnalyzeEmptyText(t *testing.T) {
	analyzer := newTestAnalyzer(t, nil)

	for _, text := range []string{"", "   ", "\n\t\n"} {
		result, err := analyzer.Analyze(context.Background(), text)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.True(t, errors.HasCode(err, errors.ErrCodeEmptyDocument))
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	analyzer := newTestAnalyzer(t, func(c *Context) {
		c.Pipeline = fakePipeline{orgs: []string{"Acme"}}
		c.Grammar = fakeGrammar{issues: []types.GrammarIssue{{Message: "Possible typo", Context: "Pyhton", Replacements: []string{"Python"}}}}
	})
	text := workedExample + "\nAcme\nIncreased sales by 20%"

	first, err := analyzer.Analyze(context.Background(), text)
	require.NoError(t, err)
	second, err := analyzer.Analyze(context.Background(), text)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestAnalyzeDegradesFailingExtractors(t *testing.T) {
	recorder := &fakeRecorder{}
	analyzer := newTestAnalyzer(t, func(c *Context) {
		c.Pipeline = fakePipeline{err: fmt.Errorf("model unavailable")}
		c.Grammar = fakeGrammar{err: errors.NewServiceError(errors.ErrCodeServiceUnavailable, "grammar service down", nil)}
	}, WithRecorder(recorder))

	result, err := analyzer.Analyze(context.Background(), workedExample)
	require.NoError(t, err)

	assert.Equal(t, []string{WarningNLP, WarningGrammar}, result.Warnings)
	assert.Equal(t, []types.GrammarIssue{}, result.Grammar)
	assert.Empty(t, result.Experience.Organizations)
	assert.Empty(t, result.Highlights.EducationEntries)
	assert.Equal(t, "john@example.com", result.Contact.Email, "other facets are unaffected")
	assert.Len(t, result.Experience.Gaps, 1)
	assert.Equal(t, []string{WarningNLP, WarningGrammar}, recorder.degraded)
}

func TestAnalyzeContextUnavailable(t *testing.T) {
	loader := NewLoader(func() (*Context, error) { return nil, fmt.Errorf("dictionary missing") })
	analyzer := NewAnalyzer(loader, nil, errors.NewDiscardLogger())

	_, err := analyzer.Analyze(context.Background(), workedExample)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeServiceUnavailable))
}

func TestLoaderBuildsOnce(t *testing.T) {
	calls := 0
	c := newTestContext(t, nil)
	loader := NewLoader(func() (*Context, error) {
		calls++
		return c, nil
	})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := loader.Get()
			assert.NoError(t, err)
			assert.Same(t, c, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
}

func TestAnalyzeDocument(t *testing.T) {
	c := newTestContext(t, nil)

	t.Run("extraction failure aborts", func(t *testing.T) {
		recorder := &fakeRecorder{}
		extractErr := errors.NewExtractionError(errors.ErrCodeExtractionFailed, "Could not extract text from file", nil)
		analyzer := NewAnalyzer(StaticLoader(c), fakeExtractor{err: extractErr}, errors.NewDiscardLogger(), WithRecorder(recorder))

		result, err := analyzer.AnalyzeDocument(context.Background(), types.Document{Name: "cv.pdf", Format: types.FormatPDF})
		require.Error(t, err)
		assert.Nil(t, result)
		require.Len(t, recorder.analyses, 1)
		assert.Equal(t, "pdf", recorder.analyses[0].format)
		assert.Error(t, recorder.analyses[0].err)
	})

	t.Run("extracted text is analyzed", func(t *testing.T) {
		analyzer := NewAnalyzer(StaticLoader(c), fakeExtractor{text: workedExample}, errors.NewDiscardLogger())

		result, err := analyzer.AnalyzeDocument(context.Background(), types.Document{Name: "cv.docx", Format: types.FormatDOCX})
		require.NoError(t, err)
		assert.Equal(t, "john@example.com", result.Contact.Email)
	})

	t.Run("no extractor configured", func(t *testing.T) {
		analyzer := NewAnalyzer(StaticLoader(c), nil, errors.NewDiscardLogger())

		_, err := analyzer.AnalyzeDocument(context.Background(), types.Document{Format: types.FormatTXT})
		assert.Error(t, err)
	})
}

func TestNewContextRequiresHandles(t *testing.T) {
	_, err := NewContext(Context{})
	assert.Error(t, err)

	c := newTestContext(t, nil)
	assert.Equal(t, DefaultSettings(), c.Settings)
	assert.Equal(t, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), c.AnalysisDate())
}
