package queue

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"resumelens/internal/errors"
	"resumelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	data   []byte
	err    error
	bucket string
	key    string
	calls  int
}

func (f *fakeFetcher) Fetch(_ context.Context, bucket, key string) ([]byte, error) {
	f.calls++
	f.bucket, f.key = bucket, key
	return f.data, f.err
}

type fakeAnalyzer struct {
	result *types.AnalysisResult
	err    error
	got    types.Document
	calls  int
}

func (f *fakeAnalyzer) AnalyzeDocument(_ context.Context, doc types.Document) (*types.AnalysisResult, error) {
	f.calls++
	f.got = doc
	return f.result, f.err
}

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		Contact:   types.ContactInfo{Email: "jane@example.com"},
		Structure: types.SectionSet{Sections: []types.Section{types.SectionExperience}, OrderScore: 100, WordCount: 320},
		Skills:    types.SkillMatches{Technical: []string{"Go"}},
		SubScores: types.SubScores{Contact: 25, Structure: 60, Skills: 10, Experience: 40, Grammar: 100},
		Score:     47,
	}
}

func newTestProcessor(fetcher *fakeFetcher, analyzer *fakeAnalyzer) *Processor {
	return NewProcessor(fetcher, analyzer, errors.NewDiscardLogger(), WithClock(func() time.Time { return fixedNow }))
}

func decodeMessage(t *testing.T, body []byte) ResultMessage {
	t.Helper()
	var msg ResultMessage
	require.NoError(t, json.Unmarshal(body, &msg))
	return msg
}

func TestProcessor_ProcessCompleted(t *testing.T) {
	fetcher := &fakeFetcher{data: []byte("%PDF-1.4")}
	analyzer := &fakeAnalyzer{result: sampleResult()}
	p := newTestProcessor(fetcher, analyzer)

	outcome, err := p.Process(context.Background(),
		[]byte(`{"jobId":"job-1","bucket":"resumes","key":"uploads/jane.pdf"}`))
	require.NoError(t, err)

	assert.Equal(t, "job-1", outcome.JobID)
	assert.Equal(t, "analysis.job-1", outcome.RoutingKey)
	assert.False(t, outcome.Failed)
	assert.Equal(t, "resumes", fetcher.bucket)
	assert.Equal(t, "uploads/jane.pdf", fetcher.key)
	assert.Equal(t, types.FormatPDF, analyzer.got.Format)
	assert.Equal(t, "jane.pdf", analyzer.got.Name)

	msg := decodeMessage(t, outcome.Body)
	assert.Equal(t, StatusCompleted, msg.Status)
	assert.True(t, fixedNow.Equal(msg.CompletedAt))
	require.NotNil(t, msg.Result)
	assert.Equal(t, 47, msg.Result.Score)
	assert.Nil(t, msg.Error)
}

func TestProcessor_ProcessFailures(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		fetchErr     error
		analyzeErr   error
		wantCode     string
		wantAnalyzed bool
	}{
		{
			name:         "extraction failure",
			body:         `{"jobId":"job-2","bucket":"b","key":"cv.docx"}`,
			analyzeErr:   errors.NewExtractionError(errors.ErrCodeExtractionFailed, "could not read document", nil),
			wantCode:     errors.ErrCodeExtractionFailed,
			wantAnalyzed: true,
		},
		{
			name:     "missing object",
			body:     `{"jobId":"job-3","bucket":"b","key":"cv.pdf"}`,
			fetchErr: errors.NewIOError(errors.ErrCodeFileNotFound, "object not found", nil),
			wantCode: errors.ErrCodeFileNotFound,
		},
		{
			name:     "unsupported extension",
			body:     `{"jobId":"job-4","bucket":"b","key":"cv.odt"}`,
			wantCode: errors.ErrCodeUnsupportedFormat,
		},
		{
			name:         "plain error",
			body:         `{"jobId":"job-5","bucket":"b","key":"cv.txt"}`,
			analyzeErr:   stderrors.New("boom"),
			wantCode:     errors.ErrCodeInternal,
			wantAnalyzed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{result: sampleResult(), err: tt.analyzeErr}
			if tt.analyzeErr != nil {
				analyzer.result = nil
			}
			p := newTestProcessor(&fakeFetcher{data: []byte("text"), err: tt.fetchErr}, analyzer)

			outcome, err := p.Process(context.Background(), []byte(tt.body))
			require.NoError(t, err)
			assert.True(t, outcome.Failed)
			assert.Equal(t, tt.wantAnalyzed, analyzer.calls == 1)

			msg := decodeMessage(t, outcome.Body)
			assert.Equal(t, StatusFailed, msg.Status)
			assert.Nil(t, msg.Result)
			require.NotNil(t, msg.Error)
			assert.Equal(t, tt.wantCode, msg.Error.Code)
		})
	}
}

func TestProcessor_RejectsMalformedMessages(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"not json", `{"jobId":`, errors.ErrCodeInvalidRequest},
		{"missing job id", `{"bucket":"b","key":"k.pdf"}`, errors.ErrCodeValidationFailed},
		{"missing bucket", `{"jobId":"j","key":"k.pdf"}`, errors.ErrCodeValidationFailed},
		{"unknown format", `{"jobId":"j","bucket":"b","key":"k","format":"odt"}`, errors.ErrCodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{}
			p := newTestProcessor(fetcher, &fakeAnalyzer{})

			_, err := p.Process(context.Background(), []byte(tt.body))
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
			assert.Zero(t, fetcher.calls)
		})
	}
}

func TestJobFormat(t *testing.T) {
	tests := []struct {
		name string
		job  Job
		want types.Format
	}{
		{"declared format wins", Job{Key: "blob", Filename: "cv.pdf", Format: "DOCX"}, types.FormatDOCX},
		{"filename before key", Job{Key: "blob.txt", Filename: "cv.pdf"}, types.FormatPDF},
		{"key extension", Job{Key: "uploads/cv.doc"}, types.FormatDOC},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := jobFormat(tt.job)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
