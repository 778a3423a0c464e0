package storage

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"testing"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGetter struct {
	failures int
	err      error
	body     string
	calls    int
	gotKey   string
}

func (f *fakeGetter) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls++
	f.gotKey = *in.Key
	if f.calls <= f.failures {
		return nil, f.err
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name      string
		getter    *fakeGetter
		wantBody  string
		wantCalls int
		wantCode  string
	}{
		{
			name:      "first attempt succeeds",
			getter:    &fakeGetter{body: "resume"},
			wantBody:  "resume",
			wantCalls: 1,
		},
		{
			name:      "transient failures are retried",
			getter:    &fakeGetter{failures: 2, err: stderrors.New("connection reset"), body: "resume"},
			wantBody:  "resume",
			wantCalls: 3,
		},
		{
			name:      "gives up after three attempts",
			getter:    &fakeGetter{failures: 5, err: stderrors.New("connection reset")},
			wantCalls: 3,
			wantCode:  errors.ErrCodeStorageFailed,
		},
		{
			name:      "missing object is not retried",
			getter:    &fakeGetter{failures: 5, err: &s3types.NoSuchKey{}},
			wantCalls: 1,
			wantCode:  errors.ErrCodeFileNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewWithClient(tt.getter, 3, time.Millisecond, nil)

			data, err := store.Fetch(context.Background(), "resumes", "2024/cv.pdf")

			assert.Equal(t, tt.wantCalls, tt.getter.calls)
			assert.Equal(t, "2024/cv.pdf", tt.getter.gotKey)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBody, string(data))
		})
	}
}

func TestFetchStopsOnCancel(t *testing.T) {
	getter := &fakeGetter{failures: 5, err: stderrors.New("timeout")}
	store := NewWithClient(getter, 3, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Fetch(ctx, "b", "k")
	require.Error(t, err)
	assert.Equal(t, 1, getter.calls)
	assert.True(t, errors.HasCode(err, errors.ErrCodeStorageFailed))
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri        string
		wantBucket string
		wantKey    string
		wantErr    bool
	}{
		{uri: "s3://resumes/cv.pdf", wantBucket: "resumes", wantKey: "cv.pdf"},
		{uri: "s3://resumes/2024/06/cv.docx", wantBucket: "resumes", wantKey: "2024/06/cv.docx"},
		{uri: "s3://resumes/", wantErr: true},
		{uri: "s3://", wantErr: true},
		{uri: "https://resumes/cv.pdf", wantErr: true},
		{uri: "cv.pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, key, err := ParseS3URI(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantBucket, bucket)
			assert.Equal(t, tt.wantKey, key)
		})
	}
}

func TestIsS3URI(t *testing.T) {
	assert.True(t, IsS3URI("s3://b/k"))
	assert.False(t, IsS3URI("/tmp/cv.pdf"))
}

func TestNew(t *testing.T) {
	store, err := New(context.Background(), config.StorageConfig{
		Endpoint:     "http://localhost:9000",
		Region:       "us-east-1",
		AccessKey:    "minio",
		SecretKey:    "minio123",
		UsePathStyle: true,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, store.attempts)
}
