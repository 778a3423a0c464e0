// Package storage fetches resumes from an S3-compatible document store.
package storage

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	defaultAttempts = 3
	defaultBackoff  = 500 * time.Millisecond
)

// ObjectGetter is the subset of the S3 client the store needs
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Store downloads documents with bounded retries
type Store struct {
	client   ObjectGetter
	attempts int
	backoff  time.Duration
	logger   *errors.Logger
}

// New creates a Store for AWS S3, Cloudflare R2 or MinIO
func New(ctx context.Context, cfg config.StorageConfig, logger *errors.Logger) (*Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to load storage configuration", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return NewWithClient(client, cfg.MaxAttempts, defaultBackoff, logger), nil
}

// NewWithClient creates a Store around an existing client
func NewWithClient(client ObjectGetter, attempts int, backoff time.Duration, logger *errors.Logger) *Store {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	return &Store{client: client, attempts: attempts, backoff: backoff, logger: logger}
}

// Fetch downloads bucket/key. Transient failures are retried with a linear
// backoff; a missing object is reported immediately.
func (s *Store) Fetch(ctx context.Context, bucket, key string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		data, err := s.download(ctx, bucket, key)
		if err == nil {
			return data, nil
		}
		lastErr = err

		var noSuchKey *s3types.NoSuchKey
		if stderrors.As(err, &noSuchKey) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "object not found", err).
				WithContext("bucket", bucket).
				WithContext("key", key)
		}

		s.logger.Warn("Object download failed",
			"bucket", bucket, "key", key, "attempt", attempt, "error", err)
		if attempt == s.attempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, errors.NewNetworkError(errors.ErrCodeStorageFailed, "object download cancelled", ctx.Err())
		case <-time.After(s.backoff * time.Duration(attempt)):
		}
	}

	return nil, errors.NewNetworkError(errors.ErrCodeStorageFailed,
		fmt.Sprintf("failed to download object after %d attempts", s.attempts), lastErr).
		WithContext("bucket", bucket).
		WithContext("key", key)
}

func (s *Store) download(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer func() { _ = out.Body.Close() }()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, out.Body); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return buf.Bytes(), nil
}

// IsS3URI reports whether location uses the s3:// scheme
func IsS3URI(location string) bool {
	return strings.HasPrefix(location, "s3://")
}

// ParseS3URI splits "s3://bucket/path/to/key" into bucket and key
func ParseS3URI(uri string) (bucket, key string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", errors.NewValidationError(errors.ErrCodeInvalidRequest, "invalid S3 URI", err)
	}
	if u.Scheme != "s3" {
		return "", "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unsupported scheme '%s' (expected s3)", u.Scheme), nil)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"S3 URI must name both a bucket and a key", nil).WithContext("uri", uri)
	}
	return bucket, key, nil
}
