// Package queue runs resume analysis jobs delivered over AMQP.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"resumelens/internal/errors"
	"resumelens/internal/extract"
	"resumelens/internal/schemas"
	"resumelens/internal/types"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Job statuses published on the result exchange
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Job is one analysis request read from the request queue
type Job struct {
	JobID    string `json:"jobId" validate:"required,max=128,printascii"`
	Bucket   string `json:"bucket" validate:"required"`
	Key      string `json:"key" validate:"required"`
	Filename string `json:"filename,omitempty"`
	Format   string `json:"format,omitempty" validate:"omitempty,oneof=pdf docx doc txt PDF DOCX DOC TXT"`
}

// JobError describes why a job failed
type JobError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ResultMessage is published once per job
type ResultMessage struct {
	JobID       string                `json:"jobId"`
	Status      string                `json:"status"`
	CompletedAt time.Time             `json:"completedAt"`
	Result      *types.AnalysisResult `json:"result,omitempty"`
	Error       *JobError             `json:"error,omitempty"`
}

// Outcome is a validated, serialized result ready to publish
type Outcome struct {
	JobID      string
	RoutingKey string
	Body       []byte
	Failed     bool
}

// Fetcher downloads a stored document
type Fetcher interface {
	Fetch(ctx context.Context, bucket, key string) ([]byte, error)
}

// DocumentAnalyzer runs the analysis pipeline
type DocumentAnalyzer interface {
	AnalyzeDocument(ctx context.Context, doc types.Document) (*types.AnalysisResult, error)
}

// Processor turns job messages into result messages
type Processor struct {
	fetcher  Fetcher
	analyzer DocumentAnalyzer
	validate *validator.Validate
	logger   *errors.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// ProcessorOption configures a Processor
type ProcessorOption func(*Processor)

// WithTracer sets the tracer used for job spans
func WithTracer(t trace.Tracer) ProcessorOption {
	return func(p *Processor) { p.tracer = t }
}

// WithClock overrides the completion timestamp source
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) { p.now = now }
}

// NewProcessor creates a Processor
func NewProcessor(fetcher Fetcher, analyzer DocumentAnalyzer, logger *errors.Logger, opts ...ProcessorOption) *Processor {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	p := &Processor{
		fetcher:  fetcher,
		analyzer: analyzer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		tracer:   noop.NewTracerProvider().Tracer("resumelens.queue"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DecodeJob parses and validates a job message
func (p *Processor) DecodeJob(body []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return Job{}, errors.NewValidationError(errors.ErrCodeInvalidRequest, "job message is not valid JSON", err)
	}
	if err := p.validate.Struct(job); err != nil {
		return Job{}, errors.NewValidationError(errors.ErrCodeValidationFailed, "job message failed validation", err).
			WithContext("job_id", job.JobID)
	}
	return job, nil
}

// Process runs one job message. An error means the message itself is
// unusable; analysis failures are reported in a failed Outcome instead.
func (p *Processor) Process(ctx context.Context, body []byte) (Outcome, error) {
	job, err := p.DecodeJob(body)
	if err != nil {
		return Outcome{}, err
	}

	ctx, span := p.tracer.Start(ctx, "queue.job")
	defer span.End()
	span.SetAttributes(
		attribute.String("job.id", job.JobID),
		attribute.String("job.bucket", job.Bucket),
	)

	msg := ResultMessage{JobID: job.JobID}
	result, err := p.run(ctx, job)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.LogError(err, "Analysis job failed", "job_id", job.JobID, "key", job.Key)
		msg.Status = StatusFailed
		msg.Error = toJobError(err)
	} else {
		msg.Status = StatusCompleted
		msg.Result = result
		span.SetAttributes(attribute.Int("analysis.score", result.Score))
	}
	msg.CompletedAt = p.now().UTC()

	payload, err := json.Marshal(msg)
	if err != nil {
		return Outcome{}, errors.NewInternalError(errors.ErrCodeInternal, "failed to encode result message", err)
	}
	if err := schemas.ValidateResultMessage(payload); err != nil {
		return Outcome{}, errors.NewInternalError(errors.ErrCodeValidationFailed, "result message violates its schema", err).
			WithContext("job_id", job.JobID)
	}

	return Outcome{
		JobID:      job.JobID,
		RoutingKey: RoutingKey(job.JobID),
		Body:       payload,
		Failed:     msg.Status == StatusFailed,
	}, nil
}

func (p *Processor) run(ctx context.Context, job Job) (*types.AnalysisResult, error) {
	format, err := jobFormat(job)
	if err != nil {
		return nil, err
	}

	data, err := p.fetcher.Fetch(ctx, job.Bucket, job.Key)
	if err != nil {
		return nil, err
	}

	name := job.Filename
	if name == "" {
		name = path.Base(job.Key)
	}
	return p.analyzer.AnalyzeDocument(ctx, types.Document{Name: name, Format: format, Data: data})
}

// jobFormat prefers the declared format, then the filename, then the key
func jobFormat(job Job) (types.Format, error) {
	if job.Format != "" {
		return extract.ParseFormat(job.Format)
	}
	if job.Filename != "" {
		return extract.FormatFromFilename(job.Filename)
	}
	return extract.FormatFromFilename(job.Key)
}

func toJobError(err error) *JobError {
	if appErr, ok := errors.AsAppError(err); ok {
		return &JobError{Code: appErr.Code, Message: appErr.Message}
	}
	return &JobError{Code: errors.ErrCodeInternal, Message: err.Error()}
}

// RoutingKey is the result routing key for a job
func RoutingKey(jobID string) string {
	return fmt.Sprintf("analysis.%s", jobID)
}
