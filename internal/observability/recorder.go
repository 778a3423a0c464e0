package observability

import (
	"context"
	"sync/atomic"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Recorder turns pipeline, grammar and certificate events into metrics.
// It keeps process-local counters alongside the OpenTelemetry instruments
// so the stats endpoint works without a metrics backend.
type Recorder struct {
	metrics *Metrics
	toggles config.CustomMetricsConfig

	analyses  atomic.Int64
	failures  atomic.Int64
	degraded  atomic.Int64
	grammar   atomic.Int64
	grammarKO atomic.Int64
	reloads   atomic.Int64
}

// Counters is a snapshot of the process-local counters
type Counters struct {
	Analyses      int64 `json:"analyses"`
	Failures      int64 `json:"failures"`
	Degraded      int64 `json:"degraded"`
	GrammarCalls  int64 `json:"grammar_calls"`
	GrammarErrors int64 `json:"grammar_errors"`
	CertReloads   int64 `json:"cert_reloads"`
}

// NewRecorder creates a Recorder. A nil manager records counters only.
func NewRecorder(om *ObservabilityManager, toggles config.CustomMetricsConfig) *Recorder {
	return &Recorder{metrics: om.GetMetrics(), toggles: toggles}
}

// RecordAnalysis records a finished analysis
func (r *Recorder) RecordAnalysis(ctx context.Context, format string, duration time.Duration, result *types.AnalysisResult, err error) {
	r.analyses.Add(1)
	if err != nil {
		r.failures.Add(1)
	}

	t := r.toggles.Analysis
	if !t.Enabled {
		return
	}

	attrs := []attribute.KeyValue{attribute.Bool("success", err == nil)}
	if t.TrackDocuments && format != "" {
		attrs = append(attrs, attribute.String("format", format))
	}
	opt := metric.WithAttributes(attrs...)

	if r.metrics.AnalysesTotal != nil {
		r.metrics.AnalysesTotal.Add(ctx, 1, opt)
	}
	if t.TrackDuration && r.metrics.AnalysisDuration != nil {
		r.metrics.AnalysisDuration.Record(ctx, duration.Seconds(), opt)
	}
	if t.TrackScores && result != nil && r.metrics.AnalysisScore != nil {
		r.metrics.AnalysisScore.Record(ctx, int64(result.Score))
	}
}

// RecordDegraded records an extractor that fell back to an empty result
func (r *Recorder) RecordDegraded(ctx context.Context, extractor string) {
	r.degraded.Add(1)
	if !r.toggles.Analysis.Enabled || r.metrics.ExtractorDegraded == nil {
		return
	}
	r.metrics.ExtractorDegraded.Add(ctx, 1, metric.WithAttributes(attribute.String("extractor", extractor)))
}

// RecordGrammarRequest records a call to the grammar provider
func (r *Recorder) RecordGrammarRequest(ctx context.Context, provider string, duration time.Duration, err error) {
	r.grammar.Add(1)
	if err != nil {
		r.grammarKO.Add(1)
	}

	t := r.toggles.Grammar
	if !t.Enabled {
		return
	}

	opt := metric.WithAttributes(attribute.String("provider", provider))
	if r.metrics.GrammarRequests != nil {
		r.metrics.GrammarRequests.Add(ctx, 1, opt)
	}
	if err != nil && r.metrics.GrammarErrors != nil {
		r.metrics.GrammarErrors.Add(ctx, 1, opt)
	}
	if t.TrackDuration && r.metrics.GrammarDuration != nil {
		r.metrics.GrammarDuration.Record(ctx, duration.Seconds(), opt)
	}
}

// RecordCertReload records a certificate reload attempt and the new expiry
func (r *Recorder) RecordCertReload(ctx context.Context, success bool, notAfter time.Time) {
	if success {
		r.reloads.Add(1)
	}

	t := r.toggles.Infrastructure
	if !t.Enabled || !t.TrackCertReloads {
		return
	}

	status := statusSuccess
	if !success {
		status = statusError
	}
	if r.metrics.CertReloadCount != nil {
		r.metrics.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	}
	if success && !notAfter.IsZero() && r.metrics.CertExpiryTime != nil {
		r.metrics.CertExpiryTime.Record(ctx, time.Until(notAfter).Seconds())
	}
}

// Snapshot returns the current counter values
func (r *Recorder) Snapshot() Counters {
	return Counters{
		Analyses:      r.analyses.Load(),
		Failures:      r.failures.Load(),
		Degraded:      r.degraded.Load(),
		GrammarCalls:  r.grammar.Load(),
		GrammarErrors: r.grammarKO.Load(),
		CertReloads:   r.reloads.Load(),
	}
}
