package analysis

import (
	"context"
	"strings"
	"time"

	"resumelens/internal/errors"
	"resumelens/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Extractor names reported in AnalysisResult.Warnings.
const (
	WarningNLP     = "nlp"
	WarningGrammar = "grammar"
)

// TextExtractor turns an uploaded document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, doc types.Document) (string, error)
}

// Recorder receives analysis metrics.
type Recorder interface {
	RecordAnalysis(ctx context.Context, format string, duration time.Duration, result *types.AnalysisResult, err error)
	RecordDegraded(ctx context.Context, extractor string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAnalysis(context.Context, string, time.Duration, *types.AnalysisResult, error) {}
func (nopRecorder) RecordDegraded(context.Context, string)                                              {}

// Analyzer runs the analysis pipeline against the shared Context.
type Analyzer struct {
	loader    *Loader
	extractor TextExtractor
	logger    *errors.Logger
	tracer    trace.Tracer
	recorder  Recorder
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTracer sets the tracer used for pipeline spans.
func WithTracer(t trace.Tracer) Option {
	return func(a *Analyzer) { a.tracer = t }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(a *Analyzer) { a.recorder = r }
}

// NewAnalyzer creates an Analyzer. extractor may be nil when only Analyze
// is used.
func NewAnalyzer(loader *Loader, extractor TextExtractor, logger *errors.Logger, opts ...Option) *Analyzer {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	a := &Analyzer{
		loader:    loader,
		extractor: extractor,
		logger:    logger,
		tracer:    noop.NewTracerProvider().Tracer("resumelens.analysis"),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeDocument extracts the text of doc and analyzes it. Extraction
// failures abort without a partial result.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, doc types.Document) (*types.AnalysisResult, error) {
	start := time.Now()
	result, err := a.analyzeDocument(ctx, doc)
	a.recorder.RecordAnalysis(ctx, string(doc.Format), time.Since(start), result, err)
	return result, err
}

func (a *Analyzer) analyzeDocument(ctx context.Context, doc types.Document) (*types.AnalysisResult, error) {
	if a.extractor == nil {
		return nil, errors.NewInternalError(errors.ErrCodeInternal, "no text extractor configured", nil)
	}
	text, err := a.extractor.Extract(ctx, doc)
	if err != nil {
		return nil, err
	}
	return a.Analyze(ctx, text)
}

// Analyze runs every extractor over text and aggregates the results.
// Blank text is rejected with EMPTY_DOCUMENT.
func (a *Analyzer) Analyze(ctx context.Context, text string) (*types.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.NewExtractionError(errors.ErrCodeEmptyDocument, "Could not extract text from file", nil)
	}

	c, err := a.loader.Get()
	if err != nil {
		return nil, err
	}

	ctx, span := a.tracer.Start(ctx, "analysis.pipeline")
	defer span.End()

	facets := Facets{
		Contact:   ExtractContact(text),
		Structure: AnalyzeStructure(text, c.Settings),
		Skills:    c.Skills.Match(text),
	}

	doc, err := c.Pipeline.Process(text)
	if err != nil {
		a.degrade(ctx, WarningNLP, err)
		facets.Warnings = append(facets.Warnings, WarningNLP)
	}
	facets.Experience = AnalyzeExperience(c, text, doc)
	facets.Highlights = ExtractHighlights(text, doc)

	issues, err := c.Grammar.Check(ctx, text)
	if err != nil {
		a.degrade(ctx, WarningGrammar, err)
		issues = nil
		facets.Warnings = append(facets.Warnings, WarningGrammar)
	}
	facets.Grammar = issues

	result := Aggregate(facets, c.Settings)

	span.SetAttributes(
		attribute.Int("analysis.score", result.Score),
		attribute.Int("analysis.word_count", result.Structure.WordCount),
		attribute.Int("analysis.skills", result.Skills.Total()),
		attribute.Int("analysis.gaps", len(result.Experience.Gaps)),
	)
	if len(facets.Warnings) > 0 {
		span.SetAttributes(attribute.StringSlice("analysis.degraded", facets.Warnings))
	}

	a.logger.Debug("Analysis completed",
		"score", result.Score,
		"sections", len(result.Structure.Sections),
		"warnings", facets.Warnings)
	return result, nil
}

func (a *Analyzer) degrade(ctx context.Context, extractor string, err error) {
	a.logger.Warn("Extractor degraded to empty result", "extractor", extractor, "error", err)
	trace.SpanFromContext(ctx).RecordError(err, trace.WithAttributes(attribute.String("extractor", extractor)))
	a.recorder.RecordDegraded(ctx, extractor)
}
