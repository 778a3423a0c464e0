package common

import (
	"context"
	"fmt"
	"time"

	"resumelens/internal/analysis"
	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/extract"
	"resumelens/internal/grammar"
	"resumelens/internal/nlp"
	"resumelens/internal/observability"
)

// Runtime bundles the long-lived components shared by the analyze, serve
// and worker commands
type Runtime struct {
	Config        *config.Config
	Observability *observability.ObservabilityManager
	Recorder      *observability.Recorder
	Grammar       *grammar.Checker
	Loader        *analysis.Loader
	Analyzer      *analysis.Analyzer

	logger *errors.Logger
}

type runtimeOptions struct {
	version       string
	observability bool
	clock         func() time.Time
}

// RuntimeOption configures NewRuntime
type RuntimeOption func(*runtimeOptions)

// WithObservability starts tracing and metrics exporters for the process
func WithObservability(version string) RuntimeOption {
	return func(o *runtimeOptions) {
		o.observability = true
		o.version = version
	}
}

// WithClock fixes the time used to resolve "Present" in date ranges
func WithClock(clock func() time.Time) RuntimeOption {
	return func(o *runtimeOptions) { o.clock = clock }
}

// NewRuntime wires the analysis pipeline from configuration. The analysis
// context itself is built lazily on first use.
func NewRuntime(ctx context.Context, cfg *config.Config, logger *errors.Logger, opts ...RuntimeOption) (*Runtime, error) {
	options := runtimeOptions{clock: time.Now}
	for _, opt := range opts {
		opt(&options)
	}

	rt := &Runtime{Config: cfg, logger: logger}

	if options.observability {
		om, err := observability.NewObservabilityManager(
			observability.GetObservabilityConfig(cfg, options.version), cfg)
		if err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to initialize observability", err)
		}
		rt.Observability = om
	}
	rt.Recorder = observability.NewRecorder(rt.Observability, cfg.Observability.CustomMetrics)

	checker, err := grammar.NewChecker(ctx, cfg.Grammar, logger,
		grammar.WithTracer(rt.Observability.Tracer("resumelens.grammar")),
		grammar.WithRecorder(rt.Recorder))
	if err != nil {
		_ = rt.Shutdown(ctx)
		return nil, err
	}
	rt.Grammar = checker

	rt.Loader = analysis.NewLoader(ContextBuilder(cfg.Analysis, checker, options.clock, logger))
	rt.Analyzer = analysis.NewAnalyzer(rt.Loader, extract.NewExtractor(logger), logger,
		analysis.WithTracer(rt.Observability.Tracer("resumelens.analysis")),
		analysis.WithRecorder(rt.Recorder))

	return rt, nil
}

// Shutdown flushes telemetry
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil || r.Observability == nil {
		return nil
	}
	return r.Observability.Shutdown(ctx)
}

// ContextBuilder returns the function that loads the shared NLP resources
// and skill vocabulary
func ContextBuilder(cfg config.AnalysisConfig, checker analysis.GrammarChecker, clock func() time.Time, logger *errors.Logger) func() (*analysis.Context, error) {
	if clock == nil {
		clock = time.Now
	}
	return func() (*analysis.Context, error) {
		start := time.Now()

		lemmatizer, err := nlp.NewGolemLemmatizer()
		if err != nil {
			return nil, fmt.Errorf("failed to load lemmatizer: %w", err)
		}

		vocab := analysis.DefaultVocabulary()
		if cfg.VocabularyFile != "" {
			vocab, err = analysis.LoadVocabulary(cfg.VocabularyFile)
			if err != nil {
				return nil, fmt.Errorf("failed to load vocabulary %s: %w", cfg.VocabularyFile, err)
			}
		}

		pipeline, err := nlp.NewProsePipeline()
		if err != nil {
			return nil, err
		}

		skills, err := analysis.NewSkillIndex(vocab, analysis.DisplayCase(cfg.SkillDisplayCase))
		if err != nil {
			return nil, err
		}

		actx, err := analysis.NewContext(analysis.Context{
			Pipeline:   pipeline,
			Lemmatizer: lemmatizer,
			Dates:      nlp.NewMonthYearParser(clock),
			Skills:     skills,
			Grammar:    checker,
			Settings: analysis.Settings{
				GapThresholdDays: cfg.GapThresholdDays,
				MinWords:         cfg.MinWords,
				MaxWords:         cfg.MaxWords,
			},
			Clock:    clock,
			Location: cfg.Location(),
		})
		if err != nil {
			return nil, err
		}

		logger.Info("Analysis context ready",
			"skills", skills.Size(),
			"vocabulary_file", cfg.VocabularyFile,
			"timezone", actx.Location.String(),
			"duration", time.Since(start))
		return actx, nil
	}
}

