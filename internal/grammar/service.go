// Package grammar reports grammar and spelling issues through an external
// checking service.
package grammar

import (
	"context"
	"fmt"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ProviderNone disables grammar checking
const ProviderNone = "none"

const maxReplacements = 3

// Provider is a grammar checking backend
type Provider interface {
	Name() string
	Check(ctx context.Context, text string) ([]types.GrammarIssue, error)
}

// Recorder receives grammar request metrics
type Recorder interface {
	RecordGrammarRequest(ctx context.Context, provider string, duration time.Duration, err error)
}

// Checker truncates text, guards the provider with a circuit breaker and
// normalizes the reported issues.
type Checker struct {
	provider Provider
	breaker  *CircuitBreaker
	maxWords int
	timeout  time.Duration
	logger   *errors.Logger
	tracer   trace.Tracer
	recorder Recorder
}

// Option configures a Checker
type Option func(*Checker)

// WithTracer sets the tracer for grammar spans
func WithTracer(t trace.Tracer) Option {
	return func(c *Checker) { c.tracer = t }
}

// WithRecorder sets the metrics recorder
func WithRecorder(r Recorder) Option {
	return func(c *Checker) { c.recorder = r }
}

// NewChecker builds the Checker for the configured provider
func NewChecker(ctx context.Context, cfg config.GrammarConfig, logger *errors.Logger, opts ...Option) (*Checker, error) {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}

	var provider Provider
	switch cfg.Provider {
	case ProviderNone, "":
		provider = noneProvider{}
	case ProviderLanguageTool:
		provider = NewLanguageTool(cfg, logger)
	case ProviderGemini:
		gemini, err := NewGemini(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		provider = gemini
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported grammar provider: %s", cfg.Provider), nil)
	}

	logger.Debug("Initializing grammar checker",
		"provider", provider.Name(),
		"language", cfg.Language,
		"max_words", cfg.MaxWords,
		"timeout", cfg.Timeout,
		"circuit_breaker", cfg.CircuitBreaker.Enabled)

	var breaker *CircuitBreaker
	if provider.Name() != ProviderNone {
		breaker = NewCircuitBreaker(provider.Name(), cfg.CircuitBreaker, logger)
	}
	return NewCheckerWithProvider(provider, breaker, cfg.MaxWords, cfg.Timeout, logger, opts...), nil
}

// NewCheckerWithProvider wraps an already constructed provider
func NewCheckerWithProvider(provider Provider, breaker *CircuitBreaker, maxWords int, timeout time.Duration, logger *errors.Logger, opts ...Option) *Checker {
	if logger == nil {
		logger = errors.NewDiscardLogger()
	}
	c := &Checker{
		provider: provider,
		breaker:  breaker,
		maxWords: maxWords,
		timeout:  timeout,
		logger:   logger,
		tracer:   noop.NewTracerProvider().Tracer("resumelens.grammar"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the configured provider name
func (c *Checker) Provider() string {
	return c.provider.Name()
}

// Check reports the issues found in the first maxWords words of text.
// Provider failures are returned as SERVICE_UNAVAILABLE.
func (c *Checker) Check(ctx context.Context, text string) ([]types.GrammarIssue, error) {
	name := c.provider.Name()
	if name == ProviderNone {
		return []types.GrammarIssue{}, nil
	}

	text = Truncate(text, c.maxWords)
	if WordCount(text) == 0 {
		return []types.GrammarIssue{}, nil
	}

	ctx, span := c.tracer.Start(ctx, "grammar."+name)
	defer span.End()
	span.SetAttributes(
		attribute.String("grammar.provider", name),
		attribute.Int("grammar.words", WordCount(text)),
	)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	issues, err := c.breaker.Execute(func() ([]types.GrammarIssue, error) {
		return c.provider.Check(ctx, text)
	})
	if c.recorder != nil {
		c.recorder.RecordGrammarRequest(ctx, name, time.Since(start), err)
	}

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		c.logger.LogError(err, "Grammar check failed", "provider", name)
		return nil, errors.NewServiceError(errors.ErrCodeServiceUnavailable, "grammar check unavailable", err).
			WithContext("provider", name)
	}

	normalized := normalizeIssues(issues)
	span.SetAttributes(attribute.Bool("success", true), attribute.Int("grammar.issues", len(normalized)))
	return normalized, nil
}

// Stats reports the provider and circuit breaker state
func (c *Checker) Stats() map[string]any {
	return map[string]any{
		"provider":        c.provider.Name(),
		"circuit_breaker": c.breaker.Stats(),
		"healthy":         c.breaker.IsHealthy(),
	}
}

// IsHealthy is false while the circuit breaker is not closed
func (c *Checker) IsHealthy() bool {
	return c.breaker.IsHealthy()
}

func normalizeIssues(issues []types.GrammarIssue) []types.GrammarIssue {
	out := make([]types.GrammarIssue, 0, len(issues))
	for _, issue := range issues {
		if len(issue.Replacements) > maxReplacements {
			issue.Replacements = issue.Replacements[:maxReplacements]
		}
		if issue.Replacements == nil {
			issue.Replacements = []string{}
		}
		out = append(out, issue)
	}
	return out
}

type noneProvider struct{}

func (noneProvider) Name() string { return ProviderNone }

func (noneProvider) Check(context.Context, string) ([]types.GrammarIssue, error) {
	return []types.GrammarIssue{}, nil
}
