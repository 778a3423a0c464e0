package grammar

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"resumelens/internal/config"
	appErrors "resumelens/internal/errors"
	"resumelens/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// ProviderGemini is the provider name of the Gemini proofreader.
const ProviderGemini = "gemini"

const maxBackoff = 30 * time.Second

// Gemini proofreads text with a Gemini model and a structured response schema
type Gemini struct {
	client       *genai.Client
	model        string
	temperature  float32
	systemPrompt string
	maxRetries   int
	logger       *appErrors.Logger
}

var _ Provider = (*Gemini)(nil)

// geminiResponse mirrors the response schema
type geminiResponse struct {
	Issues []types.GrammarIssue `json:"issues"`
}

// NewGemini creates a Gemini grammar provider
func NewGemini(ctx context.Context, cfg config.GrammarConfig, logger *appErrors.Logger) (*Gemini, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, appErrors.NewConfigError(appErrors.ErrCodeMissingAPIKey,
			"Gemini API key is required for the gemini grammar provider", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, appErrors.NewServiceError(appErrors.ErrCodeServiceUnavailable,
			"Failed to create Gemini client", err)
	}

	return &Gemini{
		client:       client,
		model:        cfg.Gemini.Model,
		temperature:  cfg.Gemini.Temperature,
		systemPrompt: resolvePrompt(cfg.Gemini.SystemPrompt, DefaultSystemPrompt),
		maxRetries:   max(cfg.MaxRetries, 0),
		logger:       logger,
	}, nil
}

// Name implements Provider
func (g *Gemini) Name() string { return ProviderGemini }

// Check implements Provider
func (g *Gemini) Check(ctx context.Context, text string) ([]types.GrammarIssue, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.String("ai.provider", ProviderGemini),
		attribute.String("ai.model", g.model),
		attribute.Float64("ai.temperature", float64(g.temperature)),
	)

	result, err := g.executeWithRetry(ctx, func() (*genai.GenerateContentResponse, error) {
		return g.client.Models.GenerateContent(ctx, g.model, genai.Text(fmt.Sprintf(userPromptTemplate, text)), g.buildConfig())
	})
	if err != nil {
		return nil, err
	}

	if usage := result.UsageMetadata; usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", int64(usage.PromptTokenCount)),
			attribute.Int64("ai.tokens.output", int64(usage.CandidatesTokenCount)),
			attribute.Int64("ai.tokens.total", int64(usage.TotalTokenCount)),
		)
	}

	return parseGeminiIssues(result.Text())
}

func parseGeminiIssues(raw string) ([]types.GrammarIssue, error) {
	var out geminiResponse
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	issues := make([]types.GrammarIssue, 0, len(out.Issues))
	for _, issue := range out.Issues {
		if issue.Message == "" {
			continue
		}
		if issue.Replacements == nil {
			issue.Replacements = []string{}
		}
		issues = append(issues, issue)
	}
	return issues, nil
}

// buildConfig creates the generation config with the response schema
func (g *Gemini) buildConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"issues": {
					Type: genai.TypeArray,
					Items: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"message": {Type: genai.TypeString},
							"context": {Type: genai.TypeString},
							"replacements": {
								Type:  genai.TypeArray,
								Items: &genai.Schema{Type: genai.TypeString},
							},
						},
						Required: []string{"message", "context", "replacements"},
					},
				},
			},
			Required: []string{"issues"},
		},
		SystemInstruction: genai.NewContentFromText(g.systemPrompt, genai.RoleUser),
	}

	if g.temperature > 0 {
		cfg.Temperature = genai.Ptr(g.temperature)
	}
	return cfg
}

// executeWithRetry retries retryable failures with exponential backoff and jitter
func (g *Gemini) executeWithRetry(ctx context.Context, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying Gemini grammar check",
				"attempt", attempt,
				"max_retries", g.maxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("Gemini grammar check succeeded after retry", "successful_attempt", attempt+1)
			}
			return result, nil
		}

		lastErr = err
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts", "error", err.Error())
			break
		}
	}

	return nil, fmt.Errorf("gemini grammar check failed after %d retries: %w", g.maxRetries, lastErr)
}

// backoff returns 2^(attempt-1) seconds plus up to 10% jitter, capped at 30s
func backoff(attempt int) time.Duration {
	base := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
	jitter := time.Duration(0)
	if n, err := rand.Int(rand.Reader, big.NewInt(int64(float64(base)*0.1)+1)); err == nil {
		jitter = time.Duration(n.Int64())
	}
	return min(base+jitter, maxBackoff)
}

// isRetryableError reports whether err is transient
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return genaiErr.Code == http.StatusTooManyRequests || genaiErr.Code >= http.StatusInternalServerError
	}

	return false
}
