package grammar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/types"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// ProviderLanguageTool is the provider name of the LanguageTool client.
const ProviderLanguageTool = "languagetool"

// LanguageTool checks text against a LanguageTool server's /v2/check API.
type LanguageTool struct {
	client   *retryablehttp.Client
	limiter  *rate.Limiter
	endpoint string
	language string
	username string
	apiKey   string
}

var _ Provider = (*LanguageTool)(nil)

// languageToolResponse is the subset of the /v2/check response we read.
type languageToolResponse struct {
	Matches []struct {
		Message      string `json:"message"`
		ShortMessage string `json:"shortMessage"`
		Replacements []struct {
			Value string `json:"value"`
		} `json:"replacements"`
		Context struct {
			Text   string `json:"text"`
			Offset int    `json:"offset"`
			Length int    `json:"length"`
		} `json:"context"`
	} `json:"matches"`
}

// NewLanguageTool creates a LanguageTool client with transport retries and
// an outbound request throttle.
func NewLanguageTool(cfg config.GrammarConfig, logger *errors.Logger) *LanguageTool {
	client := retryablehttp.NewClient()
	client.RetryMax = max(cfg.MaxRetries, 0)
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 5 * time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = logger

	return &LanguageTool{
		client:   client,
		limiter:  newLimiter(cfg.LanguageTool.RequestsPerMinute, cfg.LanguageTool.Burst),
		endpoint: strings.TrimSuffix(cfg.LanguageTool.Endpoint, "/"),
		language: cfg.Language,
		username: cfg.LanguageTool.Username,
		apiKey:   cfg.LanguageTool.APIKey,
	}
}

func newLimiter(perMinute, burst int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60), max(burst, 1))
}

// Name implements Provider
func (l *LanguageTool) Name() string { return ProviderLanguageTool }

// Check implements Provider
func (l *LanguageTool) Check(ctx context.Context, text string) ([]types.GrammarIssue, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("languagetool throttle: %w", err)
	}

	form := url.Values{}
	form.Set("text", text)
	form.Set("language", l.language)
	if l.username != "" && l.apiKey != "" {
		form.Set("username", l.username)
		form.Set("apiKey", l.apiKey)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, l.endpoint+"/v2/check", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build languagetool request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("languagetool request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("languagetool returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload languageToolResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode languagetool response: %w", err)
	}

	issues := make([]types.GrammarIssue, 0, len(payload.Matches))
	for _, m := range payload.Matches {
		message := m.Message
		if message == "" {
			message = m.ShortMessage
		}
		replacements := make([]string, 0, min(len(m.Replacements), maxReplacements))
		for _, r := range m.Replacements[:min(len(m.Replacements), maxReplacements)] {
			replacements = append(replacements, r.Value)
		}
		issues = append(issues, types.GrammarIssue{
			Message:      message,
			Context:      m.Context.Text,
			Replacements: replacements,
		})
	}
	return issues, nil
}
