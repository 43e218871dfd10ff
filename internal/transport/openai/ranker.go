// Package openai provides the semantic ranking provider over an
// OpenAI-compatible chat completions API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/markstash-cloud/markstash/internal/domain"
	"github.com/markstash-cloud/markstash/internal/domain/bookmark"
	"github.com/markstash-cloud/markstash/internal/metrics"
)

const systemPrompt = `You rank bookmarks by relevance to a search query.
Reply with a JSON array of bookmark IDs ordered from most to least relevant.
Include only IDs that are relevant to the query. Reply with the JSON array and nothing else.`

// Ranker re-orders candidate bookmarks by semantic relevance using an
// OpenAI-compatible chat completions API.
type Ranker struct {
	client   *openai.Client
	model    string
	user     string
	provider string
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// Config holds the semantic ranking provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	User     string
	Provider string
	// RatePerMinute caps outbound API calls; 0 disables the limiter.
	RatePerMinute int
	Logger        *zap.Logger
}

// NewRanker creates an OpenAI-compatible semantic ranker.
func NewRanker(cfg *Config) *Ranker {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	var limiter *rate.Limiter
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RatePerMinute)/60.0), cfg.RatePerMinute)
	}

	return &Ranker{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		user:     cfg.User,
		provider: cfg.Provider,
		limiter:  limiter,
		logger:   cfg.Logger,
	}
}

// Rank implements usecase/search.SemanticRanker. Returns candidate IDs
// ordered by relevance to the query; IDs the model judged irrelevant are
// omitted.
func (r *Ranker) Rank(ctx context.Context, query string, candidates []bookmark.Bookmark) ([]string, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	if r.limiter != nil && !r.limiter.Allow() {
		metrics.SemanticRequestsTotal.WithLabelValues(r.provider, r.model, "rate_limited").Inc()
		return nil, fmt.Errorf("semantic ranking: %w", domain.ErrRateLimited)
	}

	req := openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(query, candidates)},
		},
		Temperature: 0,
		User:        r.user,
	}

	start := time.Now()

	resp, err := r.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.SemanticRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
		return nil, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.SemanticRequestsTotal.WithLabelValues(r.provider, r.model, "error").Inc()
		return nil, fmt.Errorf("empty completion response: %w", domain.ErrSemanticUnavailable)
	}

	metrics.SemanticRequestsTotal.WithLabelValues(r.provider, r.model, "success").Inc()
	metrics.SemanticRequestDuration.WithLabelValues(r.provider, r.model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.SemanticTokensTotal.WithLabelValues(r.provider, r.model, "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.SemanticTokensTotal.WithLabelValues(r.provider, r.model, "total").
			Add(float64(resp.Usage.TotalTokens))
	}

	ids, err := parseRanking(resp.Choices[0].Message.Content, candidates)
	if err != nil {
		r.logger.Warn("unparseable ranking response",
			zap.String("model", r.model),
			zap.Error(err))
		return nil, err
	}

	return ids, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (r *Ranker) HealthCheck(ctx context.Context) error {
	if _, err := r.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// buildPrompt renders the query and the candidate set as the user message.
func buildPrompt(query string, candidates []bookmark.Bookmark) string {
	var b strings.Builder
	b.WriteString("Query: ")
	b.WriteString(query)
	b.WriteString("\n\nBookmarks:\n")
	for _, bm := range candidates {
		fmt.Fprintf(&b, "- id=%s title=%q url=%s", bm.ID(), bm.Title(), bm.URL())
		if bm.Category() != "" {
			fmt.Fprintf(&b, " category=%s", bm.Category())
		}
		if bm.Description() != "" {
			fmt.Fprintf(&b, " description=%q", bm.Description())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// parseRanking extracts the ordered ID list from the completion text,
// dropping IDs that are not among the candidates.
func parseRanking(content string, candidates []bookmark.Bookmark) ([]string, error) {
	raw := extractJSONArray(content)
	if raw == "" {
		return nil, fmt.Errorf("no JSON array in completion: %w", domain.ErrSemanticUnavailable)
	}

	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode ranking: %v: %w", err, domain.ErrSemanticUnavailable)
	}

	known := make(map[string]bool, len(candidates))
	for _, bm := range candidates {
		known[bm.ID()] = true
	}

	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if known[id] && !seen[id] {
			out = append(out, id)
			seen[id] = true
		}
	}
	return out, nil
}

// extractJSONArray finds the outermost bracketed array in the completion.
// Models occasionally wrap the answer in prose or a code fence.
func extractJSONArray(content string) string {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrSemanticUnavailable for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrSemanticUnavailable

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("completion request failed: %w", wrap)
}
