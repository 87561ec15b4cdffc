// Package openai is the text-understanding provider over an OpenAI-compatible API:
// chat completions normalize client vision into a preference statement, the embeddings
// endpoint vectorizes preferences and vendor descriptions.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	"github.com/kailas-cloud/vendorscout/internal/metrics"
)

const (
	opEmbed      = "embed"
	opBatchEmbed = "batch_embed"
	opExtract    = "extract_preferences"
)

// Provider implements domain.Understander, domain.BatchEmbedder and domain.HealthChecker.
type Provider struct {
	client      *openai.Client
	model       openai.EmbeddingModel
	chatModel   string
	dimensions  int
	user        string
	provider    string
	instruction string
	logger      *zap.Logger
}

// Config holds the provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string // embedding model
	ChatModel  string
	Dimensions int
	User       string
	Provider   string
	// PreferenceInstruction is prepended to preference text before embedding, for models
	// that embed queries and passages with different instructions.
	PreferenceInstruction string
	Logger                *zap.Logger
}

// NewProvider creates an OpenAI-compatible text-understanding provider.
func NewProvider(cfg *Config) *Provider {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provider{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       openai.EmbeddingModel(cfg.Model),
		chatModel:   cfg.ChatModel,
		dimensions:  cfg.Dimensions,
		user:        cfg.User,
		provider:    cfg.Provider,
		instruction: cfg.PreferenceInstruction,
		logger:      logger,
	}
}

// Embed implements domain.Embedder.
func (p *Provider) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := p.createEmbeddings(ctx, opEmbed, []string{text})
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    res.Embeddings[0],
		PromptTokens: res.PromptTokens,
		TotalTokens:  res.TotalTokens,
	}, nil
}

// BatchEmbed implements domain.BatchEmbedder with a single embeddings request.
func (p *Provider) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	return p.createEmbeddings(ctx, opBatchEmbed, texts)
}

func (p *Provider) createEmbeddings(ctx context.Context, op string, texts []string) (domain.BatchEmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          p.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           p.user,
	}
	if p.dimensions > 0 {
		req.Dimensions = p.dimensions
	}

	model := string(p.model)
	start := time.Now()
	resp, err := p.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	if err != nil {
		p.recordError(model, op, "api_error")
		return domain.BatchEmbeddingResult{}, parseAPIError(err, domain.ErrEmbeddingProviderError)
	}
	if len(resp.Data) != len(texts) {
		p.recordError(model, op, "empty_response")
		return domain.BatchEmbeddingResult{}, fmt.Errorf("embedding response has %d vectors for %d inputs: %w",
			len(resp.Data), len(texts), domain.ErrEmbeddingProviderError)
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	embeddings := make([][]float32, len(resp.Data))
	for i := range resp.Data {
		embeddings[i] = resp.Data[i].Embedding
	}

	p.recordSuccess(model, op, duration, resp.Usage.PromptTokens, resp.Usage.TotalTokens)

	return domain.BatchEmbeddingResult{
		Embeddings:   embeddings,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func (p *Provider) recordError(model, op, errType string) {
	metrics.ProviderRequestsTotal.WithLabelValues(p.provider, model, op, "error").Inc()
	metrics.ProviderErrorsTotal.WithLabelValues(p.provider, model, errType).Inc()
}

func (p *Provider) recordSuccess(model, op string, d time.Duration, prompt, total int) {
	metrics.ProviderRequestsTotal.WithLabelValues(p.provider, model, op, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues(p.provider, model, op).Observe(d.Seconds())
	if total > 0 {
		metrics.ProviderTokensTotal.WithLabelValues(p.provider, model, "prompt").Add(float64(prompt))
		metrics.ProviderTokensTotal.WithLabelValues(p.provider, model, "total").Add(float64(total))
	}
}

// parseAPIError extracts a human-readable error from the API response and wraps it with
// the given sentinel.
func parseAPIError(err error, wrap error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("provider API error %d: %s: %w", reqErr.HTTPStatusCode, detail, wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("provider API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("provider request: %w: %w", wrap, err)
	}

	return fmt.Errorf("provider request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body (Nebius error format).
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
