package vendorscout

import (
	"context"

	"github.com/kailas-cloud/vendorscout/internal/domain"
)

// Provider is the text-understanding backend: it turns a client vision into a preference
// statement for one category and embeds text.
type Provider interface {
	ExtractPreferences(ctx context.Context, vision, category string) (Preference, error)
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single API call.
// Optional: if the Provider also implements BatchEmbedder, Upsert uses it.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// OpenAIConfig configures the built-in OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string // empty means api.openai.com
	// ChatModel defaults to gpt-4o-mini, EmbeddingModel to text-embedding-3-small.
	ChatModel      string
	EmbeddingModel string
}

// Preference is the normalized preference statement and its embedding.
type Preference struct {
	Text        string
	Embedding   []float32
	TotalTokens int
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult carries multiple embedding vectors and aggregate token usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// providerAdapter bridges a public Provider to domain.Understander.
type providerAdapter struct {
	inner Provider
}

func (a *providerAdapter) ExtractPreferences(
	ctx context.Context, vision, category string,
) (domain.PreferenceResult, error) {
	p, err := a.inner.ExtractPreferences(ctx, vision, category)
	if err != nil {
		return domain.PreferenceResult{}, err
	}
	return domain.PreferenceResult{
		Text:        p.Text,
		Embedding:   p.Embedding,
		TotalTokens: p.TotalTokens,
	}, nil
}

func (a *providerAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// batchProviderAdapter is used when the Provider also batches.
type batchProviderAdapter struct {
	providerAdapter
	batch BatchEmbedder
}

func (a *batchProviderAdapter) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	r, err := a.batch.BatchEmbed(ctx, texts)
	if err != nil {
		return domain.BatchEmbeddingResult{}, err
	}
	return domain.BatchEmbeddingResult{
		Embeddings:   r.Embeddings,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// adaptProvider keeps the batch capability visible to the breaker wrapper.
func adaptProvider(p Provider) domain.Understander {
	base := providerAdapter{inner: p}
	if be, ok := p.(BatchEmbedder); ok {
		return &batchProviderAdapter{providerAdapter: base, batch: be}
	}
	return &base
}
