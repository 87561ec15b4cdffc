// Package understanding guards the text-understanding provider: a circuit breaker so an
// unhealthy provider degrades sourcing immediately, request usage accounting, logging and
// chunked batch embedding.
package understanding

import (
	"context"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vendorscout/internal/domain"
)

// DefaultMaxAPIBatchSize is the largest batch sent in one embeddings request.
const DefaultMaxAPIBatchSize = 256

// Guarded wraps a domain.Understander with a circuit breaker and observability.
// Transport metrics (requests, duration, tokens) are recorded by the provider itself.
type Guarded struct {
	inner     domain.Understander
	breaker   *gobreaker.CircuitBreaker[any]
	provider  string
	batchSize int
	logger    *zap.Logger
}

// NewGuarded wraps a provider. A nil breaker disables circuit breaking.
func NewGuarded(
	inner domain.Understander, breaker *gobreaker.CircuitBreaker[any],
	provider string, logger *zap.Logger,
) *Guarded {
	return &Guarded{
		inner:     inner,
		breaker:   breaker,
		provider:  provider,
		batchSize: DefaultMaxAPIBatchSize,
		logger:    logger,
	}
}

// ExtractPreferences calls the provider through the breaker and records usage on the
// request context.
func (g *Guarded) ExtractPreferences(ctx context.Context, vision, category string) (domain.PreferenceResult, error) {
	start := time.Now()
	out, err := g.execute(func() (any, error) {
		return g.inner.ExtractPreferences(ctx, vision, category)
	})
	if err != nil {
		g.logger.Warn("Preference extraction failed",
			zap.String("provider", g.provider),
			zap.String("category", category),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return domain.PreferenceResult{}, fmt.Errorf("extract preferences: %w", err)
	}

	res, _ := out.(domain.PreferenceResult)
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	g.logger.Debug("Preference extraction completed",
		zap.String("provider", g.provider),
		zap.String("category", category),
		zap.Duration("duration", time.Since(start)),
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// Embed calls the provider through the breaker.
func (g *Guarded) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	out, err := g.execute(func() (any, error) {
		return g.inner.Embed(ctx, text)
	})
	if err != nil {
		g.logger.Error("Embedding request failed", zap.String("provider", g.provider), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	res, _ := out.(domain.EmbeddingResult)
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return res, nil
}

// BatchEmbed splits texts into chunks of at most DefaultMaxAPIBatchSize, each guarded by
// the breaker. Providers without a batch endpoint fall back to per-text Embed.
func (g *Guarded) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}

	start := time.Now()
	var all [][]float32
	var totalPrompt, totalTokens int

	for offset := 0; offset < len(texts); offset += g.batchSize {
		end := min(offset+g.batchSize, len(texts))
		chunk := texts[offset:end]

		out, err := g.execute(func() (any, error) {
			if be, ok := g.inner.(domain.BatchEmbedder); ok {
				return be.BatchEmbed(ctx, chunk)
			}
			return domain.BatchFallback(ctx, g.inner, chunk)
		})
		if err != nil {
			g.logger.Error("Batch embedding request failed",
				zap.String("provider", g.provider),
				zap.Int("chunk_offset", offset),
				zap.Int("chunk_size", len(chunk)),
				zap.Error(err),
			)
			return domain.BatchEmbeddingResult{}, fmt.Errorf("batch embed (chunk %d): %w", offset, err)
		}

		res, _ := out.(domain.BatchEmbeddingResult)
		all = append(all, res.Embeddings...)
		totalPrompt += res.PromptTokens
		totalTokens += res.TotalTokens
	}

	domain.UsageFromContext(ctx).AddTokens(totalTokens)
	g.logger.Debug("Batch embedding completed",
		zap.String("provider", g.provider),
		zap.Duration("duration", time.Since(start)),
		zap.Int("batch_size", len(texts)),
		zap.Int("total_tokens", totalTokens),
	)

	return domain.BatchEmbeddingResult{
		Embeddings:   all,
		PromptTokens: totalPrompt,
		TotalTokens:  totalTokens,
	}, nil
}

// HealthCheck delegates to the provider when it supports health checks. It bypasses the
// breaker so an open circuit can still report provider recovery.
func (g *Guarded) HealthCheck(ctx context.Context) error {
	hc, ok := g.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("provider health: %w", err)
	}
	return nil
}

// CircuitOpen reports whether the breaker currently rejects calls.
func (g *Guarded) CircuitOpen() bool {
	return g.breaker != nil && g.breaker.State() == gobreaker.StateOpen
}

func (g *Guarded) execute(fn func() (any, error)) (any, error) {
	if g.breaker == nil {
		return fn()
	}
	out, err := g.breaker.Execute(fn)
	return out, breakerErr(err)
}
