// Package app assembles the vendor store and the understanding provider chain shared by
// the API server and the catalog seeding tool.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vendorscout/internal/config"
	dbRedis "github.com/kailas-cloud/vendorscout/internal/db/redis"
	"github.com/kailas-cloud/vendorscout/internal/domain"
	"github.com/kailas-cloud/vendorscout/internal/metrics"
	"github.com/kailas-cloud/vendorscout/internal/repository/embcache"
	openaiProvider "github.com/kailas-cloud/vendorscout/internal/transport/openai"
	cataloguc "github.com/kailas-cloud/vendorscout/internal/usecase/catalog"
	"github.com/kailas-cloud/vendorscout/internal/usecase/understanding"
)

// OpenStore connects to the vendor store and waits until it answers.
func OpenStore(ctx context.Context, dcfg config.DatabaseConfig) (*dbRedis.Store, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    dcfg.Addrs,
		Password: dcfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create vendor store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(dcfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("wait for vendor store: %w", err)
	}
	return store, nil
}

// NewProvider wraps the configured provider with the circuit breaker. Without a
// provider every call fails fast and sourcing runs degraded.
func NewProvider(ucfg config.UnderstandingConfig, logger *zap.Logger) *understanding.Guarded {
	if !ucfg.Enabled() {
		logger.Warn("No understanding provider configured: sourcing runs on hard filters only")
		return understanding.NewGuarded(understanding.Disabled{}, nil, "none", logger)
	}

	base := openaiProvider.NewProvider(&openaiProvider.Config{
		APIKey:                ucfg.APIKey,
		BaseURL:               ucfg.BaseURL,
		Model:                 ucfg.EmbeddingModel,
		ChatModel:             ucfg.ChatModel,
		Dimensions:            ucfg.Dimensions,
		User:                  ucfg.User,
		Provider:              ucfg.Provider,
		PreferenceInstruction: ucfg.PreferenceInstruction,
		Logger:                logger,
	})

	breaker := understanding.NewBreaker(understanding.BreakerConfig{
		Name:             ucfg.Provider,
		MaxRequests:      ucfg.Breaker.MaxRequests,
		Interval:         time.Duration(ucfg.Breaker.IntervalSec) * time.Second,
		Timeout:          time.Duration(ucfg.Breaker.TimeoutSec) * time.Second,
		FailureThreshold: ucfg.Breaker.FailureThreshold,
	}, logger)

	logger.Info("Understanding provider created",
		zap.String("provider", ucfg.Provider),
		zap.String("chat_model", ucfg.ChatModel),
		zap.String("embedding_model", ucfg.EmbeddingModel),
		zap.Int("dimensions", ucfg.Dimensions),
	)
	return understanding.NewGuarded(base, breaker, ucfg.Provider, logger)
}

// NewDescriptionEmbedder assembles the vendor description chain:
// Guarded provider -> Cached -> Instruction (outermost, so the cache key includes it).
func NewDescriptionEmbedder(
	ucfg config.UnderstandingConfig,
	provider *understanding.Guarded,
	store *dbRedis.Store,
	logger *zap.Logger,
) cataloguc.Embedder {
	opts := []embcache.Option{embcache.WithModel(ucfg.EmbeddingModel)}
	if ucfg.CacheTTLHours > 0 {
		opts = append(opts, embcache.WithTTL(time.Duration(ucfg.CacheTTLHours)*time.Hour))
	}
	cached := embcache.New(provider, store, metrics.EmbeddingCacheTotal, logger, opts...)

	if ucfg.DescriptionInstruction != "" {
		return domain.NewInstructionEmbedder(cached, ucfg.DescriptionInstruction)
	}
	return cached
}
