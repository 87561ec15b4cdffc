package vendorscout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vendorscout/internal/db"
	dbRedis "github.com/kailas-cloud/vendorscout/internal/db/redis"
	dombatch "github.com/kailas-cloud/vendorscout/internal/domain/batch"
	"github.com/kailas-cloud/vendorscout/internal/domain/brief"
	domsrc "github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
	"github.com/kailas-cloud/vendorscout/internal/domain/weights"
	logpkg "github.com/kailas-cloud/vendorscout/internal/logger"
	"github.com/kailas-cloud/vendorscout/internal/metrics"
	"github.com/kailas-cloud/vendorscout/internal/repository/embcache"
	vendorrepo "github.com/kailas-cloud/vendorscout/internal/repository/vendors"
	openaiProvider "github.com/kailas-cloud/vendorscout/internal/transport/openai"
	cataloguc "github.com/kailas-cloud/vendorscout/internal/usecase/catalog"
	extractuc "github.com/kailas-cloud/vendorscout/internal/usecase/extract"
	healthuc "github.com/kailas-cloud/vendorscout/internal/usecase/health"
	rankeruc "github.com/kailas-cloud/vendorscout/internal/usecase/ranker"
	selectoruc "github.com/kailas-cloud/vendorscout/internal/usecase/selector"
	sourcinguc "github.com/kailas-cloud/vendorscout/internal/usecase/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/usecase/understanding"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultVectorDimensions = 1536
	defaultChatModel        = "gpt-4o-mini"
	defaultEmbeddingModel   = "text-embedding-3-small"
)

// Internal interfaces, swapped for mocks in tests.
type sourcingUseCase interface {
	Source(ctx context.Context, b *brief.Brief, category string, topK int) (domsrc.Result, error)
	SourceAll(ctx context.Context, b *brief.Brief, categories []string, topK int) (map[string]sourcinguc.Outcome, error)
	Categories() []string
}

type catalogUseCase interface {
	Ingest(ctx context.Context, items []vendors.Fields) []dombatch.Result
	Get(ctx context.Context, category, id string) (vendors.Record, error)
}

// Client is the vendorscout SDK entry point.
type Client struct {
	store     db.Store
	sourcing  sourcingUseCase
	catalog   catalogUseCase
	healthSvc healthUseCase
	release   func()
	obs       *observer
}

// New creates a Client, connects to Redis and ensures the vendor index exists.
// The provided context is used for the readiness check and index creation.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{vectorDimensions: defaultVectorDimensions}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("vendorscout: database address required (use WithRedis)")
	}
	ws, spaces, err := buildWeights(cfg.categories)
	if err != nil {
		return nil, err
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("vendorscout: create redis store: %w", err)
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("vendorscout: database not ready: %w", err)
	}

	c, catalogSvc, err := wireClient(store, cfg, ws, spaces, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	if err := catalogSvc.EnsureIndex(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("vendorscout: ensure index: %w", err)
	}
	return c, nil
}

// buildWeights validates the registered categories.
func buildWeights(categories map[string]categoryConfig) (weights.Set, map[string]string, error) {
	if len(categories) == 0 {
		return weights.Set{}, nil, errors.New("vendorscout: at least one category required (use WithCategory)")
	}
	profiles := make(map[string]weights.Profile, len(categories))
	spaces := make(map[string]string, len(categories))
	for name, cc := range categories {
		p, err := weights.NewProfile(cc.priceWeight, cc.preferenceWeight)
		if err != nil {
			return weights.Set{}, nil, fmt.Errorf("vendorscout: category %q: %w", name, err)
		}
		profiles[name] = p
		spaces[name] = cc.capacitySpace
	}
	ws, err := weights.NewSet(profiles)
	if err != nil {
		return weights.Set{}, nil, fmt.Errorf("vendorscout: %w", err)
	}
	return ws, spaces, nil
}

// newUnderstander picks the provider: custom, OpenAI, or none.
func newUnderstander(cfg *clientConfig, logger *zap.Logger) (*understanding.Guarded, string) {
	switch {
	case cfg.provider != nil:
		inner := adaptProvider(cfg.provider)
		breaker := understanding.NewBreaker(understanding.DefaultBreakerConfig("custom"), logger)
		return understanding.NewGuarded(inner, breaker, "custom", logger), ""
	case cfg.openai != nil:
		chat := cfg.openai.ChatModel
		if chat == "" {
			chat = defaultChatModel
		}
		model := cfg.openai.EmbeddingModel
		if model == "" {
			model = defaultEmbeddingModel
		}
		inner := openaiProvider.NewProvider(&openaiProvider.Config{
			APIKey:     cfg.openai.APIKey,
			BaseURL:    cfg.openai.BaseURL,
			Model:      model,
			ChatModel:  chat,
			Dimensions: cfg.vectorDimensions,
			Provider:   "openai",
			Logger:     logger,
		})
		breaker := understanding.NewBreaker(understanding.DefaultBreakerConfig("openai"), logger)
		return understanding.NewGuarded(inner, breaker, "openai", logger), model
	default:
		logger.Warn("No understanding provider configured: sourcing runs on hard filters only")
		return understanding.NewGuarded(understanding.Disabled{}, nil, "none", logger), ""
	}
}

func wireClient(
	store *dbRedis.Store, cfg *clientConfig, ws weights.Set, spaces map[string]string, obs *observer,
) (*Client, *cataloguc.Service, error) {
	logger := obs.log()
	provider, model := newUnderstander(cfg, logger)

	// Description embeddings are cached per model; custom providers are not cached since
	// their model is unknown.
	var descriptions cataloguc.Embedder = provider
	if model != "" {
		descriptions = embcache.New(provider, store, metrics.EmbeddingCacheTotal, logger, embcache.WithModel(model))
	}

	repo := vendorrepo.New(store, vendorrepo.HNSWConfig{
		M:           cfg.hnswM,
		EFConstruct: cfg.hnswEFConstruct,
	})

	catalogSvc := cataloguc.New(repo, descriptions, cfg.vectorDimensions)
	if cfg.maxBatchSize > 0 {
		catalogSvc = catalogSvc.WithMaxBatchSize(cfg.maxBatchSize)
	}

	extractSvc := extractuc.New(provider, extractuc.Config{
		BudgetTolerance: cfg.budgetTolerance,
		CapacitySpaces:  spaces,
	})
	selectorSvc := selectoruc.New(repo, selectoruc.Config{DefaultLimit: cfg.candidateLimit})
	rankerSvc, err := rankeruc.New(repo, rankeruc.Config{Workers: cfg.rankWorkers})
	if err != nil {
		return nil, nil, fmt.Errorf("vendorscout: create ranker: %w", err)
	}

	sourcingSvc := sourcinguc.New(extractSvc, selectorSvc, rankerSvc, ws, sourcinguc.Config{
		DefaultTopK:    cfg.defaultTopK,
		MaxTopK:        cfg.maxTopK,
		CandidateLimit: cfg.candidateLimit,
	})

	return &Client{
		store:     store,
		sourcing:  sourcingSvc,
		catalog:   catalogSvc,
		healthSvc: healthuc.New(store, provider),
		release:   rankerSvc.Release,
		obs:       obs,
	}, catalogSvc, nil
}

// Close releases the scoring pool and the store connection.
func (c *Client) Close() {
	if c.release != nil {
		c.release()
	}
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Categories lists the registered service categories, sorted.
func (c *Client) Categories() []string {
	return c.sourcing.Categories()
}

// withLogger puts the SDK logger on ctx for the pipeline stages.
func (c *Client) withLogger(ctx context.Context) context.Context {
	return logpkg.ContextWithLogger(ctx, c.obs.log())
}
