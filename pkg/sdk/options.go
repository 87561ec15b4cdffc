package vendorscout

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// categoryConfig is the ranking profile of one service category.
type categoryConfig struct {
	priceWeight      float64
	preferenceWeight float64
	capacitySpace    string
}

type clientConfig struct {
	addrs    []string
	password string

	provider Provider
	openai   *OpenAIConfig

	categories      map[string]categoryConfig
	budgetTolerance float64
	defaultTopK     int
	maxTopK         int
	candidateLimit  int

	vectorDimensions int
	hnswM            int
	hnswEFConstruct  int
	maxBatchSize     int
	rankWorkers      int

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis 8+ instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithOpenAI uses an OpenAI-compatible API for preference extraction and embeddings.
func WithOpenAI(cfg OpenAIConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = &cfg
	})
}

// WithProvider sets a custom text-understanding provider. It takes precedence over
// WithOpenAI.
func WithProvider(p Provider) Option {
	return optionFunc(func(c *clientConfig) {
		c.provider = p
	})
}

// WithCategory registers a service category with its ranking weights and the guest-count
// space that controls its capacity filter. An empty space disables the capacity filter.
func WithCategory(name string, priceWeight, preferenceWeight float64, capacitySpace string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.categories == nil {
			c.categories = make(map[string]categoryConfig)
		}
		c.categories[name] = categoryConfig{
			priceWeight:      priceWeight,
			preferenceWeight: preferenceWeight,
			capacitySpace:    capacitySpace,
		}
	})
}

// WithBudgetTolerance sets the multiplier applied to a category budget to get the price
// ceiling. Default: 1.10.
func WithBudgetTolerance(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.budgetTolerance = t
	})
}

// WithTopK sets the default and maximum shortlist length. Defaults: 5 and 50.
func WithTopK(defaultTopK, maxTopK int) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultTopK = defaultTopK
		c.maxTopK = maxTopK
	})
}

// WithCandidateLimit bounds the number of vendors loaded per category. Default: 200.
func WithCandidateLimit(limit int) Option {
	return optionFunc(func(c *clientConfig) {
		c.candidateLimit = limit
	})
}

// WithVectorDimensions sets the description embedding dimension.
// Defaults to 1536 (text-embedding-3-small).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithHNSW configures HNSW index parameters (M and EF construction).
func WithHNSW(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithMaxBatchSize sets the maximum number of vendors per Upsert call.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithRankWorkers sizes the scoring worker pool. Default: 8.
func WithRankWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.rankWorkers = n
	})
}

// WithLogger enables structured logging for SDK operations and the sourcing pipeline.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
