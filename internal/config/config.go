package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/vendorscout/internal/domain/weights"
)

// Config holds the vendorscout configuration.
type Config struct {
	HTTP          HTTPConfig                `yaml:"http"`
	Database      DatabaseConfig            `yaml:"database"`
	Understanding UnderstandingConfig       `yaml:"understanding"`
	Sourcing      SourcingConfig            `yaml:"sourcing"`
	Timeouts      TimeoutsConfig            `yaml:"timeouts"`
	Categories    map[string]CategoryConfig `yaml:"categories"`
	Auth          AuthConfig                `yaml:"auth"`
	Index         IndexConfig               `yaml:"index"`
	Logging       LoggingConfig             `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds vendor store connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// IndexConfig holds vendor index settings.
type IndexConfig struct {
	HNSWM           int `yaml:"hnsw_m"`
	HNSWEFConstruct int `yaml:"hnsw_ef_construction"`
	MaxBatchSize    int `yaml:"max_batch_size"`
}

// UnderstandingConfig holds the text-understanding provider settings.
type UnderstandingConfig struct {
	Provider               string        `yaml:"provider"` // metrics and breaker label
	APIKey                 string        `yaml:"api_key"`
	BaseURL                string        `yaml:"base_url"`
	ChatModel              string        `yaml:"chat_model"`
	EmbeddingModel         string        `yaml:"embedding_model"`
	Dimensions             int           `yaml:"dimensions"`
	User                   string        `yaml:"user"`
	DescriptionInstruction string        `yaml:"description_instruction"`
	PreferenceInstruction  string        `yaml:"preference_instruction"`
	CacheTTLHours          int           `yaml:"cache_ttl_hours"` // 0 = keep forever
	Breaker                BreakerConfig `yaml:"breaker"`
}

// Enabled reports whether a provider is configured at all. Without one every request is
// sourced in degraded mode and vendors are ingested without embeddings.
func (u UnderstandingConfig) Enabled() bool {
	return u.APIKey != "" || u.BaseURL != ""
}

// BreakerConfig holds circuit breaker settings for the provider.
type BreakerConfig struct {
	MaxRequests      uint32 `yaml:"max_requests"`
	IntervalSec      int    `yaml:"interval_sec"`
	TimeoutSec       int    `yaml:"timeout_sec"`
	FailureThreshold uint32 `yaml:"failure_threshold"`
}

// SourcingConfig holds pipeline settings.
type SourcingConfig struct {
	BudgetTolerance float64 `yaml:"budget_tolerance"`
	CandidateLimit  int     `yaml:"candidate_limit"`
	DefaultTopK     int     `yaml:"default_top_k"`
	MaxTopK         int     `yaml:"max_top_k"`
	RankWorkers     int     `yaml:"rank_workers"`
	RankChunkSize   int     `yaml:"rank_chunk_size"`
}

// TimeoutsConfig holds per-stage timeouts in milliseconds.
type TimeoutsConfig struct {
	ExtractMs int `yaml:"extract_ms"`
	SelectMs  int `yaml:"select_ms"`
	RankMs    int `yaml:"rank_ms"`
}

// Extract returns the extraction timeout.
func (t TimeoutsConfig) Extract() time.Duration { return time.Duration(t.ExtractMs) * time.Millisecond }

// Select returns the selection timeout.
func (t TimeoutsConfig) Select() time.Duration { return time.Duration(t.SelectMs) * time.Millisecond }

// Rank returns the embedding lookup timeout of the ranking stage.
func (t TimeoutsConfig) Rank() time.Duration { return time.Duration(t.RankMs) * time.Millisecond }

// CategoryConfig holds one service category.
type CategoryConfig struct {
	PriceWeight      float64 `yaml:"price_weight"`
	PreferenceWeight float64 `yaml:"preference_weight"`
	CapacitySpace    string  `yaml:"capacity_space"` // empty = no capacity constraint
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML configuration document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 16
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 200
	}
	if c.Index.MaxBatchSize <= 0 {
		c.Index.MaxBatchSize = 500
	}

	u := &c.Understanding
	if u.Provider == "" {
		u.Provider = "openai"
	}
	if u.ChatModel == "" {
		u.ChatModel = "gpt-4o-mini"
	}
	if u.EmbeddingModel == "" {
		u.EmbeddingModel = "text-embedding-3-small"
	}
	if u.Dimensions <= 0 {
		u.Dimensions = 1536
	}
	if u.Breaker.MaxRequests == 0 {
		u.Breaker.MaxRequests = 1
	}
	if u.Breaker.IntervalSec <= 0 {
		u.Breaker.IntervalSec = 60
	}
	if u.Breaker.TimeoutSec <= 0 {
		u.Breaker.TimeoutSec = 30
	}
	if u.Breaker.FailureThreshold == 0 {
		u.Breaker.FailureThreshold = 5
	}

	s := &c.Sourcing
	if s.BudgetTolerance == 0 {
		s.BudgetTolerance = 1.10
	}
	if s.CandidateLimit <= 0 {
		s.CandidateLimit = 200
	}
	if s.DefaultTopK <= 0 {
		s.DefaultTopK = 5
	}
	if s.MaxTopK <= 0 {
		s.MaxTopK = 50
	}
	if s.RankWorkers <= 0 {
		s.RankWorkers = 8
	}
	if s.RankChunkSize <= 0 {
		s.RankChunkSize = 32
	}

	if c.Timeouts.ExtractMs <= 0 {
		c.Timeouts.ExtractMs = 3000
	}
	if c.Timeouts.SelectMs <= 0 {
		c.Timeouts.SelectMs = 2000
	}
	if c.Timeouts.RankMs <= 0 {
		c.Timeouts.RankMs = 1000
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	if c.Sourcing.BudgetTolerance < 1 || math.IsInf(c.Sourcing.BudgetTolerance, 0) {
		return fmt.Errorf("sourcing.budget_tolerance must be >= 1, got %g", c.Sourcing.BudgetTolerance)
	}
	if c.Sourcing.DefaultTopK > c.Sourcing.MaxTopK {
		return fmt.Errorf("sourcing.default_top_k (%d) exceeds sourcing.max_top_k (%d)",
			c.Sourcing.DefaultTopK, c.Sourcing.MaxTopK)
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	if _, err := c.Weights(); err != nil {
		return fmt.Errorf("categories: %w", err)
	}
	return nil
}

// Weights builds the immutable category weight set.
func (c *Config) Weights() (weights.Set, error) {
	profiles := make(map[string]weights.Profile, len(c.Categories))
	for name, cat := range c.Categories {
		p, err := weights.NewProfile(cat.PriceWeight, cat.PreferenceWeight)
		if err != nil {
			return weights.Set{}, fmt.Errorf("%s: %w", name, err)
		}
		profiles[name] = p
	}
	return weights.NewSet(profiles)
}

// CapacitySpaces maps every category to its controlling guest-count space.
func (c *Config) CapacitySpaces() map[string]string {
	out := make(map[string]string, len(c.Categories))
	for name, cat := range c.Categories {
		out[name] = cat.CapacitySpace
	}
	return out
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
