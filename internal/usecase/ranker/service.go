// Package ranker scores candidate vendors by semantic similarity between their description
// embedding and the client preference embedding.
package ranker

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
	"github.com/kailas-cloud/vendorscout/internal/logger"
)

// Defaults for the scoring pool.
const (
	DefaultWorkers   = 8
	DefaultChunkSize = 32
)

// Config configures the ranker.
type Config struct {
	Workers   int
	ChunkSize int
	// Timeout bounds the embedding lookup for candidates loaded without vectors.
	Timeout time.Duration
}

// Scores holds the preference score of every candidate of one ranking pass.
type Scores struct {
	ByID map[string]float64
	// MissingEmbeddings lists, sorted, the candidates scored neutrally because their
	// embedding was absent or incomparable.
	MissingEmbeddings []string
}

// For returns the preference score of a vendor, NeutralScore when it was not scored.
func (s Scores) For(id string) float64 {
	if v, ok := s.ByID[id]; ok {
		return v
	}
	return sourcing.NeutralScore
}

// Service is the semantic ranker. Scoring runs on a shared worker pool.
type Service struct {
	fetcher EmbeddingFetcher
	pool    *ants.Pool
	chunk   int
	timeout time.Duration
}

// New creates a ranker with its own worker pool. Call Release when done.
func New(fetcher EmbeddingFetcher, cfg Config) (*Service, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	chunk := cfg.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create rank pool: %w", err)
	}
	return &Service{fetcher: fetcher, pool: pool, chunk: chunk, timeout: cfg.Timeout}, nil
}

// Release stops the worker pool.
func (s *Service) Release() {
	s.pool.Release()
}

// Score computes clamp((cos+1)/2, 0, 1) for every candidate against pref.
//
// An empty preference (degraded extraction) gives every candidate NeutralScore. A candidate
// whose embedding is missing, even after one lookup in the store, or has a different
// dimension than pref is scored NeutralScore and listed in MissingEmbeddings. Only
// cancellation of ctx fails the pass.
func (s *Service) Score(ctx context.Context, candidates []vendors.Record, pref sourcing.PreferenceSpec) (Scores, error) {
	out := Scores{ByID: make(map[string]float64, len(candidates))}
	if pref.IsEmpty() {
		for i := range candidates {
			out.ByID[candidates[i].ID()] = sourcing.NeutralScore
		}
		return out, nil
	}

	vectors := s.resolveEmbeddings(ctx, candidates)
	if err := ctx.Err(); err != nil {
		return Scores{}, err
	}

	scores := make([]float64, len(candidates))
	ok := make([]bool, len(candidates))
	target := pref.Vector()

	var wg sync.WaitGroup
	for start := 0; start < len(candidates); start += s.chunk {
		end := min(start+s.chunk, len(candidates))
		task := func() {
			defer wg.Done()
			for i := start; i < end; i++ {
				if cos, comparable := cosine(vectors[i], target); comparable {
					scores[i], ok[i] = rescale(cos), true
				}
			}
		}
		wg.Add(1)
		if err := s.pool.Submit(task); err != nil {
			// Pool closed or overloaded: score this chunk inline.
			task()
		}
	}
	wg.Wait()

	for i := range candidates {
		id := candidates[i].ID()
		if ok[i] {
			out.ByID[id] = scores[i]
			continue
		}
		out.ByID[id] = sourcing.NeutralScore
		out.MissingEmbeddings = append(out.MissingEmbeddings, id)
	}
	slices.Sort(out.MissingEmbeddings)
	return out, nil
}

// resolveEmbeddings returns the embedding of every candidate, looking up the ones loaded
// without a vector in a single store round trip. Lookup failures leave them nil.
func (s *Service) resolveEmbeddings(ctx context.Context, candidates []vendors.Record) [][]float32 {
	vectors := make([][]float32, len(candidates))
	var missing []string
	for i := range candidates {
		if candidates[i].HasEmbedding() {
			vectors[i] = candidates[i].Embedding()
			continue
		}
		missing = append(missing, candidates[i].ID())
	}
	if len(missing) == 0 || s.fetcher == nil {
		return vectors
	}

	fetchCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	category := candidates[0].Category()
	found, err := s.fetcher.FetchEmbeddings(fetchCtx, category, missing)
	if err != nil {
		logger.FromContext(ctx).Warn("Embedding lookup failed, scoring neutrally",
			zap.String("category", category), zap.Int("vendors", len(missing)), zap.Error(err))
		return vectors
	}
	for i := range candidates {
		if vectors[i] == nil {
			vectors[i] = found[candidates[i].ID()]
		}
	}
	return vectors
}
