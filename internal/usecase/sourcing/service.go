// Package sourcing orchestrates one sourcing request per category:
// extracting → selecting → ranking → composing → done.
package sourcing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	"github.com/kailas-cloud/vendorscout/internal/domain/brief"
	domsrc "github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
	"github.com/kailas-cloud/vendorscout/internal/domain/weights"
	"github.com/kailas-cloud/vendorscout/internal/logger"
	"github.com/kailas-cloud/vendorscout/internal/metrics"
	"github.com/kailas-cloud/vendorscout/internal/usecase/extract"
	"github.com/kailas-cloud/vendorscout/internal/usecase/scorer"
)

// Defaults for result sizing.
const (
	DefaultTopK    = 5
	DefaultMaxTopK = 50
)

// NoMatchReason is the caller-facing reason of an empty shortlist.
const NoMatchReason = "no vendors matched hard constraints"

// Terminal outcomes reported to metrics.
const (
	outcomeDone    = "done"
	outcomeNoMatch = "no_match"
	outcomeFailed  = "failed"
)

// Config configures the orchestrator.
type Config struct {
	DefaultTopK int
	MaxTopK     int
	// CandidateLimit bounds the candidate set; zero leaves it to the selector.
	CandidateLimit int
}

// Service is the sourcing orchestrator.
type Service struct {
	extractor Extractor
	selector  Selector
	ranker    Ranker
	weights   weights.Set
	topK      int
	maxTopK   int
	limit     int
}

// New creates the orchestrator. The weight set is read-only for the life of the service.
func New(ex Extractor, sel Selector, rk Ranker, ws weights.Set, cfg Config) *Service {
	topK := cfg.DefaultTopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	maxTopK := cfg.MaxTopK
	if maxTopK <= 0 {
		maxTopK = DefaultMaxTopK
	}
	return &Service{
		extractor: ex,
		selector:  sel,
		ranker:    rk,
		weights:   ws,
		topK:      min(topK, maxTopK),
		maxTopK:   maxTopK,
		limit:     cfg.CandidateLimit,
	}
}

// Categories returns the configured categories.
func (s *Service) Categories() []string { return s.weights.Categories() }

// pass carries the per-request state of one category pipeline.
type pass struct {
	ctx      context.Context
	category string
	stages   []domsrc.StageTiming
}

// enter checks cancellation before a stage starts. Stages are never interrupted midway.
func (p *pass) enter(stage domain.Stage) error {
	if err := p.ctx.Err(); err != nil {
		return err
	}
	logger.FromContext(p.ctx).Debug("Sourcing stage started", zap.String("stage", string(stage)))
	return nil
}

func (p *pass) done(stage domain.Stage, start time.Time) {
	d := time.Since(start)
	p.stages = append(p.stages, domsrc.StageTiming{Stage: stage, Duration: d})
	metrics.StageDuration.WithLabelValues(p.category, string(stage)).Observe(d.Seconds())
}

// Source ranks the vendors of one category for a brief and returns at most topK of them.
//
// An empty candidate set is a successful no_match result. Degraded extraction and missing
// vendor embeddings are reported in the result metadata. Only an invalid brief, an
// unavailable store and cancellation are returned as errors, wrapped in *domain.StageError.
func (s *Service) Source(ctx context.Context, b *brief.Brief, category string, topK int) (domsrc.Result, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	profile, ok := s.weights.Get(category)
	if !ok {
		return domsrc.Result{}, domain.NewStageError(domain.StageExtracting,
			fmt.Errorf("%w: %w: %q", domain.ErrInvalidBrief, domain.ErrUnknownCategory, category))
	}
	topK = s.clampTopK(topK)

	requestID := uuid.NewString()
	ctx = logger.With(ctx, zap.String("request_id", requestID), zap.String("category", category))
	log := logger.FromContext(ctx)
	p := &pass{ctx: ctx, category: category}

	result := domsrc.Result{Category: category, Metadata: domsrc.Metadata{RequestID: requestID}}
	fail := func(stage domain.Stage, err error) (domsrc.Result, error) {
		metrics.SourcingOutcomesTotal.WithLabelValues(category, outcomeFailed).Inc()
		log.Debug("Sourcing failed", zap.String("stage", string(stage)), zap.Error(err))
		return domsrc.Result{}, domain.NewStageError(stage, err)
	}

	// extracting
	if err := p.enter(domain.StageExtracting); err != nil {
		return fail(domain.StageExtracting, err)
	}
	start := time.Now()
	spec, pref, err := s.extractor.Extract(ctx, b, category)
	p.done(domain.StageExtracting, start)
	if err != nil {
		var deg *extract.DegradedError
		if !errors.Is(err, domain.ErrExtractionDegraded) {
			return fail(domain.StageExtracting, err)
		}
		reason := "unknown"
		if errors.As(err, &deg) {
			reason = deg.Reason
		}
		result.Metadata.Degraded = true
		result.Metadata.DegradedReason = reason
		metrics.DegradedTotal.WithLabelValues(category, reason).Inc()
		log.Warn("Sourcing in degraded mode", zap.String("reason", reason), zap.Error(err))
	}
	result.Metadata.Preference = pref.Text()

	// selecting
	if err = p.enter(domain.StageSelecting); err != nil {
		return fail(domain.StageSelecting, err)
	}
	start = time.Now()
	candidates, err := s.selector.Select(ctx, spec, category, s.limit)
	p.done(domain.StageSelecting, start)
	if errors.Is(err, domain.ErrEmptyCandidateSet) {
		metrics.CandidateSetSize.WithLabelValues(category).Observe(0)
		metrics.SourcingOutcomesTotal.WithLabelValues(category, outcomeNoMatch).Inc()
		log.Info("No vendors matched hard constraints")
		result.Status = domsrc.StatusNoMatch
		result.Reason = NoMatchReason
		result.Candidates = []domsrc.ScoredCandidate{}
		result.Metadata.Stages = p.stages
		return result, nil
	}
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			log.Error("Candidate selection failed", zap.Error(err))
		}
		return fail(domain.StageSelecting, err)
	}
	metrics.CandidateSetSize.WithLabelValues(category).Observe(float64(len(candidates)))
	result.Metadata.CandidateCount = len(candidates)

	// ranking
	if err = p.enter(domain.StageRanking); err != nil {
		return fail(domain.StageRanking, err)
	}
	start = time.Now()
	scores, err := s.ranker.Score(ctx, candidates, pref)
	p.done(domain.StageRanking, start)
	if err != nil {
		return fail(domain.StageRanking, err)
	}
	if n := len(scores.MissingEmbeddings); n > 0 {
		metrics.MissingEmbeddingsTotal.WithLabelValues(category).Add(float64(n))
		log.Warn("Candidates without embeddings scored neutrally",
			zap.Int("count", n), zap.Strings("vendor_ids", scores.MissingEmbeddings))
		result.Metadata.MissingEmbeddings = n
		result.Metadata.MissingVendorIDs = scores.MissingEmbeddings
	}

	// composing
	if err = p.enter(domain.StageComposing); err != nil {
		return fail(domain.StageComposing, err)
	}
	start = time.Now()
	result.Candidates = compose(candidates, scores.For, spec.BudgetCeiling(), profile, topK)
	p.done(domain.StageComposing, start)

	result.Status = domsrc.StatusDone
	result.Metadata.Stages = p.stages
	metrics.SourcingOutcomesTotal.WithLabelValues(category, outcomeDone).Inc()
	log.Debug("Sourcing done",
		zap.String("stage", string(domain.StageDone)),
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(result.Candidates)),
	)
	return result, nil
}

func compose(
	candidates []vendors.Record, prefScore func(id string) float64,
	ceiling float64, profile weights.Profile, topK int,
) []domsrc.ScoredCandidate {
	scored := make([]domsrc.ScoredCandidate, 0, len(candidates))
	for _, v := range candidates {
		scored = append(scored, scorer.Compose(v, scorer.PriceNorm(v.Price(), ceiling), prefScore(v.ID()), profile))
	}
	scorer.Rank(scored)
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored
}

func (s *Service) clampTopK(topK int) int {
	if topK <= 0 {
		return s.topK
	}
	return min(topK, s.maxTopK)
}
