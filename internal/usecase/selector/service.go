// Package selector narrows the vendor catalog to the candidate set that satisfies every
// hard constraint of a FilterSpec.
package selector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	"github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
	"github.com/kailas-cloud/vendorscout/internal/logger"
)

// DefaultCandidateLimit bounds the store scan when the caller passes no limit.
const DefaultCandidateLimit = 200

// Config configures the selector.
type Config struct {
	DefaultLimit int
	Timeout      time.Duration
}

// Service is the candidate selector.
type Service struct {
	repo         Repository
	defaultLimit int
	timeout      time.Duration
}

// New creates a selector.
func New(repo Repository, cfg Config) *Service {
	limit := cfg.DefaultLimit
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}
	return &Service{repo: repo, defaultLimit: limit, timeout: cfg.Timeout}
}

// Select returns the vendors of category that satisfy every constraint of spec, at most
// limit of them (the default limit when limit <= 0).
//
// No constraint is ever relaxed. Records returned by the store are checked again against
// spec, so an index that drifted from the predicates cannot leak a violating vendor.
// An empty result fails with domain.ErrEmptyCandidateSet; store failures and timeouts fail
// with domain.ErrStoreUnavailable.
func (s *Service) Select(
	ctx context.Context, spec sourcing.FilterSpec, category string, limit int,
) ([]vendors.Record, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}

	expr, err := spec.Expression()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidBrief, err)
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	records, err := s.repo.QueryByFilters(callCtx, category, expr, limit)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.FromContext(ctx).Error("Vendor store query failed",
			zap.String("category", category), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}

	out := make([]vendors.Record, 0, len(records))
	for i := range records {
		if spec.Matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	if dropped := len(records) - len(out); dropped > 0 {
		logger.FromContext(ctx).Warn("Store returned vendors violating hard constraints",
			zap.String("category", category), zap.Int("dropped", dropped))
	}

	if len(out) == 0 {
		return nil, domain.ErrEmptyCandidateSet
	}
	return out, nil
}
