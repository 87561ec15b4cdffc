// Package catalog ingests vendor records: validation, description embedding and storage.
package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	dombatch "github.com/kailas-cloud/vendorscout/internal/domain/batch"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
	"github.com/kailas-cloud/vendorscout/internal/logger"
)

// MaxBatchSize is the maximum number of vendors per ingestion request.
const MaxBatchSize = 500

// Service handles vendor ingestion with per-item outcome reporting.
type Service struct {
	repo         Repository
	embed        Embedder
	dim          int
	maxBatchSize int
}

// New creates a catalog service. dim is the expected description embedding dimension.
func New(repo Repository, embed Embedder, dim int) *Service {
	return &Service{repo: repo, embed: embed, dim: dim, maxBatchSize: MaxBatchSize}
}

// WithMaxBatchSize configures the maximum batch size.
func (s *Service) WithMaxBatchSize(size int) *Service {
	if size > 0 {
		s.maxBatchSize = size
	}
	return s
}

// EnsureIndex creates the vendor index when it does not exist.
func (s *Service) EnsureIndex(ctx context.Context) error {
	if err := s.repo.EnsureIndex(ctx, s.dim); err != nil {
		return fmt.Errorf("%w: ensure index: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Get returns one vendor.
func (s *Service) Get(ctx context.Context, category, id string) (vendors.Record, error) {
	rec, err := s.repo.Get(ctx, category, id)
	if err != nil {
		return vendors.Record{}, fmt.Errorf("get vendor: %w", err)
	}
	return rec, nil
}

// Ingest validates, embeds and stores vendors, returning one result per input in order.
//
// A vendor whose description cannot be embedded is still stored, without an embedding, and
// reported as unembedded: it stays eligible for sourcing with the neutral preference score.
func (s *Service) Ingest(ctx context.Context, items []vendors.Fields) []dombatch.Result {
	results := make([]dombatch.Result, len(items))

	if len(items) > s.maxBatchSize {
		for i, item := range items {
			results[i] = dombatch.NewError(item.Category, item.ID,
				fmt.Errorf("%w: batch size exceeds %d", domain.ErrInvalidVendor, s.maxBatchSize))
		}
		return results
	}

	valid := make([]vendors.Record, 0, len(items))
	validIdx := make([]int, 0, len(items))
	for i, item := range items {
		rec, err := vendors.New(item)
		if err != nil {
			results[i] = dombatch.NewError(item.Category, item.ID, fmt.Errorf("%w: %w", domain.ErrInvalidVendor, err))
			continue
		}
		valid = append(valid, rec)
		validIdx = append(validIdx, i)
	}
	if len(valid) == 0 {
		return results
	}

	embedErrs := s.vectorize(ctx, valid)

	if err := s.repo.Upsert(ctx, valid); err != nil {
		for _, i := range validIdx {
			results[i] = dombatch.NewError(items[i].Category, items[i].ID,
				fmt.Errorf("%w: upsert: %w", domain.ErrStoreUnavailable, err))
		}
		return results
	}

	for j, i := range validIdx {
		rec := &valid[j]
		if embedErrs[j] != nil {
			results[i] = dombatch.NewUnembedded(rec.Category(), rec.ID(), embedErrs[j])
			continue
		}
		results[i] = dombatch.NewOK(rec.Category(), rec.ID())
	}

	summary := dombatch.Summary(results)
	logger.FromContext(ctx).Info("Vendors ingested",
		zap.Int("ok", summary[dombatch.StatusOK]),
		zap.Int("unembedded", summary[dombatch.StatusUnembedded]),
		zap.Int("failed", summary[dombatch.StatusError]),
	)
	return results
}

// vectorize embeds every description in one batch and attaches the vectors in place.
// It returns the per-record embedding failure, nil where the record was embedded.
func (s *Service) vectorize(ctx context.Context, recs []vendors.Record) []error {
	errs := make([]error, len(recs))

	texts := make([]string, len(recs))
	for i := range recs {
		texts[i] = recs[i].Description()
	}

	res, err := s.embed.BatchEmbed(ctx, texts)
	if err == nil && len(res.Embeddings) != len(recs) {
		err = fmt.Errorf("got %d embeddings for %d descriptions", len(res.Embeddings), len(recs))
	}
	if err != nil {
		logger.FromContext(ctx).Warn("Description embedding failed, storing vendors without embeddings",
			zap.Int("vendors", len(recs)), zap.Error(err))
		cause := fmt.Errorf("%w: %w", domain.ErrMissingEmbedding, err)
		for i := range errs {
			errs[i] = cause
		}
		return errs
	}

	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	for i, emb := range res.Embeddings {
		switch {
		case len(emb) == 0:
			errs[i] = fmt.Errorf("%w: empty embedding", domain.ErrMissingEmbedding)
		case s.dim > 0 && len(emb) != s.dim:
			errs[i] = fmt.Errorf("%w: %w: got %d, want %d",
				domain.ErrMissingEmbedding, domain.ErrVectorDimMismatch, len(emb), s.dim)
		default:
			recs[i] = recs[i].WithEmbedding(emb)
		}
	}
	return errs
}
