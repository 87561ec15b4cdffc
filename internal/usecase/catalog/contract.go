package catalog

import (
	"context"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

// Repository persists vendor records and the vendor index.
type Repository interface {
	EnsureIndex(ctx context.Context, vectorDim int) error
	Upsert(ctx context.Context, records []vendors.Record) error
	Get(ctx context.Context, category, id string) (vendors.Record, error)
}

// Embedder vectorizes vendor descriptions in batch.
type Embedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
