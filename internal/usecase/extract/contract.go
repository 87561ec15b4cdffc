package extract

import (
	"context"

	"github.com/kailas-cloud/vendorscout/internal/domain"
)

// PreferenceExtractor normalizes a client vision into a category preference and its embedding.
type PreferenceExtractor interface {
	ExtractPreferences(ctx context.Context, vision, category string) (domain.PreferenceResult, error)
}
