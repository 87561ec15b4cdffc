package sourcing

import (
	"context"

	"github.com/kailas-cloud/vendorscout/internal/domain/brief"
	domsrc "github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
	"github.com/kailas-cloud/vendorscout/internal/usecase/ranker"
)

// Extractor derives hard constraints and the soft preference for a category.
type Extractor interface {
	Extract(ctx context.Context, b *brief.Brief, category string) (domsrc.FilterSpec, domsrc.PreferenceSpec, error)
}

// Selector narrows the catalog to vendors satisfying every hard constraint.
type Selector interface {
	Select(ctx context.Context, spec domsrc.FilterSpec, category string, limit int) ([]vendors.Record, error)
}

// Ranker scores candidates against the preference.
type Ranker interface {
	Score(ctx context.Context, candidates []vendors.Record, pref domsrc.PreferenceSpec) (ranker.Scores, error)
}
