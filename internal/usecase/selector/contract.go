package selector

import (
	"context"

	"github.com/kailas-cloud/vendorscout/internal/domain/filter"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

// Repository runs conjunctive filtered scans over one category of the vendor store.
type Repository interface {
	QueryByFilters(ctx context.Context, category string, expr filter.Expression, limit int) ([]vendors.Record, error)
}
