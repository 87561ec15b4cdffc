package vendorscout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

// Upsert stores vendors and vectorizes their descriptions. Each vendor gets its own
// ItemResult: an invalid vendor fails alone, and a vendor whose description could not be
// embedded is stored anyway with ItemUnembedded. The returned error joins the ItemError
// failures; results are returned either way.
func (c *Client) Upsert(ctx context.Context, items []Vendor) (results []ItemResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("upsert", start, err) }()

	in := make([]vendors.Fields, len(items))
	for i := range items {
		in[i] = toFields(items[i])
	}

	results = fromBatch(c.catalog.Ingest(c.withLogger(ctx), in))
	for _, r := range results {
		if r.Status == ItemError {
			err = errors.Join(err, fmt.Errorf("%s/%s: %w", r.Category, r.ID, r.Err))
		}
	}
	return results, err
}

// Get returns a single vendor.
func (c *Client) Get(ctx context.Context, category, id string) (v Vendor, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get", start, err) }()

	rec, err := c.catalog.Get(c.withLogger(ctx), category, id)
	if err != nil {
		return Vendor{}, fmt.Errorf("get %s/%s: %w", category, id, err)
	}
	return fromRecord(&rec), nil
}
