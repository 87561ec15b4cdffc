package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	dombatch "github.com/kailas-cloud/vendorscout/internal/domain/batch"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

// catalogFile is the on-disk catalog layout. Vendors listed under a category inherit it
// unless they set their own.
type catalogFile struct {
	Categories map[string][]catalogVendor `yaml:"categories"`
	Vendors    []catalogVendor            `yaml:"vendors"`
}

type catalogVendor struct {
	Category    string   `yaml:"category"`
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Price       float64  `yaml:"price"`
	PriceMax    float64  `yaml:"price_max"`
	Capacity    int      `yaml:"capacity"`
	Location    string   `yaml:"location"`
	Amenities   []string `yaml:"amenities"`
	Description string   `yaml:"description"`
}

func (v catalogVendor) fields(category string) vendors.Fields {
	if v.Category != "" {
		category = v.Category
	}
	return vendors.Fields{
		Category:    category,
		ID:          v.ID,
		Name:        v.Name,
		Price:       v.Price,
		PriceMax:    v.PriceMax,
		Capacity:    v.Capacity,
		Location:    v.Location,
		Amenities:   v.Amenities,
		Description: v.Description,
	}
}

func loadCatalogFile(path string) ([]vendors.Fields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return parseCatalog(data)
}

// parseCatalog flattens a catalog into vendor fields: top-level vendors first, then the
// grouped vendors by category name.
func parseCatalog(data []byte) ([]vendors.Fields, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	items := make([]vendors.Fields, 0, len(f.Vendors))
	for _, v := range f.Vendors {
		items = append(items, v.fields(""))
	}
	for _, category := range slices.Sorted(maps.Keys(f.Categories)) {
		for _, v := range f.Categories[category] {
			items = append(items, v.fields(category))
		}
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: catalog has no vendors", domain.ErrInvalidVendor)
	}
	return items, nil
}

// validateCatalog returns an error result for every vendor that would be rejected on ingest.
func validateCatalog(items []vendors.Fields) []dombatch.Result {
	var invalid []dombatch.Result
	for _, item := range items {
		if _, err := vendors.New(item); err != nil {
			invalid = append(invalid, dombatch.NewError(item.Category, item.ID, err))
		}
	}
	return invalid
}

type ingester interface {
	Ingest(ctx context.Context, items []vendors.Fields) []dombatch.Result
}

// ingest feeds items to svc in batches of at most batchSize, stopping early on cancellation.
func ingest(ctx context.Context, svc ingester, items []vendors.Fields, batchSize int) []dombatch.Result {
	results := make([]dombatch.Result, 0, len(items))
	for offset := 0; offset < len(items); offset += batchSize {
		if ctx.Err() != nil {
			break
		}
		end := min(offset+batchSize, len(items))
		results = append(results, svc.Ingest(ctx, items[offset:end])...)
	}
	return results
}

type counter interface {
	Count(ctx context.Context, category string) (int, error)
}

// printStoredCounts reports how many vendors each category of the catalog now holds in
// the store, including vendors from earlier runs.
func printStoredCounts(ctx context.Context, w io.Writer, c counter, items []vendors.Fields) error {
	seen := make(map[string]struct{})
	for _, item := range items {
		if cat := strings.ToLower(strings.TrimSpace(item.Category)); cat != "" {
			seen[cat] = struct{}{}
		}
	}

	parts := make([]string, 0, len(seen))
	for _, cat := range slices.Sorted(maps.Keys(seen)) {
		n, err := c.Count(ctx, cat)
		if err != nil {
			return fmt.Errorf("count %s: %w", cat, err)
		}
		parts = append(parts, fmt.Sprintf("%s=%d", cat, n))
	}
	fmt.Fprintf(w, "stored: %s\n", strings.Join(parts, " "))
	return nil
}
