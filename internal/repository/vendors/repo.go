// Package vendors is the Vendor Store: filtered candidate scans, embedding lookups and
// catalog writes over Redis hashes indexed by FT.
package vendors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/vendorscout/internal/db"
	"github.com/kailas-cloud/vendorscout/internal/domain"
	"github.com/kailas-cloud/vendorscout/internal/domain/filter"
	domvendor "github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

// store is the consumer interface for vendor records (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HMGetMulti(ctx context.Context, keys []string, fields ...string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchFiltered(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index string, filters filter.Expression) (int, error)
}

// Repo implements the vendor store consumed by the selector, ranker and catalog usecases.
type Repo struct {
	store store
	hnsw  HNSWConfig
}

// New creates a vendor repository.
func New(s store, hnsw HNSWConfig) *Repo {
	return &Repo{store: s, hnsw: hnsw}
}

// EnsureIndex creates the vendor FT index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context, vectorDim int) error {
	exists, err := r.store.IndexExists(ctx, indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(vectorDim, r.hnsw)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Upsert writes vendor records in one pipelined round-trip. A record without an embedding
// replaces any previously stored one, so a stale description vector never survives.
func (r *Repo) Upsert(ctx context.Context, records []domvendor.Record) error {
	if len(records) == 0 {
		return nil
	}

	items := make([]db.HashSetItem, len(records))
	for i := range records {
		rec := &records[i]
		key := vendorKey(rec.Category(), rec.ID())
		if !rec.HasEmbedding() {
			if err := r.store.Del(ctx, key); err != nil {
				return fmt.Errorf("del %s: %w", key, err)
			}
		}
		items[i] = db.HashSetItem{Key: key, Fields: buildHashFields(rec)}
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset %d vendors: %w", len(items), err)
	}
	return nil
}

// Get returns one vendor record.
func (r *Repo) Get(ctx context.Context, category, id string) (domvendor.Record, error) {
	key := vendorKey(category, id)
	m, err := r.store.HGetAll(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domvendor.Record{}, domain.ErrVendorNotFound
		}
		return domvendor.Record{}, fmt.Errorf("hgetall %s: %w", key, err)
	}
	return parseHashFields(m), nil
}

// QueryByFilters returns at most limit records of the category satisfying every condition
// of expr, cheapest first. Embeddings are included when stored.
func (r *Repo) QueryByFilters(
	ctx context.Context, category string, expr filter.Expression, limit int,
) ([]domvendor.Record, error) {
	scoped, err := scopeToCategory(category, expr)
	if err != nil {
		return nil, err
	}

	res, err := r.store.SearchFiltered(ctx, &db.FilterQuery{
		IndexName:    indexName(),
		Filters:      scoped,
		Limit:        limit,
		ReturnFields: recordFields,
		SortBy:       domvendor.FieldPrice,
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", category, err)
	}
	if res == nil || len(res.Entries) == 0 {
		return nil, nil
	}

	out := make([]domvendor.Record, 0, len(res.Entries))
	for _, e := range res.Entries {
		out = append(out, parseHashFields(e.Fields))
	}
	return out, nil
}

// FetchEmbeddings looks up stored description embeddings. Vendors without one are absent
// from the returned map.
func (r *Repo) FetchEmbeddings(ctx context.Context, category string, ids []string) (map[string][]float32, error) {
	if len(ids) == 0 {
		return map[string][]float32{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = vendorKey(category, id)
	}

	rows, err := r.store.HMGetMulti(ctx, keys, fieldVector)
	if err != nil {
		return nil, fmt.Errorf("hmget embeddings %s: %w", category, err)
	}

	out := make(map[string][]float32, len(ids))
	for i, row := range rows {
		if i >= len(ids) {
			break
		}
		if vec := bytesToVector(row[fieldVector]); vec != nil {
			out[ids[i]] = vec
		}
	}
	return out, nil
}

// Count returns the number of stored vendors in a category.
func (r *Repo) Count(ctx context.Context, category string) (int, error) {
	scoped, err := scopeToCategory(category, filter.Expression{})
	if err != nil {
		return 0, err
	}
	n, err := r.store.SearchCount(ctx, indexName(), scoped)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", category, err)
	}
	return n, nil
}

func scopeToCategory(category string, expr filter.Expression) (filter.Expression, error) {
	cat, err := filter.NewMatch(domvendor.FieldCategory, category)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("scope to category: %w", err)
	}
	conds := make([]filter.Condition, 0, len(expr.Conditions())+1)
	conds = append(conds, cat)
	conds = append(conds, expr.Conditions()...)
	return filter.NewExpression(conds)
}

func keyPrefix() string {
	return domain.KeyPrefix + "vendor:"
}

func vendorKey(category, id string) string {
	return keyPrefix() + strings.ToLower(category) + ":" + id
}

func indexName() string {
	return domain.KeyPrefix + "idx:vendors"
}
