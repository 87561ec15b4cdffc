package vendors

import (
	"context"
	"testing"

	"github.com/kailas-cloud/vendorscout/internal/db"
	"github.com/kailas-cloud/vendorscout/internal/domain/filter"
	domvendor "github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn      func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn        func(ctx context.Context, key string) (map[string]string, error)
	hmgetMultiFn     func(ctx context.Context, keys []string, fields ...string) ([]map[string]string, error)
	delFn            func(ctx context.Context, key string) error
	createIndexFn    func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn    func(ctx context.Context, name string) (bool, error)
	searchFilteredFn func(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error)
	searchCountFn    func(ctx context.Context, index string, filters filter.Expression) (int, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) HMGetMulti(ctx context.Context, keys []string, fields ...string) ([]map[string]string, error) {
	if m.hmgetMultiFn != nil {
		return m.hmgetMultiFn(ctx, keys, fields...)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SearchFiltered(ctx context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
	if m.searchFilteredFn != nil {
		return m.searchFilteredFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index string, filters filter.Expression) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, filters)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, HNSWConfig{M: 16, EFConstruct: 200}), ms
}

func testRecord(t *testing.T, id string, embedding []float32) domvendor.Record {
	t.Helper()
	rec, err := domvendor.New(domvendor.Fields{
		Category:    "venue",
		ID:          id,
		Name:        "Grand Hall",
		Price:       450000,
		PriceMax:    600000,
		Capacity:    250,
		Location:    "Almaty",
		Amenities:   []string{"Parking", "stage"},
		Description: "Ballroom with crystal chandeliers",
	})
	if err != nil {
		t.Fatalf("build record: %v", err)
	}
	if embedding != nil {
		rec = rec.WithEmbedding(embedding)
	}
	return rec
}
