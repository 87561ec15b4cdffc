package vendors

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/vendorscout/internal/db"
	"github.com/kailas-cloud/vendorscout/internal/domain"
	"github.com/kailas-cloud/vendorscout/internal/domain/filter"
	domvendor "github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

// --- EnsureIndex ---

func TestEnsureIndex_Creates(t *testing.T) {
	repo, ms := newTestRepo(t)

	var created *db.IndexDefinition
	ms.createIndexFn = func(_ context.Context, def *db.IndexDefinition) error {
		created = def
		return nil
	}

	if err := repo.EnsureIndex(context.Background(), 8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected CreateIndex call")
	}
	if created.Name != "vendorscout:idx:vendors" {
		t.Errorf("index name = %q", created.Name)
	}
	if created.Prefixes[0] != "vendorscout:vendor:" {
		t.Errorf("prefix = %q", created.Prefixes[0])
	}
	last := created.Fields[len(created.Fields)-1]
	if last.Type != db.IndexFieldVector || last.Vector.Dim != 8 || last.Vector.M != 16 {
		t.Errorf("vector field = %+v", last)
	}
}

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.indexExistsFn = func(_ context.Context, _ string) (bool, error) { return true, nil }
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error {
		t.Error("CreateIndex must not be called for an existing index")
		return nil
	}

	if err := repo.EnsureIndex(context.Background(), 8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureIndex_RaceIsTolerated(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.createIndexFn = func(_ context.Context, _ *db.IndexDefinition) error { return db.ErrIndexExists }

	if err := repo.EnsureIndex(context.Background(), 8); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- Upsert ---

func TestUpsert_WithEmbedding(t *testing.T) {
	repo, ms := newTestRepo(t)
	rec := testRecord(t, "v1", []float32{0.5, -0.5})

	ms.delFn = func(_ context.Context, _ string) error {
		t.Error("Del must not be called for an embedded record")
		return nil
	}
	var items []db.HashSetItem
	ms.hsetMultiFn = func(_ context.Context, got []db.HashSetItem) error {
		items = got
		return nil
	}

	if err := repo.Upsert(context.Background(), []domvendor.Record{rec}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Key != "vendorscout:vendor:venue:v1" {
		t.Errorf("key = %q", items[0].Key)
	}
	f := items[0].Fields
	if f["price"] != "450000" || f["capacity"] != "250" || f["amenities"] != "parking,stage" {
		t.Errorf("unexpected fields: %v", f)
	}
	if len(f["__vector"]) != 8 {
		t.Errorf("vector bytes = %d, want 8", len(f["__vector"]))
	}
}

func TestUpsert_WithoutEmbeddingClearsOld(t *testing.T) {
	repo, ms := newTestRepo(t)
	rec := testRecord(t, "v2", nil)

	var deleted string
	ms.delFn = func(_ context.Context, key string) error {
		deleted = key
		return nil
	}
	ms.hsetMultiFn = func(_ context.Context, items []db.HashSetItem) error {
		if _, ok := items[0].Fields["__vector"]; ok {
			t.Error("vector field must be omitted")
		}
		return nil
	}

	if err := repo.Upsert(context.Background(), []domvendor.Record{rec}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != "vendorscout:vendor:venue:v2" {
		t.Errorf("deleted = %q", deleted)
	}
}

func TestUpsert_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.hsetMultiFn = func(_ context.Context, _ []db.HashSetItem) error { return errors.New("OOM") }

	if err := repo.Upsert(context.Background(), []domvendor.Record{testRecord(t, "v1", []float32{1})}); err == nil {
		t.Fatal("expected error")
	}
}

// --- Get ---

func TestGet_RoundTrip(t *testing.T) {
	repo, ms := newTestRepo(t)
	rec := testRecord(t, "v1", []float32{0.25, 0.75})
	stored := buildHashFields(&rec)

	ms.hgetAllFn = func(_ context.Context, key string) (map[string]string, error) {
		if key != "vendorscout:vendor:venue:v1" {
			t.Errorf("unexpected key: %s", key)
		}
		return stored, nil
	}

	got, err := repo.Get(context.Background(), "venue", "v1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID() != "v1" || got.Price() != 450000 || got.PriceMax() != 600000 || got.Capacity() != 250 {
		t.Errorf("unexpected record: %+v", got)
	}
	if !got.HasAmenity("parking") || got.Location() != "Almaty" {
		t.Errorf("unexpected tags: %v %q", got.Amenities(), got.Location())
	}
	if emb := got.Embedding(); len(emb) != 2 || emb[1] != 0.75 {
		t.Errorf("embedding = %v", emb)
	}
}

func TestGet_NotFound(t *testing.T) {
	repo, _ := newTestRepo(t)

	_, err := repo.Get(context.Background(), "venue", "missing")
	if !errors.Is(err, domain.ErrVendorNotFound) {
		t.Errorf("expected ErrVendorNotFound, got %v", err)
	}
}

// --- QueryByFilters ---

func TestQueryByFilters_ScopesToCategory(t *testing.T) {
	repo, ms := newTestRepo(t)
	rec := testRecord(t, "v1", []float32{1, 0})

	price, _ := filter.NewRange("price", filter.AtMost(550000))
	expr, _ := filter.NewExpression([]filter.Condition{price})

	ms.searchFilteredFn = func(_ context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
		conds := q.Filters.Conditions()
		if len(conds) != 2 || conds[0].Key() != "category" || conds[0].Match() != "venue" {
			t.Errorf("expected category scope first, got %+v", conds)
		}
		if q.Limit != 200 {
			t.Errorf("limit = %d", q.Limit)
		}
		if q.SortBy != "price" {
			t.Errorf("sort = %q", q.SortBy)
		}
		return &db.SearchResult{
			Total:   1,
			Entries: []db.SearchEntry{{Key: "vendorscout:vendor:venue:v1", Fields: buildHashFields(&rec)}},
		}, nil
	}

	got, err := repo.QueryByFilters(context.Background(), "venue", expr, 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID() != "v1" || !got[0].HasEmbedding() {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestQueryByFilters_Empty(t *testing.T) {
	repo, _ := newTestRepo(t)

	got, err := repo.QueryByFilters(context.Background(), "venue", filter.Expression{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty, got %d", len(got))
	}
}

func TestQueryByFilters_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchFilteredFn = func(_ context.Context, _ *db.FilterQuery) (*db.SearchResult, error) {
		return nil, &db.Error{Op: db.OpSearch, Err: context.DeadlineExceeded}
	}

	_, err := repo.QueryByFilters(context.Background(), "venue", filter.Expression{}, 10)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected wrapped deadline error, got %v", err)
	}
}

// --- FetchEmbeddings ---

func TestFetchEmbeddings(t *testing.T) {
	repo, ms := newTestRepo(t)

	ms.hmgetMultiFn = func(_ context.Context, keys []string, fields ...string) ([]map[string]string, error) {
		if len(fields) != 1 || fields[0] != "__vector" {
			t.Errorf("fields = %v", fields)
		}
		if keys[1] != "vendorscout:vendor:venue:b" {
			t.Errorf("keys = %v", keys)
		}
		return []map[string]string{
			{"__vector": vectorToBytes([]float32{0.1, 0.2})},
			{},
			{"__vector": "bad"},
		}, nil
	}

	got, err := repo.FetchEmbeddings(context.Background(), "venue", []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 embedding, got %d: %v", len(got), got)
	}
	if v := got["a"]; len(v) != 2 || v[1] != 0.2 {
		t.Errorf("a = %v", v)
	}
}

func TestCount(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchCountFn = func(_ context.Context, _ string, f filter.Expression) (int, error) {
		if len(f.Conditions()) != 1 {
			t.Errorf("expected category-only filter, got %+v", f.Conditions())
		}
		return 1200, nil
	}

	n, err := repo.Count(context.Background(), "venue")
	if err != nil || n != 1200 {
		t.Errorf("Count = %d, %v", n, err)
	}
}
