package redis

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/vendorscout/internal/db"
	"github.com/kailas-cloud/vendorscout/internal/domain/filter"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestIsRedisErr(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "idx")).
		Return(mock.Result(mock.RedisError("Unknown Index Name")))

	err := NewStoreForTest(c).do(context.Background(), c.B().Arbitrary("FT.INFO").Args("idx").Build()).Error()
	if !isRedisErr(err, "unknown index name") {
		t.Errorf("expected case-insensitive match for %v", err)
	}
	if isRedisErr(err, "index already exists") {
		t.Error("unexpected match")
	}
	if isRedisErr(context.DeadlineExceeded, "deadline") {
		t.Error("client-side errors are not server replies")
	}
}

func TestNewStore_RequiresAddress(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error without addresses")
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(errors.New("connection refused"))).
		AnyTimes()

	err := NewStoreForTest(c).WaitForReady(context.Background(), 120*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("expected last ping error in %v", err)
	}
}

// --- hash.go tests ---

func TestHSetMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.Result(mock.RedisInt64(2)),
		})

	s := NewStoreForTest(c)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "v:venue:a", Fields: map[string]string{"price": "100"}},
		{Key: "v:venue:b", Fields: map[string]string{"price": "200"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHSetMulti_PartialError(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisInt64(2)),
			mock.ErrorResult(errors.New("OOM")),
		})

	s := NewStoreForTest(c)
	err := s.HSetMulti(context.Background(), []db.HashSetItem{
		{Key: "k1", Fields: map[string]string{"f": "v"}},
		{Key: "k2", Fields: map[string]string{"f": "v"}},
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "k2") {
		t.Errorf("error should name failing key: %v", err)
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestHSetMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil) // client not called
	if err := s.HSetMulti(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestHGetAll_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "mykey")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{
			"name":  mock.RedisString("Grand Hall"),
			"price": mock.RedisString("450000"),
		})))

	s := NewStoreForTest(c)
	m, err := s.HGetAll(context.Background(), "mykey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m["name"] != "Grand Hall" || m["price"] != "450000" {
		t.Errorf("unexpected map: %v", m)
	}
}

func TestHGetAll_Missing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "nokey")).
		Return(mock.Result(mock.RedisMap(map[string]rueidis.RedisMessage{})))

	s := NewStoreForTest(c)
	_, err := s.HGetAll(context.Background(), "nokey")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestHGetAll_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("HGETALL", "mykey")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.HGetAll(context.Background(), "mykey")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, db.ErrKeyNotFound) {
		t.Error("network error must not map to ErrKeyNotFound")
	}
}

func TestHMGetMulti_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{
			mock.Result(mock.RedisArray(mock.RedisString("vec-a"))),
			mock.Result(mock.RedisArray(mock.RedisNil())),
		})

	s := NewStoreForTest(c)
	out, err := s.HMGetMulti(context.Background(), []string{"k1", "k2"}, "__vector")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0]["__vector"] != "vec-a" {
		t.Errorf("k1 = %v", out[0])
	}
	if _, ok := out[1]["__vector"]; ok {
		t.Errorf("nil field should be omitted, got %v", out[1])
	}
}

func TestHMGetMulti_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		DoMulti(gomock.Any(), gomock.Any()).
		Return([]rueidis.RedisResult{mock.ErrorResult(context.DeadlineExceeded)})

	s := NewStoreForTest(c)
	_, err := s.HMGetMulti(context.Background(), []string{"k1"}, "__vector")
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestHMGetMulti_NoFields(t *testing.T) {
	s := NewStoreForTest(nil)
	if _, err := s.HMGetMulti(context.Background(), []string{"k1"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestHMGetMulti_Empty(t *testing.T) {
	s := NewStoreForTest(nil)
	out, err := s.HMGetMulti(context.Background(), nil, "__vector")
	if err != nil || out != nil {
		t.Fatalf("expected nil, nil; got %v, %v", out, err)
	}
}

func TestDel_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "mykey")).
		Return(mock.Result(mock.RedisInt64(1)))

	s := NewStoreForTest(c)
	if err := s.Del(context.Background(), "mykey"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- kv.go tests ---

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.Result(mock.RedisBlobString("value")))

	s := NewStoreForTest(c)
	data, err := s.Get(context.Background(), "mykey")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "value" {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "mykey")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "mykey")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestSetWithTTL_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SET" && cmd[1] == "mykey" && cmd[3] == "EX"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.SetWithTTL(context.Background(), "mykey", []byte("v"), 3600e9); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- index.go tests ---

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			got = cmd
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	idx, err := db.NewIndex("test:idx").
		Prefix("test:").
		Tag("location", "|").
		SortableNumeric("price").
		Vector("__vector", db.VectorOptions{Dim: 4, Distance: db.DistanceCosine, M: 16, EFConstruct: 200}).
		Build()
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	if err := s.CreateIndex(context.Background(), idx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	joined := strings.Join(got, " ")
	for _, want := range []string{
		"FT.CREATE test:idx ON HASH PREFIX 1 test: SCHEMA",
		"location TAG SEPARATOR |",
		"price NUMERIC SORTABLE",
		"__vector VECTOR HNSW 10 TYPE FLOAT32 DIM 4 DISTANCE_METRIC COSINE M 16 EF_CONSTRUCTION 200",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("FT.CREATE args missing %q: %s", want, joined)
		}
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE"
		})).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	idx, _ := db.NewIndex("test:idx").Tag("category", "").Build()
	if err := s.CreateIndex(context.Background(), idx); !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestIndexExists_Unknown(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.INFO", "idx")).
		Return(mock.Result(mock.RedisError("Unknown index name")))

	s := NewStoreForTest(c)
	ok, err := s.IndexExists(context.Background(), "idx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected false")
	}
}

// --- search.go tests ---

func TestSearchFiltered_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	cat, _ := filter.NewMatch("category", "venue")
	price, _ := filter.NewRange("price", filter.AtMost(550000))
	expr, _ := filter.NewExpression([]filter.Condition{cat, price})

	var got []string
	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			got = cmd
			return cmd[0] == "FT.SEARCH"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(3),
			mock.RedisString("v:venue:1"),
			mock.RedisArray(mock.RedisString("price"), mock.RedisString("100")),
			mock.RedisString("v:venue:2"),
			mock.RedisArray(mock.RedisString("price"), mock.RedisString("200")),
		)))

	s := NewStoreForTest(c)
	result, err := s.SearchFiltered(context.Background(), &db.FilterQuery{
		IndexName:    "idx",
		Filters:      expr,
		Limit:        2,
		ReturnFields: []string{"price"},
		SortBy:       "price",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("expected total 3, got %d", result.Total)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	if result.Entries[1].Fields["price"] != "200" {
		t.Errorf("unexpected entry: %+v", result.Entries[1])
	}

	want := []string{
		"FT.SEARCH", "idx", "@category:{venue} @price:[-inf 550000]",
		"RETURN", "1", "price", "SORTBY", "price", "ASC",
		"LIMIT", "0", "2", "DIALECT", "2",
	}
	if strings.Join(got, "\x00") != strings.Join(want, "\x00") {
		t.Errorf("command = %q, want %q", got, want)
	}
}

func TestSearchFiltered_EmptyFilterMatchesAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == "*"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.SearchFiltered(context.Background(), &db.FilterQuery{IndexName: "idx", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 0 || len(result.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestSearchFiltered_Validation(t *testing.T) {
	s := NewStoreForTest(nil)
	if _, err := s.SearchFiltered(context.Background(), &db.FilterQuery{Limit: 1}); err == nil {
		t.Error("expected error for missing index")
	}
	if _, err := s.SearchFiltered(context.Background(), &db.FilterQuery{IndexName: "idx"}); err == nil {
		t.Error("expected error for zero limit")
	}
}

func TestSearchFiltered_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.SearchFiltered(context.Background(), &db.FilterQuery{IndexName: "idx", Limit: 10})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestSearchCount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[2] == "@category:{venue}"
		})).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(42))))

	cat, _ := filter.NewMatch("category", "venue")
	expr, _ := filter.NewExpression([]filter.Condition{cat})

	s := NewStoreForTest(c)
	count, err := s.SearchCount(context.Background(), "idx", expr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("expected 42, got %d", count)
	}
}

// --- Filter building tests ---

func TestBuildFilter_Empty(t *testing.T) {
	if result := buildFilter(filter.Expression{}); result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestBuildFilter_Tag(t *testing.T) {
	cond, _ := filter.NewMatch("location", "New York")
	expr, _ := filter.NewExpression([]filter.Condition{cond})

	if result := buildFilter(expr); result != `@location:{New\ York}` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildFilter_Numeric(t *testing.T) {
	cond, _ := filter.NewRange("price", filter.AtMost(5500000.5))
	expr, _ := filter.NewExpression([]filter.Condition{cond})

	if result := buildFilter(expr); result != `@price:[-inf 5500000.5]` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildFilter_Combined(t *testing.T) {
	amenity, _ := filter.NewMatch("amenities", "parking")
	capacity, _ := filter.NewRange("capacity", filter.AtLeast(150))
	location, _ := filter.NewMatch("location", "Almaty")
	expr, _ := filter.NewExpression([]filter.Condition{amenity, capacity, location})

	if result := buildFilter(expr); result != `@amenities:{parking} @capacity:[150 +inf] @location:{Almaty}` {
		t.Errorf("unexpected filter: %q", result)
	}
}

func TestBuildTagFilter_Escaping(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"New York", `@location:{New\ York}`},
		{"stage [outdoor]", `@location:{stage\ \[outdoor\]}`},
		{`back\slash`, `@location:{back\\slash}`},
		{"a/v kit", `@location:{a\/v\ kit}`},
		{"wi-fi, 5.0", `@location:{wi\-fi\,\ 5\.0}`},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := buildTagFilter("location", tt.value); got != tt.want {
				t.Errorf("buildTagFilter(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

// --- helpers ---

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
