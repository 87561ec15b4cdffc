package selector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	"github.com/kailas-cloud/vendorscout/internal/domain/filter"
	"github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

// --- Mocks ---

type mockRepo struct {
	records   []vendors.Record
	err       error
	block     bool
	lastLimit int
	lastExpr  filter.Expression
	lastCat   string
}

func (m *mockRepo) QueryByFilters(
	ctx context.Context, category string, expr filter.Expression, limit int,
) ([]vendors.Record, error) {
	m.lastCat = category
	m.lastExpr = expr
	m.lastLimit = limit
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.records, m.err
}

func venue(id string, price float64, capacity int) vendors.Record {
	return vendors.Reconstruct(vendors.Fields{
		Category: "venue", ID: id, Price: price, Capacity: capacity, Location: "Almaty",
	}, nil)
}

// --- Tests ---

func TestSelect_AllConstraintsApplied(t *testing.T) {
	repo := &mockRepo{records: []vendors.Record{venue("v1", 400000, 200), venue("v2", 500000, 150)}}
	svc := New(repo, Config{})
	spec := sourcing.NewFilterSpec(
		sourcing.WithMaxPrice(550000),
		sourcing.WithMinCapacity(150),
		sourcing.WithLocation("Almaty"),
	)

	got, err := svc.Select(context.Background(), spec, "venue", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(got))
	}
	if repo.lastLimit != DefaultCandidateLimit {
		t.Errorf("expected default limit %d, got %d", DefaultCandidateLimit, repo.lastLimit)
	}
	if len(repo.lastExpr.Conditions()) != 3 {
		t.Errorf("expected 3 conditions, got %d", len(repo.lastExpr.Conditions()))
	}
	if repo.lastCat != "venue" {
		t.Errorf("expected category venue, got %q", repo.lastCat)
	}
}

func TestSelect_ExplicitLimit(t *testing.T) {
	repo := &mockRepo{records: []vendors.Record{venue("v1", 1, 1)}}
	svc := New(repo, Config{DefaultLimit: 50})

	if _, err := svc.Select(context.Background(), sourcing.NewFilterSpec(), "venue", 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != 7 {
		t.Errorf("expected limit 7, got %d", repo.lastLimit)
	}

	if _, err := svc.Select(context.Background(), sourcing.NewFilterSpec(), "venue", -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastLimit != 50 {
		t.Errorf("expected configured default 50, got %d", repo.lastLimit)
	}
}

func TestSelect_DropsViolatingRecords(t *testing.T) {
	repo := &mockRepo{records: []vendors.Record{
		venue("cheap", 100, 200),
		venue("too-expensive", 900, 200),
		venue("too-small", 100, 10),
	}}
	svc := New(repo, Config{})
	spec := sourcing.NewFilterSpec(sourcing.WithMaxPrice(500), sourcing.WithMinCapacity(100))

	got, err := svc.Select(context.Background(), spec, "venue", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID() != "cheap" {
		t.Errorf("expected only the satisfying vendor, got %v", got)
	}
}

func TestSelect_Empty(t *testing.T) {
	tests := []struct {
		name    string
		records []vendors.Record
	}{
		{"store returns nothing", nil},
		{"every record violates", []vendors.Record{venue("v1", 999999, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockRepo{records: tt.records}, Config{})
			spec := sourcing.NewFilterSpec(sourcing.WithMaxPrice(50000))

			_, err := svc.Select(context.Background(), spec, "venue", 0)
			if !errors.Is(err, domain.ErrEmptyCandidateSet) {
				t.Fatalf("expected ErrEmptyCandidateSet, got %v", err)
			}
		})
	}
}

func TestSelect_StoreUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	svc := New(&mockRepo{err: cause}, Config{})

	_, err := svc.Select(context.Background(), sourcing.NewFilterSpec(), "venue", 0)
	if !errors.Is(err, domain.ErrStoreUnavailable) || !errors.Is(err, cause) {
		t.Fatalf("expected ErrStoreUnavailable wrapping cause, got %v", err)
	}
}

func TestSelect_Timeout(t *testing.T) {
	svc := New(&mockRepo{block: true}, Config{Timeout: 10 * time.Millisecond})

	_, err := svc.Select(context.Background(), sourcing.NewFilterSpec(), "venue", 0)
	if !errors.Is(err, domain.ErrStoreUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected ErrStoreUnavailable wrapping deadline, got %v", err)
	}
}

func TestSelect_CallerCancelled(t *testing.T) {
	svc := New(&mockRepo{block: true}, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Select(ctx, sourcing.NewFilterSpec(), "venue", 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, domain.ErrStoreUnavailable) {
		t.Error("caller cancellation is not a store failure")
	}
}
