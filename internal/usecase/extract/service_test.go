package extract

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	"github.com/kailas-cloud/vendorscout/internal/domain/brief"
)

// --- Mocks ---

type mockPrefs struct {
	result   domain.PreferenceResult
	err      error
	block    bool
	called   bool
	category string
}

func (m *mockPrefs) ExtractPreferences(ctx context.Context, _, category string) (domain.PreferenceResult, error) {
	m.called = true
	m.category = category
	if m.block {
		<-ctx.Done()
		return domain.PreferenceResult{}, ctx.Err()
	}
	return m.result, m.err
}

func testConfig() Config {
	return Config{
		BudgetTolerance: 1.10,
		Timeout:         time.Second,
		CapacitySpaces: map[string]string{
			"Venue":        "Reception",
			"caterer":      "Reception",
			"photographer": "",
		},
	}
}

func newBrief(t *testing.T, f brief.Fields) *brief.Brief {
	t.Helper()
	if f.Vision == "" {
		f.Vision = "rustic barn wedding with warm lights"
	}
	if f.Budget == 0 {
		f.Budget = 500000
	}
	b, err := brief.New(f)
	if err != nil {
		t.Fatalf("brief.New: %v", err)
	}
	return &b
}

// --- Tests ---

func TestExtract_HardConstraints(t *testing.T) {
	prefs := &mockPrefs{result: domain.PreferenceResult{Text: "rustic", Embedding: []float32{1, 0}}}
	svc := New(prefs, testConfig())
	b := newBrief(t, brief.Fields{
		GuestCounts:       map[string]int{"Ceremony": 80, "Reception": 150},
		Location:          "Almaty",
		RequiredAmenities: []string{"Parking"},
	})

	fs, pref, err := svc.Extract(context.Background(), b, "VENUE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ceiling, ok := fs.MaxPrice()
	if !ok || math.Abs(ceiling-550000) > 1e-6 {
		t.Errorf("expected ceiling 550000, got %v (ok=%v)", ceiling, ok)
	}
	if guests, ok := fs.MinCapacity(); !ok || guests != 150 {
		t.Errorf("expected min capacity 150 from Reception, got %d (ok=%v)", guests, ok)
	}
	if fs.Location() != "Almaty" {
		t.Errorf("expected location Almaty, got %q", fs.Location())
	}
	if got := fs.Amenities(); len(got) != 1 || got[0] != "parking" {
		t.Errorf("expected [parking], got %v", got)
	}
	if pref.IsEmpty() || pref.Text() != "rustic" {
		t.Errorf("expected rustic preference, got %+v", pref)
	}
	if prefs.category != "venue" {
		t.Errorf("expected lower-cased category, got %q", prefs.category)
	}
}

func TestExtract_CategoryBudgetOverride(t *testing.T) {
	svc := New(&mockPrefs{}, testConfig())
	b := newBrief(t, brief.Fields{CategoryBudgets: map[string]float64{"caterer": 100000}})

	fs, _, err := svc.Extract(context.Background(), b, "caterer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ceiling, _ := fs.MaxPrice(); math.Abs(ceiling-110000) > 1e-6 {
		t.Errorf("expected 110000, got %v", ceiling)
	}
}

func TestExtract_CapacitySpaceFallback(t *testing.T) {
	svc := New(&mockPrefs{}, testConfig())

	tests := []struct {
		name     string
		category string
		guests   map[string]int
		want     int
		wantOK   bool
	}{
		{"controlling space present", "venue", map[string]int{"Reception": 120, "Ceremony": 200}, 120, true},
		{"space missing uses max", "venue", map[string]int{"Ceremony": 90, "Cocktail": 60}, 90, true},
		{"no guest counts", "venue", nil, 0, false},
		{"category without space", "photographer", map[string]int{"Reception": 150}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBrief(t, brief.Fields{GuestCounts: tt.guests})
			fs, err := svc.Filters(b, tt.category)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got, ok := fs.MinCapacity()
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("MinCapacity = %d, %v; want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtract_UnknownCategory(t *testing.T) {
	prefs := &mockPrefs{}
	svc := New(prefs, testConfig())

	_, _, err := svc.Extract(context.Background(), newBrief(t, brief.Fields{}), "florist")
	if !errors.Is(err, domain.ErrInvalidBrief) || !errors.Is(err, domain.ErrUnknownCategory) {
		t.Fatalf("expected invalid brief / unknown category, got %v", err)
	}
	if prefs.called {
		t.Error("provider must not be called for an invalid brief")
	}
}

func TestExtract_EmptyBrief(t *testing.T) {
	prefs := &mockPrefs{}
	svc := New(prefs, testConfig())

	_, _, err := svc.Extract(context.Background(), &brief.Brief{}, "venue")
	if !errors.Is(err, domain.ErrInvalidBrief) {
		t.Fatalf("expected ErrInvalidBrief, got %v", err)
	}
	if prefs.called {
		t.Error("provider must not be called for an invalid brief")
	}
}

func TestExtract_Degraded(t *testing.T) {
	tests := []struct {
		name   string
		prefs  *mockPrefs
		reason string
	}{
		{"provider error", &mockPrefs{err: domain.ErrPreferenceProviderError}, ReasonProviderError},
		{"circuit open", &mockPrefs{err: domain.ErrCircuitOpen}, ReasonCircuitOpen},
		{"timeout", &mockPrefs{block: true}, ReasonTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Timeout = 10 * time.Millisecond
			svc := New(tt.prefs, cfg)

			fs, pref, err := svc.Extract(context.Background(), newBrief(t, brief.Fields{}), "venue")
			if !errors.Is(err, domain.ErrExtractionDegraded) {
				t.Fatalf("expected degraded error, got %v", err)
			}
			var deg *DegradedError
			if !errors.As(err, &deg) || deg.Reason != tt.reason {
				t.Errorf("expected reason %q, got %+v", tt.reason, deg)
			}
			if !pref.IsEmpty() {
				t.Error("degraded extraction must return an empty preference")
			}
			if _, ok := fs.MaxPrice(); !ok {
				t.Error("degraded extraction must keep hard constraints")
			}
		})
	}
}

func TestExtract_CallerCancelled(t *testing.T) {
	svc := New(&mockPrefs{block: true}, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := svc.Extract(ctx, newBrief(t, brief.Fields{}), "venue")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if errors.Is(err, domain.ErrExtractionDegraded) {
		t.Error("caller cancellation is not a degradation")
	}
}

func TestExtract_EmptyPreferenceIsNotDegraded(t *testing.T) {
	svc := New(&mockPrefs{result: domain.PreferenceResult{}}, testConfig())

	_, pref, err := svc.Extract(context.Background(), newBrief(t, brief.Fields{}), "venue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pref.IsEmpty() {
		t.Error("expected empty preference")
	}
}

func TestNew_DefaultTolerance(t *testing.T) {
	svc := New(&mockPrefs{}, Config{CapacitySpaces: map[string]string{"venue": ""}})
	fs, err := svc.Filters(newBrief(t, brief.Fields{Budget: 1000}), "venue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ceiling, _ := fs.MaxPrice(); math.Abs(ceiling-1100) > 1e-6 {
		t.Errorf("expected default tolerance ceiling 1100, got %v", ceiling)
	}
}

func TestExtract_UnrepresentableFiltersRejectedBeforeProvider(t *testing.T) {
	prefs := &mockPrefs{result: domain.PreferenceResult{Text: "rustic", Embedding: []float32{1, 0}}}
	svc := New(prefs, testConfig())
	b := newBrief(t, brief.Fields{Budget: math.MaxFloat64})

	_, _, err := svc.Extract(context.Background(), b, "venue")
	if !errors.Is(err, domain.ErrInvalidBrief) {
		t.Fatalf("expected ErrInvalidBrief, got %v", err)
	}
	if prefs.called {
		t.Error("provider must not be called for an invalid brief")
	}
}

func TestExtract_MaxAmenitiesAccepted(t *testing.T) {
	amenities := make([]string, brief.MaxRequiredAmenities)
	for i := range amenities {
		amenities[i] = fmt.Sprintf("amenity-%d", i)
	}
	prefs := &mockPrefs{result: domain.PreferenceResult{Text: "rustic", Embedding: []float32{1, 0}}}
	svc := New(prefs, testConfig())
	b := newBrief(t, brief.Fields{
		GuestCounts:       map[string]int{"Reception": 150},
		Location:          "Almaty",
		RequiredAmenities: amenities,
	})

	fs, _, err := svc.Extract(context.Background(), b, "venue")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := len(fs.Amenities()); got != brief.MaxRequiredAmenities {
		t.Errorf("amenities = %d, want %d", got, brief.MaxRequiredAmenities)
	}
}
