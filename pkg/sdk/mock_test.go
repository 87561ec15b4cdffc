package vendorscout

import (
	"context"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	dombatch "github.com/kailas-cloud/vendorscout/internal/domain/batch"
	"github.com/kailas-cloud/vendorscout/internal/domain/brief"
	domsrc "github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
	healthuc "github.com/kailas-cloud/vendorscout/internal/usecase/health"
	sourcinguc "github.com/kailas-cloud/vendorscout/internal/usecase/sourcing"
)

// --- sourcingUseCase mock ---

type mockSourcingUC struct {
	sourceFn    func(ctx context.Context, b *brief.Brief, category string, topK int) (domsrc.Result, error)
	sourceAllFn func(ctx context.Context, b *brief.Brief, categories []string, topK int) (map[string]sourcinguc.Outcome, error)
	categories  []string
}

func (m *mockSourcingUC) Source(ctx context.Context, b *brief.Brief, category string, topK int) (domsrc.Result, error) {
	return m.sourceFn(ctx, b, category, topK)
}

func (m *mockSourcingUC) SourceAll(
	ctx context.Context, b *brief.Brief, categories []string, topK int,
) (map[string]sourcinguc.Outcome, error) {
	return m.sourceAllFn(ctx, b, categories, topK)
}

func (m *mockSourcingUC) Categories() []string { return m.categories }

// --- catalogUseCase mock ---

type mockCatalogUC struct {
	ingestFn func(ctx context.Context, items []vendors.Fields) []dombatch.Result
	getFn    func(ctx context.Context, category, id string) (vendors.Record, error)
}

func (m *mockCatalogUC) Ingest(ctx context.Context, items []vendors.Fields) []dombatch.Result {
	return m.ingestFn(ctx, items)
}

func (m *mockCatalogUC) Get(ctx context.Context, category, id string) (vendors.Record, error) {
	return m.getFn(ctx, category, id)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(context.Context) healthuc.Report { return m.report }

// --- Provider mocks ---

type mockProvider struct {
	extractFn func(ctx context.Context, vision, category string) (Preference, error)
	embedFn   func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockProvider) ExtractPreferences(ctx context.Context, vision, category string) (Preference, error) {
	return m.extractFn(ctx, vision, category)
}

func (m *mockProvider) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.embedFn(ctx, text)
}

type mockBatchProvider struct {
	mockProvider
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchProvider) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

// newTestClient wires a Client around mocks, without a store.
func newTestClient(src *mockSourcingUC, cat *mockCatalogUC, health *mockHealthUC) *Client {
	obs, _ := newObserver(nil, nil)
	return &Client{sourcing: src, catalog: cat, healthSvc: health, obs: obs}
}

func testBrief() Brief {
	return Brief{
		ClientName:  "Ana & Leo",
		GuestCounts: map[string]int{"reception": 120},
		Vision:      "garden party, pastel florals, relaxed",
		Budget:      20000,
		Location:    "Lisbon",
	}
}

func testRecord(category, id string, price float64) vendors.Record {
	return vendors.Reconstruct(vendors.Fields{
		Category:    category,
		ID:          id,
		Name:        "Vendor " + id,
		Price:       price,
		Capacity:    150,
		Location:    "Lisbon",
		Amenities:   []string{"parking"},
		Description: "Sunny quinta with a rose garden.",
	}, []float32{0.1, 0.2})
}

func testResult(category string) domsrc.Result {
	return domsrc.Result{
		Category: category,
		Status:   domsrc.StatusDone,
		Candidates: []domsrc.ScoredCandidate{{
			Vendor:          testRecord(category, "v1", 9000),
			PriceScore:      0.8,
			PreferenceScore: 0.9,
			CompositeScore:  0.83,
			Rationale:       "within budget",
		}},
		Metadata: domsrc.Metadata{
			RequestID:      "req-1",
			CandidateCount: 1,
			Preference:     "pastel garden",
			Stages:         []domsrc.StageTiming{{Stage: domain.StageRanking}},
		},
	}
}
