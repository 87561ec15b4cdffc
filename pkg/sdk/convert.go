package vendorscout

import (
	dombatch "github.com/kailas-cloud/vendorscout/internal/domain/batch"
	"github.com/kailas-cloud/vendorscout/internal/domain/brief"
	domsrc "github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

func toBrief(b Brief) (brief.Brief, error) {
	return brief.New(brief.Fields{
		ClientName:        b.ClientName,
		GuestCounts:       b.GuestCounts,
		Vision:            b.Vision,
		Budget:            b.Budget,
		Location:          b.Location,
		RequiredAmenities: b.RequiredAmenities,
		CategoryBudgets:   b.CategoryBudgets,
	})
}

func toFields(v Vendor) vendors.Fields {
	return vendors.Fields{
		Category:    v.Category,
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

func fromRecord(r *vendors.Record) Vendor {
	return Vendor{
		Category:     r.Category(),
		ID:           r.ID(),
		Name:         r.Name(),
		Price:        r.Price(),
		PriceMax:     r.PriceMax(),
		Capacity:     r.Capacity(),
		Location:     r.Location(),
		Amenities:    r.Amenities(),
		Description:  r.Description(),
		HasEmbedding: r.HasEmbedding(),
	}
}

func fromResult(r *domsrc.Result, tokens int) Result {
	candidates := make([]Candidate, len(r.Candidates))
	for i := range r.Candidates {
		c := &r.Candidates[i]
		candidates[i] = Candidate{
			Vendor:          fromRecord(&c.Vendor),
			PriceScore:      c.PriceScore,
			PreferenceScore: c.PreferenceScore,
			CompositeScore:  c.CompositeScore,
			Rationale:       c.Rationale,
		}
	}
	stages := make([]StageTiming, len(r.Metadata.Stages))
	for i, st := range r.Metadata.Stages {
		stages[i] = StageTiming{Stage: string(st.Stage), Duration: st.Duration}
	}
	return Result{
		Category:          r.Category,
		Status:            Status(r.Status),
		Reason:            r.Reason,
		Candidates:        candidates,
		RequestID:         r.Metadata.RequestID,
		Degraded:          r.Metadata.Degraded,
		DegradedReason:    r.Metadata.DegradedReason,
		MissingEmbeddings: r.Metadata.MissingEmbeddings,
		MissingVendorIDs:  r.Metadata.MissingVendorIDs,
		CandidateCount:    r.Metadata.CandidateCount,
		Preference:        r.Metadata.Preference,
		Stages:            stages,
		ProviderTokens:    tokens,
	}
}

func fromBatch(results []dombatch.Result) []ItemResult {
	out := make([]ItemResult, len(results))
	for i, r := range results {
		out[i] = ItemResult{
			Category: r.Category(),
			ID:       r.ID(),
			Status:   ItemStatus(r.Status()),
			Err:      r.Err(),
		}
	}
	return out
}
