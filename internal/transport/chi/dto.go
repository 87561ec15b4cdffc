package chi

import (
	"github.com/kailas-cloud/vendorscout/internal/domain/brief"
	domsrc "github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

type errorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type briefRequest struct {
	ClientName        string             `json:"client_name"`
	GuestCounts       map[string]int     `json:"guest_counts"`
	Vision            string             `json:"vision"`
	Budget            float64            `json:"budget"`
	Location          string             `json:"location"`
	RequiredAmenities []string           `json:"required_amenities"`
	CategoryBudgets   map[string]float64 `json:"category_budgets"`
}

func (b briefRequest) toDomain() (brief.Brief, error) {
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

type sourceRequest struct {
	Brief briefRequest `json:"brief"`
	TopK  int          `json:"top_k"`
}

type multiSourceRequest struct {
	Brief      briefRequest `json:"brief"`
	Categories []string     `json:"categories"`
	TopK       int          `json:"top_k"`
}

type multiSourceResponse struct {
	Results map[string]resultResponse `json:"results"`
	Errors  map[string]errorResponse  `json:"errors,omitempty"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}

type vendorResponse struct {
	Category     string   `json:"category"`
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Price        float64  `json:"price"`
	PriceMax     float64  `json:"price_max,omitempty"`
	Capacity     int      `json:"capacity,omitempty"`
	Location     string   `json:"location,omitempty"`
	Amenities    []string `json:"amenities,omitempty"`
	Description  string   `json:"description,omitempty"`
	HasEmbedding bool     `json:"has_embedding"`
}

func vendorToResponse(r *vendors.Record) vendorResponse {
	return vendorResponse{
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

type candidateResponse struct {
	Vendor          vendorResponse `json:"vendor"`
	PriceScore      float64        `json:"price_score"`
	PreferenceScore float64        `json:"preference_score"`
	CompositeScore  float64        `json:"composite_score"`
	Rationale       string         `json:"rationale"`
}

type stageResponse struct {
	Stage      string  `json:"stage"`
	DurationMs float64 `json:"duration_ms"`
}

type metadataResponse struct {
	RequestID         string          `json:"request_id"`
	Degraded          bool            `json:"degraded"`
	DegradedReason    string          `json:"degraded_reason,omitempty"`
	MissingEmbeddings int             `json:"missing_embeddings"`
	MissingVendorIDs  []string        `json:"missing_vendor_ids,omitempty"`
	CandidateCount    int             `json:"candidate_count"`
	Preference        string          `json:"preference,omitempty"`
	Stages            []stageResponse `json:"stages"`
}

type resultResponse struct {
	Category   string              `json:"category"`
	Status     string              `json:"status"`
	Reason     string              `json:"reason,omitempty"`
	Candidates []candidateResponse `json:"candidates"`
	Metadata   metadataResponse    `json:"metadata"`
}

func resultToResponse(r *domsrc.Result) resultResponse {
	candidates := make([]candidateResponse, len(r.Candidates))
	for i := range r.Candidates {
		c := &r.Candidates[i]
		candidates[i] = candidateResponse{
			Vendor:          vendorToResponse(&c.Vendor),
			PriceScore:      c.PriceScore,
			PreferenceScore: c.PreferenceScore,
			CompositeScore:  c.CompositeScore,
			Rationale:       c.Rationale,
		}
	}

	stages := make([]stageResponse, len(r.Metadata.Stages))
	for i, st := range r.Metadata.Stages {
		stages[i] = stageResponse{
			Stage:      string(st.Stage),
			DurationMs: float64(st.Duration.Microseconds()) / 1000,
		}
	}

	return resultResponse{
		Category:   r.Category,
		Status:     string(r.Status),
		Reason:     r.Reason,
		Candidates: candidates,
		Metadata: metadataResponse{
			RequestID:         r.Metadata.RequestID,
			Degraded:          r.Metadata.Degraded,
			DegradedReason:    r.Metadata.DegradedReason,
			MissingEmbeddings: r.Metadata.MissingEmbeddings,
			MissingVendorIDs:  r.Metadata.MissingVendorIDs,
			CandidateCount:    r.Metadata.CandidateCount,
			Preference:        r.Metadata.Preference,
			Stages:            stages,
		},
	}
}

type vendorRequest struct {
	Category    string   `json:"category"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	PriceMax    float64  `json:"price_max"`
	Capacity    int      `json:"capacity"`
	Location    string   `json:"location"`
	Amenities   []string `json:"amenities"`
	Description string   `json:"description"`
}

func (v vendorRequest) toFields() vendors.Fields {
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

type upsertVendorsRequest struct {
	Vendors []vendorRequest `json:"vendors"`
}

type batchItemResponse struct {
	Category string         `json:"category"`
	ID       string         `json:"id"`
	Status   string         `json:"status"`
	Error    *errorResponse `json:"error,omitempty"`
}

type upsertVendorsResponse struct {
	Items     []batchItemResponse `json:"items"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}
