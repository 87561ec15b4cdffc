package vendorscout

import "time"

// Brief is a client's event brief.
type Brief struct {
	ClientName string
	// GuestCounts maps an event space ("ceremony", "reception") to its guest count.
	GuestCounts       map[string]int
	Vision            string
	Budget            float64
	Location          string
	RequiredAmenities []string
	// CategoryBudgets overrides Budget for individual categories.
	CategoryBudgets map[string]float64
}

// Vendor is a catalog entry offering one service category.
type Vendor struct {
	Category    string
	ID          string
	Name        string
	Price       float64
	PriceMax    float64
	Capacity    int
	Location    string
	Amenities   []string
	Description string
	// HasEmbedding is set on read when the description has been vectorized.
	HasEmbedding bool
}

// Candidate is a ranked vendor with its component scores.
type Candidate struct {
	Vendor          Vendor
	PriceScore      float64
	PreferenceScore float64
	CompositeScore  float64
	Rationale       string
}

// Status is the outcome of a sourcing call.
type Status string

// Sourcing outcomes.
const (
	StatusDone    Status = "done"
	StatusNoMatch Status = "no_match"
)

// StageTiming is the wall time spent in one pipeline stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Result is the ranked shortlist for one category.
type Result struct {
	Category   string
	Status     Status
	Reason     string
	Candidates []Candidate

	RequestID string
	// Degraded is set when preference ranking was skipped and candidates carry the neutral
	// preference score.
	Degraded          bool
	DegradedReason    string
	MissingEmbeddings int
	MissingVendorIDs  []string
	CandidateCount    int
	Preference        string
	Stages            []StageTiming
	ProviderTokens    int
}

// Outcome is the result or error of one category of SourceAll.
type Outcome struct {
	Result Result
	Err    error
}

// ItemStatus is the ingestion outcome of one vendor.
type ItemStatus string

// Ingestion outcomes.
const (
	ItemOK         ItemStatus = "ok"
	ItemUnembedded ItemStatus = "unembedded"
	ItemError      ItemStatus = "error"
)

// ItemResult is the outcome of upserting one vendor.
type ItemResult struct {
	Category string
	ID       string
	Status   ItemStatus
	Err      error
}
