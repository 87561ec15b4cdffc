package sourcing

import (
	"time"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

// NeutralScore is the preference score assigned when there is nothing to compare:
// degraded extraction or a vendor without an embedding.
const NeutralScore = 0.5

// ScoredCandidate is a vendor with its component and composite scores for one ranking pass.
type ScoredCandidate struct {
	Vendor          vendors.Record
	PriceScore      float64
	PreferenceScore float64
	CompositeScore  float64
	Rationale       string
}

// Status is the terminal outcome of a successful sourcing call.
type Status string

const (
	// StatusDone means candidates were ranked (the list may still be short).
	StatusDone Status = "done"
	// StatusNoMatch means no vendor satisfied the hard constraints.
	StatusNoMatch Status = "no_match"
)

// StageTiming is the wall time spent in one pipeline stage.
type StageTiming struct {
	Stage    domain.Stage
	Duration time.Duration
}

// Metadata makes degraded-but-successful behavior auditable.
type Metadata struct {
	RequestID         string
	Degraded          bool
	DegradedReason    string
	MissingEmbeddings int
	MissingVendorIDs  []string
	CandidateCount    int
	Preference        string
	Stages            []StageTiming
}

// Result is the ranked shortlist for one category.
type Result struct {
	Category   string
	Status     Status
	Reason     string
	Candidates []ScoredCandidate
	Metadata   Metadata
}

// IsNoMatch reports the "no vendors matched hard constraints" outcome.
func (r *Result) IsNoMatch() bool { return r.Status == StatusNoMatch }
