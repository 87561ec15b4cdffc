package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidBrief signals a client brief that cannot be sourced (missing vision, budget or category).
	ErrInvalidBrief = errors.New("invalid brief")
	// ErrUnknownCategory signals a service category that is not configured.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrExtractionDegraded signals that preference extraction fell back to hard filters only.
	ErrExtractionDegraded = errors.New("extraction degraded")
	// ErrEmptyCandidateSet signals that no vendor satisfies all hard constraints.
	ErrEmptyCandidateSet = errors.New("no vendors matched hard constraints")
	// ErrStoreUnavailable signals a vendor store connection or query failure.
	ErrStoreUnavailable = errors.New("vendor store unavailable")
	// ErrMissingEmbedding signals a vendor record without a usable description embedding.
	ErrMissingEmbedding = errors.New("missing embedding")
	// ErrVendorNotFound signals a missing vendor record.
	ErrVendorNotFound = errors.New("vendor not found")
	// ErrInvalidVendor signals a malformed vendor record.
	ErrInvalidVendor = errors.New("invalid vendor")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrPreferenceProviderError signals a preference extraction provider failure.
	ErrPreferenceProviderError = errors.New("preference provider error")
	// ErrCircuitOpen signals that the provider circuit breaker rejected a call without contacting the provider.
	ErrCircuitOpen = errors.New("provider circuit open")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

// Stage names a step of the sourcing pipeline.
type Stage string

// Sourcing pipeline stages.
const (
	StageExtracting Stage = "extracting"
	StageSelecting  Stage = "selecting"
	StageRanking    Stage = "ranking"
	StageComposing  Stage = "composing"
	StageDone       Stage = "done"
	StageFailed     Stage = "failed"
)

// StageError records the pipeline stage a sourcing request failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err.Error())
}

func (e *StageError) Unwrap() error { return e.Err }

// NewStageError wraps err with the stage it occurred in.
func NewStageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
