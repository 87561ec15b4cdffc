// Package batch holds per-item outcomes of vendor catalog ingestion.
package batch

// ItemStatus is the ingestion outcome of a single vendor.
type ItemStatus string

// Ingestion item status values.
const (
	StatusOK         ItemStatus = "ok"
	StatusUnembedded ItemStatus = "unembedded" // stored without embedding, ranked neutrally
	StatusError      ItemStatus = "error"
)

// Result is the outcome of ingesting one vendor.
type Result struct {
	category string
	id       string
	status   ItemStatus
	err      error
}

// NewOK creates a successful result.
func NewOK(category, id string) Result {
	return Result{category: category, id: id, status: StatusOK}
}

// NewUnembedded creates a result for a vendor stored without an embedding; err is the cause.
func NewUnembedded(category, id string, err error) Result {
	return Result{category: category, id: id, status: StatusUnembedded, err: err}
}

// NewError creates a failed result.
func NewError(category, id string, err error) Result {
	return Result{category: category, id: id, status: StatusError, err: err}
}

// Category returns the vendor category.
func (r Result) Category() string { return r.category }

// ID returns the vendor ID.
func (r Result) ID() string { return r.id }

// Status returns the ingestion outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error or embedding failure cause, if any.
func (r Result) Err() error { return r.err }

// Stored reports whether the vendor was written to the store.
func (r Result) Stored() bool { return r.status != StatusError }

// Summary counts results per status.
func Summary(results []Result) map[ItemStatus]int {
	out := make(map[ItemStatus]int, 3)
	for _, r := range results {
		out[r.status]++
	}
	return out
}
