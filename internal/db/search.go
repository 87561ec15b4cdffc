package db

import "github.com/kailas-cloud/vendorscout/internal/domain/filter"

// FilterQuery is the input for a boolean pre-filtered scan. No relevance scoring is applied.
type FilterQuery struct {
	IndexName    string
	Filters      filter.Expression
	Limit        int
	ReturnFields []string
	// SortBy is an optional sortable field; results are ascending when set.
	SortBy string
}

// SearchResult is the output of a search operation.
// Total is the number of matching documents, which may exceed len(Entries).
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
