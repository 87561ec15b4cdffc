package ranker

import "context"

// EmbeddingFetcher loads stored description embeddings by vendor ID. IDs without a stored
// embedding are absent from the returned map.
type EmbeddingFetcher interface {
	FetchEmbeddings(ctx context.Context, category string, ids []string) (map[string][]float32, error)
}
