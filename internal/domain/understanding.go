package domain

import "context"

// PreferenceExtractor turns free-form client vision into a normalized preference statement
// for one service category (style, theme, cuisine, tone).
type PreferenceExtractor interface {
	ExtractPreferences(ctx context.Context, vision, category string) (PreferenceResult, error)
}

// PreferenceResult is the normalized preference text and its embedding.
type PreferenceResult struct {
	Text        string
	Embedding   []float32
	TotalTokens int
}

// Understander is the text-understanding capability: preference extraction plus the
// symmetric embed used for vendor descriptions and client visions.
type Understander interface {
	PreferenceExtractor
	Embedder
}
