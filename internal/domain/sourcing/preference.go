package sourcing

import "slices"

// PreferenceSpec is the soft preference derived from the client vision: a normalized
// preference statement and its embedding. It never carries hard constraints.
type PreferenceSpec struct {
	text      string
	embedding []float32
}

// NewPreferenceSpec creates a PreferenceSpec. The embedding is copied once and never mutated.
func NewPreferenceSpec(text string, embedding []float32) PreferenceSpec {
	return PreferenceSpec{text: text, embedding: slices.Clone(embedding)}
}

// Text returns the normalized preference statement.
func (p PreferenceSpec) Text() string { return p.text }

// Embedding returns a copy of the preference embedding.
func (p PreferenceSpec) Embedding() []float32 { return slices.Clone(p.embedding) }

// Dimensions returns the embedding length.
func (p PreferenceSpec) Dimensions() int { return len(p.embedding) }

// IsEmpty reports degraded mode: no embedding to score against.
func (p PreferenceSpec) IsEmpty() bool { return len(p.embedding) == 0 }

// Vector returns the embedding without copying, for read-only hot loops. Callers must not modify it.
func (p PreferenceSpec) Vector() []float32 { return p.embedding }
