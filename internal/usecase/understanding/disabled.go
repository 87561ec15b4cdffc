package understanding

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/vendorscout/internal/domain"
)

// ErrNotConfigured is returned by Disabled for every call.
var ErrNotConfigured = errors.New("understanding provider not configured")

// Disabled stands in for a provider when none is configured. Every sourcing request then
// runs in degraded mode and vendors are stored without embeddings.
type Disabled struct{}

// ExtractPreferences always fails.
func (Disabled) ExtractPreferences(context.Context, string, string) (domain.PreferenceResult, error) {
	return domain.PreferenceResult{}, fmt.Errorf("%w: %w", domain.ErrPreferenceProviderError, ErrNotConfigured)
}

// Embed always fails.
func (Disabled) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, ErrNotConfigured)
}

// BatchEmbed always fails.
func (Disabled) BatchEmbed(context.Context, []string) (domain.BatchEmbeddingResult, error) {
	return domain.BatchEmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingProviderError, ErrNotConfigured)
}

// HealthCheck reports the provider as unavailable.
func (Disabled) HealthCheck(context.Context) error { return ErrNotConfigured }
