package vendorscout

import "github.com/kailas-cloud/vendorscout/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidBrief            = domain.ErrInvalidBrief
	ErrUnknownCategory         = domain.ErrUnknownCategory
	ErrInvalidVendor           = domain.ErrInvalidVendor
	ErrVendorNotFound          = domain.ErrVendorNotFound
	ErrStoreUnavailable        = domain.ErrStoreUnavailable
	ErrEmbeddingProviderError  = domain.ErrEmbeddingProviderError
	ErrPreferenceProviderError = domain.ErrPreferenceProviderError
	ErrVectorDimMismatch       = domain.ErrVectorDimMismatch
)
