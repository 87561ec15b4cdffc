// Package extract derives hard constraints and the soft preference for one category
// from a client brief.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vendorscout/internal/domain"
	"github.com/kailas-cloud/vendorscout/internal/domain/brief"
	"github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/logger"
)

// DefaultBudgetTolerance lets vendors quote slightly above the stated budget.
const DefaultBudgetTolerance = 1.10

// Degradation reasons.
const (
	ReasonTimeout       = "timeout"
	ReasonCircuitOpen   = "circuit_open"
	ReasonProviderError = "provider_error"
)

// Config configures the extractor.
type Config struct {
	// BudgetTolerance multiplies the category budget into the price ceiling. Must be >= 1.
	BudgetTolerance float64
	// Timeout bounds the preference extraction call. Zero means no extra bound.
	Timeout time.Duration
	// CapacitySpaces maps every known category to its controlling guest-count space.
	// An empty space means the category has no capacity constraint.
	CapacitySpaces map[string]string
}

// DegradedError reports that preference extraction failed and sourcing falls back to hard
// filters only. It matches domain.ErrExtractionDegraded and the underlying cause.
type DegradedError struct {
	Reason string
	Err    error
}

func (e *DegradedError) Error() string {
	return fmt.Sprintf("%s (%s): %v", domain.ErrExtractionDegraded, e.Reason, e.Err)
}

func (e *DegradedError) Unwrap() []error { return []error{domain.ErrExtractionDegraded, e.Err} }

// Service is the filter extractor.
type Service struct {
	prefs     PreferenceExtractor
	tolerance float64
	timeout   time.Duration
	spaces    map[string]string
}

// New creates an extractor. Category names are matched case-insensitively.
func New(prefs PreferenceExtractor, cfg Config) *Service {
	tolerance := cfg.BudgetTolerance
	if tolerance <= 0 {
		tolerance = DefaultBudgetTolerance
	}
	spaces := make(map[string]string, len(cfg.CapacitySpaces))
	for cat, space := range cfg.CapacitySpaces {
		spaces[strings.ToLower(strings.TrimSpace(cat))] = strings.TrimSpace(space)
	}
	return &Service{prefs: prefs, tolerance: tolerance, timeout: cfg.Timeout, spaces: spaces}
}

// Extract builds the hard FilterSpec and the soft PreferenceSpec for category.
//
// Invalid input fails with domain.ErrInvalidBrief before any external call. When the
// preference call fails, times out or is rejected by an open circuit, Extract still returns
// the FilterSpec and an empty PreferenceSpec together with a *DegradedError; callers treat it
// as non-fatal.
func (s *Service) Extract(
	ctx context.Context, b *brief.Brief, category string,
) (sourcing.FilterSpec, sourcing.PreferenceSpec, error) {
	fs, err := s.Filters(b, category)
	if err != nil {
		return sourcing.FilterSpec{}, sourcing.PreferenceSpec{}, err
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.prefs.ExtractPreferences(callCtx, b.Vision(), strings.ToLower(category))
	if err != nil {
		// The caller giving up is not a provider degradation.
		if ctx.Err() != nil {
			return sourcing.FilterSpec{}, sourcing.PreferenceSpec{}, ctx.Err()
		}
		deg := &DegradedError{Reason: degradationReason(err), Err: err}
		logger.FromContext(ctx).Warn("Preference extraction degraded",
			zap.String("category", category),
			zap.String("reason", deg.Reason),
			zap.Error(err),
		)
		return fs, sourcing.PreferenceSpec{}, deg
	}

	return fs, sourcing.NewPreferenceSpec(res.Text, res.Embedding), nil
}

// Filters derives the hard constraints only and checks that the store can express them.
// It never calls the provider.
func (s *Service) Filters(b *brief.Brief, category string) (sourcing.FilterSpec, error) {
	if b == nil || b.Vision() == "" || b.Budget() <= 0 {
		return sourcing.FilterSpec{}, fmt.Errorf("%w: brief is empty", domain.ErrInvalidBrief)
	}
	cat := strings.ToLower(strings.TrimSpace(category))
	space, known := s.spaces[cat]
	if !known {
		return sourcing.FilterSpec{}, fmt.Errorf("%w: %w: %q", domain.ErrInvalidBrief, domain.ErrUnknownCategory, category)
	}

	opts := []sourcing.FilterOption{sourcing.WithMaxPrice(b.BudgetFor(cat) * s.tolerance)}
	if guests, ok := minCapacity(b, space); ok {
		opts = append(opts, sourcing.WithMinCapacity(guests))
	}
	if loc := b.Location(); loc != "" {
		opts = append(opts, sourcing.WithLocation(loc))
	}
	if amenities := b.RequiredAmenities(); len(amenities) > 0 {
		opts = append(opts, sourcing.WithAmenities(amenities...))
	}
	fs := sourcing.NewFilterSpec(opts...)
	if _, err := fs.Expression(); err != nil {
		return sourcing.FilterSpec{}, fmt.Errorf("%w: %w", domain.ErrInvalidBrief, err)
	}
	return fs, nil
}

// minCapacity resolves the guest count of the controlling space, falling back to the
// largest space when the brief does not name it.
func minCapacity(b *brief.Brief, space string) (int, bool) {
	if space == "" {
		return 0, false
	}
	if n, ok := b.GuestCount(space); ok {
		return n, true
	}
	if peak := b.MaxGuestCount(); peak > 0 {
		return peak, true
	}
	return 0, false
}

func degradationReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, domain.ErrCircuitOpen):
		return ReasonCircuitOpen
	default:
		return ReasonProviderError
	}
}
