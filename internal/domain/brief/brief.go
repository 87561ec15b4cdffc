// Package brief holds the client brief, the immutable input of one sourcing request.
package brief

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/kailas-cloud/vendorscout/internal/domain"
)

const (
	// MaxVisionSize is the maximum vision text size in bytes.
	MaxVisionSize = 8192
	// MaxRequiredAmenities caps the distinct amenities a brief may require.
	MaxRequiredAmenities = 16
)

// Brief is a client's event brief.
type Brief struct {
	clientName      string
	guestCounts     map[string]int
	vision          string
	budget          float64
	location        string
	amenities       []string
	categoryBudgets map[string]float64
}

// Fields is the mutable input for New.
type Fields struct {
	ClientName        string
	GuestCounts       map[string]int
	Vision            string
	Budget            float64
	Location          string
	RequiredAmenities []string
	CategoryBudgets   map[string]float64
}

// New validates and creates a Brief. Validation failures wrap domain.ErrInvalidBrief.
func New(f Fields) (Brief, error) {
	vision := strings.TrimSpace(f.Vision)
	if vision == "" {
		return Brief{}, fmt.Errorf("%w: vision is required", domain.ErrInvalidBrief)
	}
	if len(vision) > MaxVisionSize {
		return Brief{}, fmt.Errorf("%w: vision too large (max %d bytes)", domain.ErrInvalidBrief, MaxVisionSize)
	}
	if !positiveFinite(f.Budget) {
		return Brief{}, fmt.Errorf("%w: budget must be positive, got %g", domain.ErrInvalidBrief, f.Budget)
	}
	for space, n := range f.GuestCounts {
		if strings.TrimSpace(space) == "" {
			return Brief{}, fmt.Errorf("%w: guest count space name is required", domain.ErrInvalidBrief)
		}
		if n < 0 {
			return Brief{}, fmt.Errorf("%w: guest count for %q must be non-negative", domain.ErrInvalidBrief, space)
		}
	}
	budgets := make(map[string]float64, len(f.CategoryBudgets))
	for cat, b := range f.CategoryBudgets {
		if !positiveFinite(b) {
			return Brief{}, fmt.Errorf("%w: budget for %q must be positive, got %g", domain.ErrInvalidBrief, cat, b)
		}
		budgets[strings.ToLower(strings.TrimSpace(cat))] = b
	}

	amenities := make([]string, 0, len(f.RequiredAmenities))
	for _, a := range f.RequiredAmenities {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			amenities = append(amenities, a)
		}
	}
	slices.Sort(amenities)
	amenities = slices.Compact(amenities)
	if len(amenities) > MaxRequiredAmenities {
		return Brief{}, fmt.Errorf("%w: too many required amenities: %d (max %d)",
			domain.ErrInvalidBrief, len(amenities), MaxRequiredAmenities)
	}

	return Brief{
		clientName:      strings.TrimSpace(f.ClientName),
		guestCounts:     maps.Clone(f.GuestCounts),
		vision:          vision,
		budget:          f.Budget,
		location:        strings.TrimSpace(f.Location),
		amenities:       amenities,
		categoryBudgets: budgets,
	}, nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

// ClientName returns the client display name.
func (b *Brief) ClientName() string { return b.clientName }

// Vision returns the free-text stylistic vision.
func (b *Brief) Vision() string { return b.vision }

// Budget returns the overall event budget.
func (b *Brief) Budget() float64 { return b.budget }

// Location returns the requested location, empty when the client has no preference.
func (b *Brief) Location() string { return b.location }

// RequiredAmenities returns the amenities every vendor must offer.
func (b *Brief) RequiredAmenities() []string { return slices.Clone(b.amenities) }

// GuestCounts returns a copy of the per-space guest counts.
func (b *Brief) GuestCounts() map[string]int { return maps.Clone(b.guestCounts) }

// GuestCount returns the guest count for a space (case-insensitive).
func (b *Brief) GuestCount(space string) (int, bool) {
	for name, n := range b.guestCounts {
		if strings.EqualFold(name, space) {
			return n, true
		}
	}
	return 0, false
}

// MaxGuestCount returns the largest guest count across all spaces.
func (b *Brief) MaxGuestCount() int {
	peak := 0
	for _, n := range b.guestCounts {
		peak = max(peak, n)
	}
	return peak
}

// BudgetFor returns the category budget override, or the overall budget.
func (b *Brief) BudgetFor(category string) float64 {
	if v, ok := b.categoryBudgets[strings.ToLower(category)]; ok {
		return v
	}
	return b.budget
}
