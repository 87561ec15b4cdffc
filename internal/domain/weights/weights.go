// Package weights holds per-category price/preference blend weights.
package weights

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"
)

// sumTolerance absorbs float noise from configuration values like 0.7 + 0.3.
const sumTolerance = 1e-9

// Profile is the price/preference weight pair for one service category.
// PriceWeight + PreferenceWeight == 1.
type Profile struct {
	priceWeight      float64
	preferenceWeight float64
}

// NewProfile validates and creates a Profile.
func NewProfile(priceWeight, preferenceWeight float64) (Profile, error) {
	if math.IsNaN(priceWeight) || math.IsNaN(preferenceWeight) || priceWeight < 0 || preferenceWeight < 0 {
		return Profile{}, fmt.Errorf("weights must be non-negative, got price=%g preference=%g",
			priceWeight, preferenceWeight)
	}
	if math.Abs(priceWeight+preferenceWeight-1) > sumTolerance {
		return Profile{}, fmt.Errorf("weights must sum to 1, got %g", priceWeight+preferenceWeight)
	}
	return Profile{priceWeight: priceWeight, preferenceWeight: preferenceWeight}, nil
}

// MustProfile calls NewProfile and panics on error.
func MustProfile(priceWeight, preferenceWeight float64) Profile {
	p, err := NewProfile(priceWeight, preferenceWeight)
	if err != nil {
		panic(err)
	}
	return p
}

// PriceWeight returns the weight applied to price fitness.
func (p Profile) PriceWeight() float64 { return p.priceWeight }

// PreferenceWeight returns the weight applied to preference fitness.
func (p Profile) PreferenceWeight() float64 { return p.preferenceWeight }

// PriceDominant reports whether price fitness carries more weight than preference.
func (p Profile) PriceDominant() bool { return p.priceWeight > p.preferenceWeight }

// Set maps category names to profiles. Built once at startup, read-only afterwards.
type Set struct {
	profiles map[string]Profile
}

// NewSet creates a Set from a category → profile map. Category names are lower-cased.
func NewSet(profiles map[string]Profile) (Set, error) {
	if len(profiles) == 0 {
		return Set{}, fmt.Errorf("at least one category profile is required")
	}
	out := make(map[string]Profile, len(profiles))
	for name, p := range profiles {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			return Set{}, fmt.Errorf("category name is required")
		}
		if _, dup := out[key]; dup {
			return Set{}, fmt.Errorf("duplicate category %q", key)
		}
		out[key] = p
	}
	return Set{profiles: out}, nil
}

// Get returns the profile for a category (case-insensitive).
func (s Set) Get(category string) (Profile, bool) {
	p, ok := s.profiles[strings.ToLower(category)]
	return p, ok
}

// Categories returns the configured category names, sorted.
func (s Set) Categories() []string {
	return slices.Sorted(maps.Keys(s.profiles))
}
