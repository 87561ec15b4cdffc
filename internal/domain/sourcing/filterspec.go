// Package sourcing holds the value objects that flow through one sourcing request:
// hard constraints, soft preferences, scored candidates and the final result.
package sourcing

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kailas-cloud/vendorscout/internal/domain/filter"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
)

// FilterSpec is the set of hard constraints derived from a brief. Every constraint is an
// independent boolean predicate over a vendor record; there are no fuzzy fields here.
type FilterSpec struct {
	maxPrice    *float64
	minCapacity *int
	location    string
	amenities   []string
}

// FilterOption sets one hard constraint.
type FilterOption func(*FilterSpec)

// WithMaxPrice requires vendor price <= ceiling.
func WithMaxPrice(ceiling float64) FilterOption {
	return func(s *FilterSpec) { s.maxPrice = &ceiling }
}

// WithMinCapacity requires vendor capacity >= guests.
func WithMinCapacity(guests int) FilterOption {
	return func(s *FilterSpec) { s.minCapacity = &guests }
}

// WithLocation requires an exact (case-insensitive) location match.
func WithLocation(location string) FilterOption {
	return func(s *FilterSpec) { s.location = strings.TrimSpace(location) }
}

// WithAmenities requires every listed amenity to be offered.
func WithAmenities(amenities ...string) FilterOption {
	return func(s *FilterSpec) { s.amenities = vendors.NormalizeAmenities(amenities) }
}

// NewFilterSpec creates a FilterSpec from options.
func NewFilterSpec(opts ...FilterOption) FilterSpec {
	var s FilterSpec
	for _, o := range opts {
		o(&s)
	}
	return s
}

// MaxPrice returns the price ceiling, if constrained.
func (s FilterSpec) MaxPrice() (float64, bool) {
	if s.maxPrice == nil {
		return 0, false
	}
	return *s.maxPrice, true
}

// BudgetCeiling returns the price ceiling used for price normalization, 0 when unconstrained.
func (s FilterSpec) BudgetCeiling() float64 {
	if s.maxPrice == nil {
		return 0
	}
	return *s.maxPrice
}

// MinCapacity returns the minimum capacity, if constrained.
func (s FilterSpec) MinCapacity() (int, bool) {
	if s.minCapacity == nil {
		return 0, false
	}
	return *s.minCapacity, true
}

// Location returns the required location, empty when unconstrained.
func (s FilterSpec) Location() string { return s.location }

// Amenities returns the required amenities.
func (s FilterSpec) Amenities() []string { return slices.Clone(s.amenities) }

// Constraint is one named hard predicate.
type Constraint struct {
	Name  string
	Value string
	Test  func(r *vendors.Record) bool
}

// Constraints lists every hard predicate in a stable order.
func (s FilterSpec) Constraints() []Constraint {
	var out []Constraint
	if s.maxPrice != nil {
		ceiling := *s.maxPrice
		out = append(out, Constraint{
			Name:  "max_price",
			Value: fmt.Sprintf("%g", ceiling),
			Test:  func(r *vendors.Record) bool { return r.Price() <= ceiling },
		})
	}
	if s.minCapacity != nil {
		guests := *s.minCapacity
		out = append(out, Constraint{
			Name:  "min_capacity",
			Value: fmt.Sprintf("%d", guests),
			Test:  func(r *vendors.Record) bool { return r.Capacity() >= guests },
		})
	}
	if s.location != "" {
		loc := s.location
		out = append(out, Constraint{
			Name:  "location",
			Value: loc,
			Test:  func(r *vendors.Record) bool { return strings.EqualFold(r.Location(), loc) },
		})
	}
	for _, a := range s.amenities {
		amenity := a
		out = append(out, Constraint{
			Name:  "amenity",
			Value: amenity,
			Test:  func(r *vendors.Record) bool { return r.HasAmenity(amenity) },
		})
	}
	return out
}

// Matches reports whether the record satisfies every hard constraint.
func (s FilterSpec) Matches(r *vendors.Record) bool {
	for _, c := range s.Constraints() {
		if !c.Test(r) {
			return false
		}
	}
	return true
}

// Expression translates the constraints into a conjunctive store filter.
// Each constraint becomes exactly one must condition.
func (s FilterSpec) Expression() (filter.Expression, error) {
	var must []filter.Condition

	if s.maxPrice != nil {
		c, err := filter.NewRange(vendors.FieldPrice, filter.AtMost(*s.maxPrice))
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, c)
	}
	if s.minCapacity != nil {
		c, err := filter.NewRange(vendors.FieldCapacity, filter.AtLeast(float64(*s.minCapacity)))
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, c)
	}
	if s.location != "" {
		c, err := filter.NewMatch(vendors.FieldLocation, s.location)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, c)
	}
	for _, a := range s.amenities {
		c, err := filter.NewMatch(vendors.FieldAmenities, a)
		if err != nil {
			return filter.Expression{}, err
		}
		must = append(must, c)
	}

	expr, err := filter.NewExpression(must)
	if err != nil {
		return filter.Expression{}, fmt.Errorf("build hard constraints: %w", err)
	}
	return expr, nil
}
