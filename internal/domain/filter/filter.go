// Package filter holds store-agnostic conjunctive filter expressions for vendor scans.
package filter

import (
	"fmt"
	"math"
)

// MaxConditions is the maximum number of conditions in one expression.
const MaxConditions = 32

// Expression is a conjunction of conditions: a record matches when every condition holds.
type Expression struct {
	conditions []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(conditions []Condition) (Expression, error) {
	if len(conditions) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions: %d (max %d)", len(conditions), MaxConditions)
	}
	return Expression{conditions: conditions}, nil
}

// Conditions returns the AND-ed conditions in insertion order.
func (e Expression) Conditions() []Condition { return e.conditions }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conditions) == 0 }

// Condition is a single filter clause: either a tag match or a numeric range.
type Condition struct {
	key       string
	match     string
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition. Tag comparison is case-insensitive.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, match: match}, nil
}

// NewRange creates a numeric range condition. Both bounds must be finite when set.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	for _, b := range []*float64{r.min, r.max} {
		if b != nil && (math.IsNaN(*b) || math.IsInf(*b, 0)) {
			return Condition{}, fmt.Errorf("range bound for key %q must be finite", key)
		}
	}
	return Condition{key: key, rangeExpr: &r}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string { return c.match }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.match != "" }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.rangeExpr != nil }

// Range is a numeric range with inclusive bounds; a nil bound is unbounded.
type Range struct {
	min *float64
	max *float64
}

// AtMost returns the range (-inf, v].
func AtMost(v float64) Range { return Range{max: &v} }

// AtLeast returns the range [v, +inf).
func AtLeast(v float64) Range { return Range{min: &v} }

// Min returns the inclusive lower bound, nil when unbounded.
func (r Range) Min() *float64 { return r.min }

// Max returns the inclusive upper bound, nil when unbounded.
func (r Range) Max() *float64 { return r.max }
