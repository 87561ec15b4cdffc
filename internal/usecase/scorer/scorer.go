// Package scorer blends price fitness and preference fitness into one composite score and
// orders candidates deterministically.
package scorer

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/kailas-cloud/vendorscout/internal/domain/sourcing"
	"github.com/kailas-cloud/vendorscout/internal/domain/vendors"
	"github.com/kailas-cloud/vendorscout/internal/domain/weights"
)

// epsilon is the composite-score difference treated as a tie.
const epsilon = 1e-9

// PriceNorm returns clamp(1 - price/ceiling, 0, 1). A non-positive ceiling yields 0.
func PriceNorm(price, ceiling float64) float64 {
	if ceiling <= 0 {
		return 0
	}
	return min(max(1-price/ceiling, 0), 1)
}

// Compose builds the scored candidate for one vendor.
func Compose(v vendors.Record, priceNorm, prefScore float64, p weights.Profile) sourcing.ScoredCandidate {
	composite := p.PriceWeight()*priceNorm + p.PreferenceWeight()*prefScore
	return sourcing.ScoredCandidate{
		Vendor:          v,
		PriceScore:      priceNorm,
		PreferenceScore: prefScore,
		CompositeScore:  composite,
		Rationale:       rationale(priceNorm, prefScore, p),
	}
}

func rationale(priceNorm, prefScore float64, p weights.Profile) string {
	scores := fmt.Sprintf("price fit %.2f, preference fit %.2f", priceNorm, prefScore)
	if math.Abs(p.PriceWeight()-p.PreferenceWeight()) < epsilon {
		return scores + "; price and preference weighted equally"
	}
	lead := "preference fit"
	if p.PriceDominant() {
		lead = "price fit"
	}
	return fmt.Sprintf("%s; %s weighted %.0f%%",
		scores, lead, 100*math.Max(p.PriceWeight(), p.PreferenceWeight()))
}

// Rank sorts candidates in place: composite score descending, then preference score
// descending, then price ascending, then vendor ID ascending.
func Rank(candidates []sourcing.ScoredCandidate) {
	slices.SortStableFunc(candidates, compare)
}

func compare(a, b sourcing.ScoredCandidate) int {
	if d := a.CompositeScore - b.CompositeScore; math.Abs(d) > epsilon {
		if d > 0 {
			return -1
		}
		return 1
	}
	if c := cmp.Compare(b.PreferenceScore, a.PreferenceScore); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Vendor.Price(), b.Vendor.Price()); c != 0 {
		return c
	}
	return cmp.Compare(a.Vendor.ID(), b.Vendor.ID())
}
