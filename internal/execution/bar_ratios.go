package execution

import (
	"math"

	"options-sim-lab/internal/domain"
)

// NeutralRangePosition is returned for bars with no range.
const NeutralRangePosition = 0.5

// RangePosition returns where the close sits within the bar's range, in [0, 1].
// Doji and zero-range bars return NeutralRangePosition.
func RangePosition(b domain.Bar) float64 {
	rng := b.High - b.Low
	if rng <= 0 || math.IsNaN(rng) {
		return NeutralRangePosition
	}
	return clamp((b.Close-b.Low)/rng, 0, 1)
}

// BodyRatio returns |close-open| as a share of the bar's range.
// A bar with no range has no body and returns 0.
func BodyRatio(b domain.Bar) float64 {
	rng := b.High - b.Low
	if rng <= 0 || math.IsNaN(rng) {
		return 0
	}
	return clamp(math.Abs(b.Close-b.Open)/rng, 0, 1)
}
