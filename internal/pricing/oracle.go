// Package pricing provides theoretical option values for mark-to-market and fills.
package pricing

import (
	"time"

	"options-sim-lab/internal/domain"
)

// Input describes one contract valuation request.
type Input struct {
	Type         domain.OptionType
	Spot         float64
	Strike       float64
	TimeToExpiry float64 // years
	RiskFreeRate float64
	Volatility   float64 // annualized, decimal
}

// Greeks holds first and second order sensitivities of one unit.
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64 // per year
	Vega  float64 // per 1 vol point
}

// Oracle prices option legs. Implementations must be deterministic.
type Oracle interface {
	Price(in Input) float64
	Greeks(in Input) Greeks
}

// YearsBetween returns the calendar time from now to expiry in years, floored at zero.
func YearsBetween(now, expiry time.Time) float64 {
	d := expiry.Sub(now)
	if d <= 0 {
		return 0
	}
	return d.Hours() / 24 / 365
}
