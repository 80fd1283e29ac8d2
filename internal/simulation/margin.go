package simulation

import (
	"math"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/pricing"
	"options-sim-lab/internal/trade"
)

// MarginRequirement returns rate × |qty| × reference × multiplier summed over
// short legs. The reference is the strike for options and spot for futures.
func MarginRequirement(t *trade.Trade, spot, rate float64) float64 {
	margin := 0.0
	for _, l := range t.Legs() {
		if !l.IsShort() {
			continue
		}
		ref := l.Strike
		if !l.IsOption() {
			ref = spot
		}
		margin += rate * float64(l.Contracts()) * ref * t.Multiplier()
	}
	return margin
}

// isStrangle reports whether a trade pairs calls with puts.
func isStrangle(t *trade.Trade) bool {
	var calls, puts bool
	for _, l := range t.Legs() {
		switch l.Type {
		case domain.OptionCall:
			calls = true
		case domain.OptionPut:
			puts = true
		}
	}
	return calls && puts
}

// theoretical returns the per-unit value of a leg at bar, intrinsic once expired.
func (s *Simulator) theoretical(bar domain.Bar, l trade.Leg) float64 {
	if l.ExpiredOn(bar.Date) {
		return l.Intrinsic(bar.Close)
	}
	return s.oracle.Price(s.pricingInput(bar, l))
}

func (s *Simulator) pricingInput(bar domain.Bar, l trade.Leg) pricing.Input {
	return pricing.Input{
		Type:         l.Type,
		Spot:         bar.Close,
		Strike:       l.Strike,
		TimeToExpiry: pricing.YearsBetween(bar.Date, l.Expiry),
		RiskFreeRate: s.cfg.RiskFreeRate,
		Volatility:   bar.Volatility(s.cfg.DefaultVIX),
	}
}

func (s *Simulator) theoreticalPrices(bar domain.Bar, t *trade.Trade) []float64 {
	legs := t.Legs()
	prices := make([]float64, len(legs))
	for i, l := range legs {
		prices[i] = s.theoretical(bar, l)
	}
	return prices
}

// portfolioDelta sums share-equivalent delta over open legs.
func (s *Simulator) portfolioDelta(bar domain.Bar) float64 {
	delta := 0.0
	for _, t := range s.active {
		for _, l := range t.Legs() {
			if l.ExpiredOn(bar.Date) {
				continue
			}
			g := s.oracle.Greeks(s.pricingInput(bar, l))
			delta += float64(l.Quantity) * g.Delta * t.Multiplier()
		}
	}
	return delta
}

// hedgeShares is the whole-share underlying position that neutralizes delta.
func hedgeShares(delta float64) float64 {
	r := math.Round(delta)
	if r == 0 {
		return 0
	}
	return -r
}
