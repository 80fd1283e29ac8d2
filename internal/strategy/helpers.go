package strategy

import (
	"math"
	"time"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/trade"
)

// expiryFrom returns the calendar date dte days after the bar.
func expiryFrom(bar domain.Bar, dte int) time.Time {
	return bar.Day().AddDate(0, 0, dte)
}

// roundStrike snaps a price to the nearest whole-dollar strike.
// Strikes never round to zero.
func roundStrike(price float64) float64 {
	return math.Max(1, math.Round(price))
}

// creditOf returns the premium received by a credit trade, zero for debits.
func creditOf(t *trade.Trade) float64 {
	if t.EntryCost() >= 0 {
		return 0
	}
	return -t.EntryCost()
}

// entryUnderlying returns the fill price of the trade's first leg.
// For a futures trade this is the underlying level at entry.
func entryUnderlying(t *trade.Trade) float64 {
	legs := t.Legs()
	if len(legs) == 0 {
		return 0
	}
	return legs[0].EntryPrice
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
