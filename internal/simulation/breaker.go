package simulation

import "time"

// CircuitBreaker halts new entries once intraday equity drawdown strictly
// exceeds the limit. It resets on the first bar of each new calendar day.
// Exits and expirations are never blocked.
type CircuitBreaker struct {
	limitPct     float64 // 0 disables
	day          time.Time
	startEquity  float64
	halted       bool
	trips        int
	haveFirstDay bool
}

// NewCircuitBreaker creates a breaker with the given daily loss limit.
func NewCircuitBreaker(limitPct float64) *CircuitBreaker {
	return &CircuitBreaker{limitPct: limitPct}
}

// Roll starts a new day when day differs from the current one.
// startEquity becomes the day's baseline. Returns true on rollover.
func (b *CircuitBreaker) Roll(day time.Time, startEquity float64) bool {
	if b.haveFirstDay && sameDay(b.day, day) {
		return false
	}
	b.haveFirstDay = true
	b.day = day
	b.startEquity = startEquity
	b.halted = false
	return true
}

// Observe checks equity against the day's baseline.
// Returns true only on the observation that trips the breaker.
func (b *CircuitBreaker) Observe(equity float64) bool {
	if b.halted || b.limitPct <= 0 || b.startEquity <= 0 {
		return false
	}
	if b.Drawdown(equity) > b.limitPct {
		b.halted = true
		b.trips++
		return true
	}
	return false
}

// Drawdown returns the fractional loss from the day's baseline.
func (b *CircuitBreaker) Drawdown(equity float64) float64 {
	if b.startEquity <= 0 {
		return 0
	}
	return (b.startEquity - equity) / b.startEquity
}

// Halted reports whether entries are blocked.
func (b *CircuitBreaker) Halted() bool { return b.halted }

// Trips returns how many times the breaker has tripped.
func (b *CircuitBreaker) Trips() int { return b.trips }

// StartEquity returns the current day's baseline.
func (b *CircuitBreaker) StartEquity() float64 { return b.startEquity }

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
