package domain

import (
	"fmt"
	"math"
	"time"
)

// DefaultVIX is assumed when a bar carries no VIX observation.
const DefaultVIX = 20.0

// midSessionHour is used for bars without an intraday timestamp.
const midSessionHour = 12

// Bar is one row of the underlying series, optionally carrying option-chain context.
type Bar struct {
	Symbol string
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64

	VIX          *float64 // nil when unobserved
	IV           *float64 // implied volatility override, decimal (0.20 = 20%)
	OptionVolume *float64 // option-chain volume, nil = execution default
	OpenInterest *float64 // option open interest, nil = execution default
}

// VIXOr returns the bar's VIX or def when the bar has none.
func (b Bar) VIXOr(def float64) float64 {
	if b.VIX == nil {
		return def
	}
	return *b.VIX
}

// Volatility returns the annualized volatility used for pricing.
// An explicit IV wins; otherwise VIX/100.
func (b Bar) Volatility(defaultVIX float64) float64 {
	if b.IV != nil && *b.IV > 0 {
		return *b.IV
	}
	return b.VIXOr(defaultVIX) / 100
}

// SessionHour returns the hour of day used for time-of-day spread adjustment.
// Daily bars stamped at midnight are treated as mid-session.
func (b Bar) SessionHour() int {
	h, m, s := b.Date.Clock()
	if h == 0 && m == 0 && s == 0 {
		return midSessionHour
	}
	return h
}

// Day truncates the bar date to its calendar day in the bar's location.
func (b Bar) Day() time.Time {
	y, m, d := b.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, b.Date.Location())
}

// Validate rejects bars with missing or non-finite prices. Optional fields,
// when present, must be finite and non-negative.
func (b Bar) Validate() error {
	if b.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidBar)
	}
	prices := []struct {
		name string
		v    float64
	}{
		{"open", b.Open}, {"high", b.High}, {"low", b.Low}, {"close", b.Close},
	}
	for _, p := range prices {
		if math.IsNaN(p.v) || math.IsInf(p.v, 0) {
			return fmt.Errorf("%w: %s is not finite on %s", ErrInvalidBar, p.name, b.Date.Format(time.DateOnly))
		}
	}
	if b.Close <= 0 {
		return fmt.Errorf("%w: close must be positive on %s", ErrInvalidBar, b.Date.Format(time.DateOnly))
	}
	if b.High < b.Low {
		return fmt.Errorf("%w: high below low on %s", ErrInvalidBar, b.Date.Format(time.DateOnly))
	}
	if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) || b.Volume < 0 {
		return fmt.Errorf("%w: volume is not a valid count on %s", ErrInvalidBar, b.Date.Format(time.DateOnly))
	}
	optional := []struct {
		name string
		v    *float64
	}{
		{"vix", b.VIX}, {"iv", b.IV}, {"option volume", b.OptionVolume}, {"open interest", b.OpenInterest},
	}
	for _, o := range optional {
		if o.v == nil {
			continue
		}
		if v := *o.v; math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be finite and non-negative on %s", ErrInvalidBar, o.name, b.Date.Format(time.DateOnly))
		}
	}
	return nil
}
