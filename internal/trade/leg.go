package trade

import (
	"fmt"
	"math"
	"time"

	"options-sim-lab/internal/domain"
)

// LegStatus is the lifecycle state of one leg.
type LegStatus string

// Leg status constants
const (
	LegOpen    LegStatus = "OPEN"
	LegClosed  LegStatus = "CLOSED"
	LegExpired LegStatus = "EXPIRED"
)

// Leg is one contract position inside a trade.
// Quantity is signed: positive long, negative short.
type Leg struct {
	Strike   float64
	Type     domain.OptionType
	Quantity int
	Expiry   time.Time

	Status     LegStatus
	EntryPrice float64
	ExitPrice  float64
}

// NewOptionLeg builds a call or put leg.
func NewOptionLeg(t domain.OptionType, strike float64, quantity int, expiry time.Time) Leg {
	return Leg{Strike: strike, Type: t, Quantity: quantity, Expiry: expiry}
}

// NewFutureLeg builds a futures leg. Futures have no strike.
func NewFutureLeg(quantity int, expiry time.Time) Leg {
	return Leg{Type: domain.OptionNone, Quantity: quantity, Expiry: expiry}
}

// IsShort reports whether the leg was sold to open.
func (l Leg) IsShort() bool {
	return l.Quantity < 0
}

// IsOption reports whether the leg is a call or put.
func (l Leg) IsOption() bool {
	return l.Type == domain.OptionCall || l.Type == domain.OptionPut
}

// Contracts returns the unsigned contract count.
func (l Leg) Contracts() int {
	if l.Quantity < 0 {
		return -l.Quantity
	}
	return l.Quantity
}

// Value is the signed dollar value of the leg at price.
func (l Leg) Value(price, multiplier float64) float64 {
	return float64(l.Quantity) * price * multiplier
}

// Intrinsic returns the per-unit settlement value at spot.
func (l Leg) Intrinsic(spot float64) float64 {
	return domain.IntrinsicValue(l.Type, spot, l.Strike)
}

// DTE returns whole calendar days from now to expiry, never negative.
func (l Leg) DTE(now time.Time) int {
	d := calendarDays(now, l.Expiry)
	if d < 0 {
		return 0
	}
	return d
}

// ExpiredOn reports whether the leg's expiry date is on or before day.
func (l Leg) ExpiredOn(day time.Time) bool {
	return calendarDays(day, l.Expiry) <= 0
}

// Moneyness returns |strike/spot - 1|, zero for futures.
func (l Leg) Moneyness(spot float64) float64 {
	if !l.IsOption() || spot <= 0 {
		return 0
	}
	return math.Abs(l.Strike/spot - 1)
}

func (l Leg) validate(i int) error {
	if l.Quantity == 0 {
		return fmt.Errorf("%w: leg %d has zero quantity", ErrInvalidLeg, i)
	}
	if !l.Type.Valid() {
		return fmt.Errorf("%w: leg %d has unknown option type %q", ErrInvalidLeg, i, l.Type)
	}
	if l.IsOption() && (l.Strike <= 0 || math.IsNaN(l.Strike)) {
		return fmt.Errorf("%w: leg %d strike must be positive", ErrInvalidLeg, i)
	}
	if l.Expiry.IsZero() {
		return fmt.Errorf("%w: leg %d has no expiry", ErrInvalidLeg, i)
	}
	return nil
}

func (l Leg) record() domain.LegRecord {
	return domain.LegRecord{
		Strike:     l.Strike,
		OptionType: string(l.Type),
		Quantity:   l.Quantity,
		Expiry:     l.Expiry,
		EntryPrice: l.EntryPrice,
		ExitPrice:  l.ExitPrice,
		Status:     string(l.Status),
	}
}

// calendarDays counts date boundaries from a to b, ignoring clock time.
func calendarDays(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
