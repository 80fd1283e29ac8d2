// Package trade holds the trade and leg lifecycle: construction, fills,
// mark-to-market and close.
package trade

import (
	"errors"
	"fmt"
	"math"
	"time"

	"options-sim-lab/internal/domain"
)

// Trade errors
var (
	ErrInvalidLeg    = errors.New("invalid leg")
	ErrInvalidTrade  = errors.New("invalid trade")
	ErrNotPending    = errors.New("trade is not pending")
	ErrNotOpen       = errors.New("trade is not open")
	ErrAlreadyClosed = errors.New("trade is closed and immutable")
	ErrPriceCount    = errors.New("price count does not match leg count")
	ErrInvalidPrice  = errors.New("price must be finite and non-negative")
)

// Kind fixes the trade's schema at construction.
type Kind string

// Kind constants
const (
	KindSimple   Kind = "simple"
	KindMultiLeg Kind = "multi_leg"
)

// Direction of a simple trade.
type Direction string

// Direction constants
const (
	DirectionLong  Direction = "long"
	DirectionShort Direction = "short"
)

// Status is the trade lifecycle state.
type Status string

// Status constants
const (
	StatusPending Status = "PENDING" // constructed, not filled
	StatusOpen    Status = "OPEN"
	StatusClosed  Status = "CLOSED"
)

// Trade is a position of one or more legs opened atomically.
// A closed trade rejects every mutation.
type Trade struct {
	id          string
	profileName string
	kind        Kind
	symbol      string
	direction   Direction
	multiplier  float64
	legs        []Leg
	status      Status

	entryDate       time.Time
	entryCost       float64
	entryCommission float64

	exitDate       time.Time
	exitProceeds   float64
	exitCommission float64
	exitReason     string

	marketValue   float64
	unrealizedPnL float64
	realizedPnL   float64
}

// NewSimple builds a single-leg trade. Direction follows the leg's sign.
func NewSimple(id, profileName, symbol string, leg Leg, multiplier float64) (*Trade, error) {
	dir := DirectionLong
	if leg.IsShort() {
		dir = DirectionShort
	}
	return build(id, profileName, symbol, KindSimple, dir, []Leg{leg}, multiplier)
}

// NewMultiLeg builds a trade of two or more legs.
func NewMultiLeg(id, profileName, symbol string, legs []Leg, multiplier float64) (*Trade, error) {
	if len(legs) < 2 {
		return nil, fmt.Errorf("%w: multi-leg trade needs at least 2 legs, got %d", ErrInvalidTrade, len(legs))
	}
	return build(id, profileName, symbol, KindMultiLeg, "", legs, multiplier)
}

func build(id, profileName, symbol string, kind Kind, dir Direction, legs []Leg, multiplier float64) (*Trade, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidTrade)
	}
	if multiplier <= 0 || math.IsNaN(multiplier) {
		return nil, fmt.Errorf("%w: multiplier must be positive", ErrInvalidTrade)
	}
	owned := make([]Leg, len(legs))
	for i, l := range legs {
		if err := l.validate(i); err != nil {
			return nil, err
		}
		l.Status = LegOpen
		l.EntryPrice, l.ExitPrice = 0, 0
		owned[i] = l
	}
	return &Trade{
		id:          id,
		profileName: profileName,
		kind:        kind,
		symbol:      symbol,
		direction:   dir,
		multiplier:  multiplier,
		legs:        owned,
		status:      StatusPending,
	}, nil
}

// CostAt returns the signed entry cost the trade would have at prices:
// positive for a debit, negative for a credit.
func (t *Trade) CostAt(prices []float64) (float64, error) {
	if err := t.checkPrices(prices); err != nil {
		return 0, err
	}
	cost := 0.0
	for i, l := range t.legs {
		cost += l.Value(prices[i], t.multiplier)
	}
	return cost, nil
}

// Open fills every leg at prices on date.
func (t *Trade) Open(date time.Time, prices []float64, commission float64) error {
	if t.status == StatusClosed {
		return ErrAlreadyClosed
	}
	if t.status != StatusPending {
		return ErrNotPending
	}
	cost, err := t.CostAt(prices)
	if err != nil {
		return err
	}
	for i := range t.legs {
		t.legs[i].EntryPrice = prices[i]
	}
	t.entryDate = date
	t.entryCost = cost
	t.entryCommission = commission
	t.marketValue = cost
	t.unrealizedPnL = -commission
	t.status = StatusOpen
	return nil
}

// MarkToMarket revalues the open legs. It is a no-op on a closed trade.
func (t *Trade) MarkToMarket(prices []float64) error {
	switch t.status {
	case StatusClosed:
		return nil
	case StatusPending:
		return ErrNotOpen
	}
	value, err := t.CostAt(prices)
	if err != nil {
		return err
	}
	t.marketValue = value
	t.unrealizedPnL = value - t.entryCost - t.entryCommission
	return nil
}

// Close liquidates every leg at prices. Legs whose expiry is on or before
// date are marked EXPIRED, the rest CLOSED. Realized P&L is fixed here.
func (t *Trade) Close(date time.Time, prices []float64, commission float64, reason string) error {
	switch t.status {
	case StatusClosed:
		return ErrAlreadyClosed
	case StatusPending:
		return ErrNotOpen
	}
	proceeds, err := t.CostAt(prices)
	if err != nil {
		return err
	}
	for i := range t.legs {
		t.legs[i].ExitPrice = prices[i]
		if t.legs[i].ExpiredOn(date) {
			t.legs[i].Status = LegExpired
		} else {
			t.legs[i].Status = LegClosed
		}
	}
	t.exitDate = date
	t.exitProceeds = proceeds
	t.exitCommission = commission
	t.exitReason = reason
	t.realizedPnL = proceeds - t.entryCost - t.entryCommission - commission
	t.marketValue = 0
	t.unrealizedPnL = 0
	t.status = StatusClosed
	return nil
}

func (t *Trade) checkPrices(prices []float64) error {
	if len(prices) != len(t.legs) {
		return fmt.Errorf("%w: %d prices for %d legs", ErrPriceCount, len(prices), len(t.legs))
	}
	for i, p := range prices {
		if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
			return fmt.Errorf("%w: leg %d price %v", ErrInvalidPrice, i, p)
		}
	}
	return nil
}

// HasExpiredLeg reports whether any leg expires on or before day.
func (t *Trade) HasExpiredLeg(day time.Time) bool {
	for _, l := range t.legs {
		if l.ExpiredOn(day) {
			return true
		}
	}
	return false
}

// NearestExpiry returns the earliest leg expiry.
func (t *Trade) NearestExpiry() time.Time {
	var nearest time.Time
	for i, l := range t.legs {
		if i == 0 || l.Expiry.Before(nearest) {
			nearest = l.Expiry
		}
	}
	return nearest
}

// HasOptionLeg reports whether any leg is a call or put.
func (t *Trade) HasOptionLeg() bool {
	for _, l := range t.legs {
		if l.IsOption() {
			return true
		}
	}
	return false
}

// DaysHeld returns calendar days from entry to asOf (or to exit once closed).
func (t *Trade) DaysHeld(asOf time.Time) int {
	if t.status == StatusClosed {
		asOf = t.exitDate
	}
	return calendarDays(t.entryDate, asOf)
}

// Record returns the persisted form of a closed trade.
func (t *Trade) Record(runID string) domain.TradeRecord {
	legs := make([]domain.LegRecord, len(t.legs))
	for i, l := range t.legs {
		legs[i] = l.record()
	}
	return domain.TradeRecord{
		TradeID:         t.id,
		RunID:           runID,
		ProfileName:     t.profileName,
		Kind:            string(t.kind),
		Symbol:          t.symbol,
		Direction:       string(t.direction),
		Legs:            legs,
		EntryDate:       t.entryDate,
		EntryCost:       t.entryCost,
		EntryCommission: t.entryCommission,
		ExitDate:        t.exitDate,
		ExitProceeds:    t.exitProceeds,
		ExitCommission:  t.exitCommission,
		ExitReason:      t.exitReason,
		RealizedPnL:     t.realizedPnL,
		HoldDays:        t.DaysHeld(t.exitDate),
	}
}

func (t *Trade) ID() string { return t.id }
func (t *Trade) ProfileName() string { return t.profileName }
func (t *Trade) Kind() Kind { return t.kind }
func (t *Trade) Symbol() string { return t.symbol }
func (t *Trade) Direction() Direction { return t.direction }
func (t *Trade) Multiplier() float64 { return t.multiplier }
func (t *Trade) Status() Status { return t.status }
func (t *Trade) IsOpen() bool { return t.status == StatusOpen }
func (t *Trade) IsClosed() bool { return t.status == StatusClosed }
func (t *Trade) EntryDate() time.Time { return t.entryDate }
func (t *Trade) EntryCost() float64 { return t.entryCost }
func (t *Trade) EntryCommission() float64 { return t.entryCommission }
func (t *Trade) ExitDate() time.Time { return t.exitDate }
func (t *Trade) ExitProceeds() float64 { return t.exitProceeds }
func (t *Trade) ExitCommission() float64 { return t.exitCommission }
func (t *Trade) ExitReason() string { return t.exitReason }
func (t *Trade) MarketValue() float64 { return t.marketValue }
func (t *Trade) UnrealizedPnL() float64 { return t.unrealizedPnL }
func (t *Trade) RealizedPnL() float64 { return t.realizedPnL }
func (t *Trade) IsCredit() bool { return t.entryCost < 0 }
func (t *Trade) LegCount() int { return len(t.legs) }

// Legs returns a copy of the legs.
func (t *Trade) Legs() []Leg {
	out := make([]Leg, len(t.legs))
	copy(out, t.legs)
	return out
}
