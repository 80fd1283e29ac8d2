// Package execution models bid/ask spreads, partial fills, slippage and fees
// for option and futures orders.
package execution

import (
	"errors"
	"fmt"
	"math"
)

// Model errors
var (
	ErrInvalidSide     = errors.New("side must be exactly \"buy\" or \"sell\"")
	ErrInvalidPrice    = errors.New("mid price must be finite and non-negative")
	ErrInvalidQuantity = errors.New("quantity must be positive")
)

// Side is the direction of a fill.
type Side string

// Side constants
const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide accepts only the exact strings "buy" and "sell".
func ParseSide(s string) (Side, error) {
	switch Side(s) {
	case SideBuy, SideSell:
		return Side(s), nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidSide, s)
	}
}

// Model is a stateless cost model. Safe for concurrent use.
type Model struct {
	cfg Config
}

// NewModel validates cfg and returns a model.
func NewModel(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Model{cfg: cfg}, nil
}

// Config returns the model's constants.
func (m *Model) Config() Config {
	return m.cfg
}

// Spread returns the full bid/ask width in dollars per unit.
// moneyness is |strike/spot - 1|; the sign is ignored.
func (m *Model) Spread(mid, moneyness float64, dte int, vix float64, hour int, strangle bool) (float64, error) {
	if math.IsNaN(mid) || math.IsInf(mid, 0) || mid < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, mid)
	}

	base := m.cfg.BaseSpreadATM
	if strangle {
		base = m.cfg.BaseSpreadStrangle
	}

	spread := base *
		m.moneynessFactor(moneyness) *
		dteFactor(dte) *
		m.volFactor(vix) *
		timeOfDayFactor(hour) *
		m.cfg.SpreadMultiplier

	return math.Max(spread, m.cfg.MinSpread), nil
}

func (m *Model) moneynessFactor(moneyness float64) float64 {
	if math.IsNaN(moneyness) {
		return 1
	}
	return 1 + m.cfg.MoneynessSlope*math.Abs(moneyness)
}

func (m *Model) volFactor(vix float64) float64 {
	if math.IsNaN(vix) || vix <= m.cfg.VIXFloor {
		return 1
	}
	return math.Min(m.cfg.MaxVolFactor, 1+(vix-m.cfg.VIXFloor)*m.cfg.VIXSlope)
}

func dteFactor(dte int) float64 {
	switch {
	case dte < 7:
		return 1.5
	case dte < 14:
		return 1.2
	default:
		return 1.0
	}
}

// timeOfDayFactor widens at the open and close and doubles outside regular hours.
func timeOfDayFactor(hour int) float64 {
	switch {
	case hour < 9 || hour >= 16:
		return 2.0
	case hour == 9:
		return 1.5
	case hour == 15:
		return 1.25
	default:
		return 1.0
	}
}

// FillQuantity caps an order by participation in option volume.
// Returns zero with zero confidence when open interest is below the minimum
// or volume is non-positive.
func (m *Model) FillQuantity(orderSize int, volume, openInterest, vix float64, hour int) (int, float64) {
	if orderSize <= 0 || openInterest < m.cfg.MinOpenInterest || volume <= 0 {
		return 0, 0
	}

	capacity := int(math.Floor(volume * m.cfg.ParticipationRate))
	if capacity <= 0 {
		return 0, 0
	}
	filled := orderSize
	if filled > capacity {
		filled = capacity
	}

	confidence := 1.0
	confidence -= math.Min(0.5, 2*float64(orderSize)/volume)
	if vix > 20 {
		confidence -= math.Min(0.3, (vix-20)*0.01)
	}
	switch f := timeOfDayFactor(hour); {
	case f >= 2:
		confidence -= 0.2
	case f > 1:
		confidence -= 0.1
	}

	return filled, clamp(confidence, 0, 1)
}

// ExecutionPrice moves mid by half the spread against the trader plus
// size-tiered slippage. quantity should be the filled quantity.
func (m *Model) ExecutionPrice(mid float64, side Side, quantity int, spread float64) (float64, error) {
	if math.IsNaN(mid) || math.IsInf(mid, 0) || mid < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPrice, mid)
	}
	if _, err := ParseSide(string(side)); err != nil {
		return 0, err
	}

	half := spread / 2
	slip := half * m.slippageFraction(quantity)

	if side == SideBuy {
		return mid + half + slip, nil
	}
	return math.Max(0, mid-half-slip), nil
}

func (m *Model) slippageFraction(quantity int) float64 {
	var f float64
	switch {
	case quantity <= 10:
		f = m.cfg.SlippageSmall
	case quantity <= 50:
		f = m.cfg.SlippageMedium
	default:
		f = m.cfg.SlippageLarge
	}
	return f * m.cfg.SlippageMultiplier
}

// Sale classifies a fill for regulatory fees.
type Sale int

const (
	NotSale   Sale = iota // buys pay neither fee
	LongSale              // sells that close a long pay the SEC fee
	ShortSale             // sells that open a short also pay the FINRA fee
)

// SaleFor classifies a fill on side. opensShort marks a sell that opens a
// short position rather than closing a long one.
func SaleFor(side Side, opensShort bool) Sale {
	switch {
	case side != SideSell:
		return NotSale
	case opensShort:
		return ShortSale
	default:
		return LongSale
	}
}

// Commission returns total fees for a fill, floored at the minimum.
// Zero contracts cost nothing.
func (m *Model) Commission(contracts int, premium float64, sale Sale) float64 {
	if contracts <= 0 {
		return 0
	}
	n := float64(contracts)

	fees := n * (m.cfg.CommissionPerContract + m.cfg.OCCFeePerContract)
	if sale == ShortSale {
		fees += n * m.cfg.FINRAFeePerContract
	}
	if sale != NotSale {
		fees += m.cfg.SECFeeRate * math.Abs(premium) * n * m.cfg.ContractMultiplier
	}
	fees *= m.cfg.CommissionMultiplier

	return math.Max(fees, m.cfg.MinCommission)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
