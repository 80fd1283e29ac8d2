package execution

import (
	"fmt"
	"math"
)

// Order is a single-leg fill request with its market context.
type Order struct {
	Side         Side
	Quantity     int // contracts, positive
	Mid          float64
	Moneyness    float64
	DTE          int
	VIX          float64
	Hour         int
	Strangle     bool
	OptionVolume float64
	OpenInterest float64
	Multiplier   float64 // 0 = config contract multiplier
	OpensShort   bool    // a sell that opens a short position
}

// Result is the outcome of executing an Order.
type Result struct {
	Requested      int
	Filled         int
	Unfilled       int
	Price          float64 // per unit, zero when nothing filled
	Spread         float64
	Slippage       float64 // |Price - Mid| per unit
	Commission     float64
	TotalCost      float64 // slippage dollars + commission
	FillConfidence float64
}

// FullyFilled reports whether the whole request was filled.
func (r Result) FullyFilled() bool {
	return r.Requested > 0 && r.Filled == r.Requested
}

// ExecuteOrder composes spread, fill quantity, execution price and commission.
// A zero fill returns a zero-cost result.
func (m *Model) ExecuteOrder(o Order) (Result, error) {
	if _, err := ParseSide(string(o.Side)); err != nil {
		return Result{}, err
	}
	if o.Quantity <= 0 {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidQuantity, o.Quantity)
	}

	spread, err := m.Spread(o.Mid, o.Moneyness, o.DTE, o.VIX, o.Hour, o.Strangle)
	if err != nil {
		return Result{}, err
	}

	filled, confidence := m.FillQuantity(o.Quantity, o.OptionVolume, o.OpenInterest, o.VIX, o.Hour)
	res := Result{
		Requested:      o.Quantity,
		Filled:         filled,
		Unfilled:       o.Quantity - filled,
		Spread:         spread,
		FillConfidence: confidence,
	}
	if filled == 0 {
		return res, nil
	}

	price, err := m.ExecutionPrice(o.Mid, o.Side, filled, spread)
	if err != nil {
		return Result{}, err
	}

	mult := o.Multiplier
	if mult <= 0 {
		mult = m.cfg.ContractMultiplier
	}

	res.Price = price
	res.Slippage = math.Abs(price - o.Mid)
	res.Commission = m.Commission(filled, price, SaleFor(o.Side, o.OpensShort))
	res.TotalCost = res.Slippage*float64(filled)*mult + res.Commission
	return res, nil
}
