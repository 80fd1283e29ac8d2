package strategy

import (
	"fmt"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/execution"
	"options-sim-lab/internal/trade"
)

// FuturesMomentumStrategy buys a future when a bar closes near its high and
// exits on a trailing stop from the highest close since entry, or on an
// optional profit target.
type FuturesMomentumStrategy struct {
	Symbol          string
	Contracts       int
	DTE             int
	RangeThreshold  float64 // enter when the close is in the top RangeThreshold of the range
	StopPct         float64 // trail below the peak close since entry
	ProfitTargetPct float64 // 0 disables
	Multiplier      float64

	// Highest close since entry of the one open trade. Switching to a new
	// trade id drops the previous trade's peak however it was closed.
	peakTrade string
	peak      float64
}

// NewFuturesMomentumStrategy creates a new FuturesMomentumStrategy.
func NewFuturesMomentumStrategy(symbol string, contracts, dte int, rangeThreshold, stopPct, profitTargetPct, multiplier float64) *FuturesMomentumStrategy {
	return &FuturesMomentumStrategy{
		Symbol:          symbol,
		Contracts:       contracts,
		DTE:             dte,
		RangeThreshold:  rangeThreshold,
		StopPct:         stopPct,
		ProfitTargetPct: profitTargetPct,
		Multiplier:      multiplier,
	}
}

// Name returns the profile id used to prefix trade ids.
func (s *FuturesMomentumStrategy) Name() string {
	return domain.ProfileFuturesMomentum
}

// ID returns the strategy identifier including parameters.
func (s *FuturesMomentumStrategy) ID() string {
	return fmt.Sprintf("FUTURES_MOMENTUM_x%d_range%.0f_trail%.0f_tp%.0f",
		s.Contracts, s.RangeThreshold*100, s.StopPct*100, s.ProfitTargetPct*100)
}

// EntryLogic enters when flat and the bar closes in the top of its range.
// Doji bars sit at the neutral midpoint and only qualify for thresholds of
// at least one half.
func (s *FuturesMomentumStrategy) EntryLogic(bar domain.Bar, current *trade.Trade) (bool, error) {
	if current != nil {
		return false, nil
	}
	return execution.RangePosition(bar) >= 1-s.RangeThreshold, nil
}

// TradeConstructor buys Contracts futures expiring DTE days out.
func (s *FuturesMomentumStrategy) TradeConstructor(bar domain.Bar, tradeID string) (*trade.Trade, error) {
	symbol := s.Symbol
	if symbol == "" {
		symbol = bar.Symbol
	}
	return trade.NewSimple(tradeID, s.Name(), symbol, trade.NewFutureLeg(s.Contracts, expiryFrom(bar, s.DTE)), s.Multiplier)
}

// ExitLogic applies the trailing stop and profit target.
func (s *FuturesMomentumStrategy) ExitLogic(bar domain.Bar, t *trade.Trade) (bool, error) {
	entry := entryUnderlying(t)
	if entry <= 0 {
		return false, fmt.Errorf("trade %s has no entry price", t.ID())
	}

	if s.peakTrade != t.ID() {
		s.peakTrade, s.peak = t.ID(), entry
	}
	s.peak = max(s.peak, bar.Close)

	exit := bar.Close <= s.peak*(1-s.StopPct)
	if s.ProfitTargetPct > 0 && bar.Close >= entry*(1+s.ProfitTargetPct) {
		exit = true
	}
	return exit, nil
}

var _ Strategy = (*FuturesMomentumStrategy)(nil)
