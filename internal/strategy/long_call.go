package strategy

import (
	"fmt"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/trade"
)

// LongCallStrategy buys an at-the-money call whenever flat and takes profit
// at a fixed share of the premium paid. Losers run to expiry unless a
// simulator risk stop closes them first.
type LongCallStrategy struct {
	Symbol          string
	Contracts       int
	DTE             int     // calendar days to expiry at entry
	ProfitTargetPct float64 // e.g. 0.50 = exit at +50% of premium
	Multiplier      float64
}

// NewLongCallStrategy creates a new LongCallStrategy.
func NewLongCallStrategy(symbol string, contracts, dte int, profitTargetPct, multiplier float64) *LongCallStrategy {
	return &LongCallStrategy{
		Symbol:          symbol,
		Contracts:       contracts,
		DTE:             dte,
		ProfitTargetPct: profitTargetPct,
		Multiplier:      multiplier,
	}
}

// Name returns the profile id used to prefix trade ids.
func (s *LongCallStrategy) Name() string {
	return domain.ProfileLongCall
}

// ID returns the strategy identifier including parameters.
func (s *LongCallStrategy) ID() string {
	return fmt.Sprintf("LONG_CALL_x%d_dte%d_tp%.0f", s.Contracts, s.DTE, s.ProfitTargetPct*100)
}

// EntryLogic enters whenever there is no open position.
func (s *LongCallStrategy) EntryLogic(_ domain.Bar, current *trade.Trade) (bool, error) {
	return current == nil, nil
}

// TradeConstructor buys Contracts calls struck at the rounded spot.
func (s *LongCallStrategy) TradeConstructor(bar domain.Bar, tradeID string) (*trade.Trade, error) {
	leg := trade.NewOptionLeg(domain.OptionCall, roundStrike(bar.Close), s.Contracts, expiryFrom(bar, s.DTE))
	return trade.NewSimple(tradeID, s.Name(), s.symbolFor(bar), leg, s.Multiplier)
}

// ExitLogic takes profit once unrealized P&L reaches the target share of cost.
func (s *LongCallStrategy) ExitLogic(_ domain.Bar, t *trade.Trade) (bool, error) {
	if t.EntryCost() <= 0 {
		return false, nil
	}
	return t.UnrealizedPnL() >= s.ProfitTargetPct*t.EntryCost(), nil
}

func (s *LongCallStrategy) symbolFor(bar domain.Bar) string {
	if s.Symbol != "" {
		return s.Symbol
	}
	return bar.Symbol
}

var _ Strategy = (*LongCallStrategy)(nil)
