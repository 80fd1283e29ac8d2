package strategy

import (
	"fmt"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/trade"
)

// ShortStrangleStrategy sells an out-of-the-money call and put when
// volatility is elevated and buys them back once enough of the credit has
// decayed.
type ShortStrangleStrategy struct {
	Symbol          string
	Contracts       int
	DTE             int
	WingPct         float64 // strikes at spot × (1 ± WingPct)
	MinVIX          float64 // no entries below this VIX level
	ProfitTargetPct float64 // share of the credit captured before exit
	DefaultVIX      float64 // assumed when a bar has no VIX
	Multiplier      float64
}

// NewShortStrangleStrategy creates a new ShortStrangleStrategy.
func NewShortStrangleStrategy(symbol string, contracts, dte int, wingPct, minVIX, profitTargetPct, multiplier float64) *ShortStrangleStrategy {
	return &ShortStrangleStrategy{
		Symbol:          symbol,
		Contracts:       contracts,
		DTE:             dte,
		WingPct:         wingPct,
		MinVIX:          minVIX,
		ProfitTargetPct: profitTargetPct,
		DefaultVIX:      domain.DefaultVIX,
		Multiplier:      multiplier,
	}
}

// Name returns the profile id used to prefix trade ids.
func (s *ShortStrangleStrategy) Name() string {
	return domain.ProfileShortStrangle
}

// ID returns the strategy identifier including parameters.
func (s *ShortStrangleStrategy) ID() string {
	return fmt.Sprintf("SHORT_STRANGLE_x%d_dte%d_wing%.0f_vix%.0f_tp%.0f",
		s.Contracts, s.DTE, s.WingPct*100, s.MinVIX, s.ProfitTargetPct*100)
}

// EntryLogic enters when flat and VIX is at or above the floor.
func (s *ShortStrangleStrategy) EntryLogic(bar domain.Bar, current *trade.Trade) (bool, error) {
	if current != nil {
		return false, nil
	}
	return bar.VIXOr(s.DefaultVIX) >= s.MinVIX, nil
}

// TradeConstructor sells Contracts calls and puts on either side of spot.
func (s *ShortStrangleStrategy) TradeConstructor(bar domain.Bar, tradeID string) (*trade.Trade, error) {
	expiry := expiryFrom(bar, s.DTE)
	callStrike := roundStrike(bar.Close * (1 + s.WingPct))
	putStrike := roundStrike(bar.Close * (1 - s.WingPct))

	symbol := s.Symbol
	if symbol == "" {
		symbol = bar.Symbol
	}
	return trade.NewMultiLeg(tradeID, s.Name(), symbol, []trade.Leg{
		trade.NewOptionLeg(domain.OptionCall, callStrike, -s.Contracts, expiry),
		trade.NewOptionLeg(domain.OptionPut, putStrike, -s.Contracts, expiry),
	}, s.Multiplier)
}

// ExitLogic buys back once the captured premium reaches the target share
// of the credit received.
func (s *ShortStrangleStrategy) ExitLogic(_ domain.Bar, t *trade.Trade) (bool, error) {
	credit := creditOf(t)
	if credit == 0 {
		return false, nil
	}
	return t.UnrealizedPnL() >= s.ProfitTargetPct*credit, nil
}

var _ Strategy = (*ShortStrangleStrategy)(nil)
