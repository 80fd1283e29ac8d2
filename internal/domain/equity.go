package domain

import "time"

// EquityPoint is one per-bar snapshot of portfolio state.
type EquityPoint struct {
	RunID            string    `json:"run_id,omitempty"`
	Date             time.Time `json:"date"`
	Equity           float64   `json:"equity"` // cash + liquidation value of open trades
	Cash             float64   `json:"cash"`
	ActiveTradeCount int       `json:"active_trade_count"`
	TradingHalted    bool      `json:"trading_halted"`
	NetDelta         float64   `json:"net_delta,omitempty"`    // share-equivalent delta, hedge reporting only
	HedgeShares      float64   `json:"hedge_shares,omitempty"` // shares that would neutralize NetDelta
}
