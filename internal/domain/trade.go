package domain

import "time"

// TradeRecord is the persisted form of a closed trade.
type TradeRecord struct {
	TradeID     string      `json:"trade_id"`            // strategy name + monotonic counter
	RunID       string      `json:"run_id"`              // backtest run that produced it
	ProfileName string      `json:"profile"`
	Kind        string      `json:"kind"`                // "simple" | "multi_leg"
	Symbol      string      `json:"symbol"`
	Direction   string      `json:"direction,omitempty"` // simple trades only: "long" | "short"
	Legs        []LegRecord `json:"legs"`

	// Entry
	EntryDate       time.Time `json:"entry_date"`
	EntryCost       float64   `json:"entry_cost"`       // signed: positive debit, negative credit
	EntryCommission float64   `json:"entry_commission"`

	// Exit
	ExitDate       time.Time `json:"exit_date"`
	ExitProceeds   float64   `json:"exit_proceeds"`   // signed liquidation value received at exit
	ExitCommission float64   `json:"exit_commission"`
	ExitReason     string    `json:"exit_reason"`

	// Outcome
	RealizedPnL float64 `json:"realized_pnl"`
	HoldDays    int     `json:"hold_days"`
}

// LegRecord is the persisted form of one trade leg.
type LegRecord struct {
	Strike     float64   `json:"strike"`
	OptionType string    `json:"option_type"` // "call" | "put" | "" for futures
	Quantity   int       `json:"quantity"`    // signed contracts
	Expiry     time.Time `json:"expiry"`
	EntryPrice float64   `json:"entry_price"`
	ExitPrice  float64   `json:"exit_price"`
	Status     string    `json:"status"`
}

// Exit reason codes
const (
	ExitReasonStrategy   = "STRATEGY_EXIT"
	ExitReasonExpiration = "EXPIRATION"
	ExitReasonStopLoss   = "STOP_LOSS"
	ExitReasonTimeStop   = "TIME_STOP"
	ExitReasonRoll       = "ROLL"
)

// Outcome class constants
const (
	OutcomeClassWin  = "WIN"
	OutcomeClassLoss = "LOSS"
)

// OutcomeClass classifies realized P&L.
func OutcomeClass(realized float64) string {
	if realized > 0 {
		return OutcomeClassWin
	}
	return OutcomeClassLoss
}
