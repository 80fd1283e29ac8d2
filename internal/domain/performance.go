package domain

import "time"

// PerformanceSummary holds aggregate statistics for one backtest run.
// Realized statistics come from closed trades; return, drawdown and Sharpe
// come from the per-bar equity curve.
type PerformanceSummary struct {
	RunID      string `json:"run_id"`
	ProfileID  string `json:"profile_id"`
	ScenarioID string `json:"scenario_id"`

	// Counts
	TotalTrades int     `json:"total_trades"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`

	// Realized P&L distribution (currency per trade)
	PnLTotal  float64 `json:"pnl_total"`
	PnLMean   float64 `json:"pnl_mean"`
	PnLMedian float64 `json:"pnl_median"`
	PnLP10    float64 `json:"pnl_p10"`
	PnLP90    float64 `json:"pnl_p90"`
	PnLMin    float64 `json:"pnl_min"`
	PnLMax    float64 `json:"pnl_max"`
	PnLStddev float64 `json:"pnl_stddev"`

	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
	TotalFees            float64 `json:"total_fees"`
	AvgHoldDays          float64 `json:"avg_hold_days"`

	// Equity curve
	InitialCapital float64 `json:"initial_capital"`
	FinalEquity    float64 `json:"final_equity"`
	TotalReturnPct float64 `json:"total_return_pct"`
	MaxDrawdown    float64 `json:"max_drawdown"`     // currency, peak to trough
	MaxDrawdownPct float64 `json:"max_drawdown_pct"` // fraction of the peak
	Sharpe         float64 `json:"sharpe"`           // annualized from per-bar returns
	HaltedBars     int     `json:"halted_bars"`

	// Per-period realized P&L
	Periods []PeriodPnL `json:"periods,omitempty"`
}

// Period granularity constants
const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// PeriodPnL is realized P&L booked by trades exiting within one period.
type PeriodPnL struct {
	Granularity string    `json:"granularity"`
	Start       time.Time `json:"start"`
	Realized    float64   `json:"realized"`
	Trades      int       `json:"trades"`
}
