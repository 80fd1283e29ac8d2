package reporting

import (
	"time"

	"options-sim-lab/internal/decision"
	"options-sim-lab/internal/domain"
)

// Report represents one backtest run rendered for humans and tools.
type Report struct {
	// Metadata
	GeneratedAt time.Time           `json:"generated_at"`
	Run         *domain.BacktestRun `json:"run"`

	// Performance
	Summary     *domain.PerformanceSummary `json:"summary"`
	WorstPeriod *domain.PeriodPnL          `json:"worst_period,omitempty"`

	// Scenario Sensitivity (latest run per scenario of the same profile)
	ScenarioSensitivity []ScenarioSensitivityRow `json:"scenario_sensitivity,omitempty"`
	Verdict             *decision.Result         `json:"verdict,omitempty"` // nil until realistic and pessimistic runs exist

	// Detail
	Trades      []*domain.TradeRecord `json:"trades"`
	EquityCurve []domain.EquityPoint  `json:"equity_curve"`
}

// ScenarioSensitivityRow compares one scenario against realistic costs.
type ScenarioSensitivityRow struct {
	ScenarioID     string  `json:"scenario_id"`
	RunID          string  `json:"run_id"`
	TotalTrades    int     `json:"total_trades"`
	PnLTotal       float64 `json:"pnl_total"`
	TotalReturnPct float64 `json:"total_return_pct"`
	MaxDrawdownPct float64 `json:"max_drawdown_pct"`
	Sharpe         float64 `json:"sharpe"`
	DegradationPct float64 `json:"degradation_pct"`  // (realistic - this) / |realistic| * 100, 0 if realistic == 0
}
