package domain

import (
	"encoding/json"
	"time"
)

// BacktestRun describes one simulator run and its headline result.
type BacktestRun struct {
	RunID          string          `json:"run_id"`           // base58(sha256(config))
	ProfileID      string          `json:"profile_id"`
	Symbol         string          `json:"symbol"`
	ScenarioID     string          `json:"scenario_id"`
	ConfigJSON     json.RawMessage `json:"config,omitempty"` // canonical run configuration
	StartedAt      time.Time       `json:"started_at"`
	FinishedAt     time.Time       `json:"finished_at"`
	BarCount       int             `json:"bar_count"`
	InitialCapital float64         `json:"initial_capital"`
	FinalEquity    float64         `json:"final_equity"`
	FinalCash      float64         `json:"final_cash"`
	TotalTrades    int             `json:"total_trades"`
	RejectedOrders int             `json:"rejected_orders"`
	FeesPaid       float64         `json:"fees_paid"`
	Status         string          `json:"status"`           // "completed" | "failed"
	Error          string          `json:"error,omitempty"`
}

// Run status constants
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)
