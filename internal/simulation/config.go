package simulation

import (
	"fmt"
	"math"

	"options-sim-lab/internal/domain"
)

// Config holds simulator options.
type Config struct {
	InitialCapital      float64 `yaml:"initial_capital" json:"initial_capital"`
	DeltaHedgeEnabled   bool    `yaml:"delta_hedge_enabled" json:"delta_hedge_enabled"`
	RollDTEThreshold    int     `yaml:"roll_dte_threshold" json:"roll_dte_threshold"`       // 0 disables
	MaxLossPct          float64 `yaml:"max_loss_pct" json:"max_loss_pct"`                   // 0 disables
	MaxDaysInTrade      int     `yaml:"max_days_in_trade" json:"max_days_in_trade"`         // 0 disables
	DailyLossLimitPct   float64 `yaml:"daily_loss_limit_pct" json:"daily_loss_limit_pct"`   // 0 disables
	EnforceExecutionLag bool    `yaml:"enforce_execution_lag" json:"enforce_execution_lag"` // false is for debugging only
	RiskFreeRate        float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
	DefaultVIX          float64 `yaml:"default_vix" json:"default_vix"`
	ContractMultiplier  float64 `yaml:"contract_multiplier" json:"contract_multiplier"`
	MarginRate          float64 `yaml:"margin_rate" json:"margin_rate"` // share of short notional held as margin
	AuditTolerance      float64 `yaml:"audit_tolerance" json:"audit_tolerance"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		InitialCapital:      100000,
		DailyLossLimitPct:   0.02,
		EnforceExecutionLag: true,
		RiskFreeRate:        0.04,
		DefaultVIX:          domain.DefaultVIX,
		ContractMultiplier:  100,
		MarginRate:          0.20,
		AuditTolerance:      1e-6,
	}
}

// Validate rejects unusable options instead of defaulting them.
func (c Config) Validate() error {
	if !(c.InitialCapital > 0) || math.IsInf(c.InitialCapital, 0) {
		return fmt.Errorf("%w: initial_capital must be positive, got %v", ErrInvalidConfig, c.InitialCapital)
	}
	if c.RollDTEThreshold < 0 {
		return fmt.Errorf("%w: roll_dte_threshold must be >= 0", ErrInvalidConfig)
	}
	if c.MaxDaysInTrade < 0 {
		return fmt.Errorf("%w: max_days_in_trade must be >= 0", ErrInvalidConfig)
	}
	if c.MaxLossPct < 0 || math.IsNaN(c.MaxLossPct) {
		return fmt.Errorf("%w: max_loss_pct must be >= 0", ErrInvalidConfig)
	}
	if c.DailyLossLimitPct < 0 || c.DailyLossLimitPct >= 1 || math.IsNaN(c.DailyLossLimitPct) {
		return fmt.Errorf("%w: daily_loss_limit_pct must be in [0, 1)", ErrInvalidConfig)
	}
	if math.IsNaN(c.RiskFreeRate) || math.IsInf(c.RiskFreeRate, 0) {
		return fmt.Errorf("%w: risk_free_rate must be finite", ErrInvalidConfig)
	}
	if !(c.DefaultVIX > 0) {
		return fmt.Errorf("%w: default_vix must be positive", ErrInvalidConfig)
	}
	if !(c.ContractMultiplier > 0) {
		return fmt.Errorf("%w: contract_multiplier must be positive", ErrInvalidConfig)
	}
	if !(c.MarginRate > 0) || c.MarginRate > 1 {
		return fmt.Errorf("%w: margin_rate must be in (0, 1]", ErrInvalidConfig)
	}
	if !(c.AuditTolerance > 0) {
		return fmt.Errorf("%w: audit_tolerance must be positive", ErrInvalidConfig)
	}
	return nil
}
