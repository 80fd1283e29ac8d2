package execution

import (
	"errors"
	"fmt"

	"options-sim-lab/internal/domain"
)

// Config errors
var (
	ErrInvalidConfig = errors.New("invalid execution config")
)

// Config holds the calibrated constants of the cost model.
type Config struct {
	// Spread
	BaseSpreadATM      float64 `yaml:"base_spread_atm" json:"base_spread_atm"`           // dollars, near-the-money single legs
	BaseSpreadStrangle float64 `yaml:"base_spread_strangle" json:"base_spread_strangle"` // dollars, strangle wings
	MinSpread          float64 `yaml:"min_spread" json:"min_spread"`
	MoneynessSlope     float64 `yaml:"moneyness_slope" json:"moneyness_slope"`           // widening per unit of |moneyness|
	VIXFloor           float64 `yaml:"vix_floor" json:"vix_floor"`                       // no volatility widening at or below
	VIXSlope           float64 `yaml:"vix_slope" json:"vix_slope"`                       // widening per VIX point above the floor
	MaxVolFactor       float64 `yaml:"max_vol_factor" json:"max_vol_factor"`
	SpreadMultiplier   float64 `yaml:"spread_multiplier" json:"spread_multiplier"`

	// Slippage as a fraction of the half-spread, by order size
	SlippageSmall      float64 `yaml:"slippage_small" json:"slippage_small"`           // quantity <= 10
	SlippageMedium     float64 `yaml:"slippage_medium" json:"slippage_medium"`         // quantity <= 50
	SlippageLarge      float64 `yaml:"slippage_large" json:"slippage_large"`           // quantity > 50
	SlippageMultiplier float64 `yaml:"slippage_multiplier" json:"slippage_multiplier"`

	// Liquidity
	ParticipationRate   float64 `yaml:"participation_rate" json:"participation_rate"`       // max share of option volume per fill
	MinOpenInterest     float64 `yaml:"min_open_interest" json:"min_open_interest"`
	DefaultOptionVolume float64 `yaml:"default_option_volume" json:"default_option_volume"` // used when a bar carries none
	DefaultOpenInterest float64 `yaml:"default_open_interest" json:"default_open_interest"`

	// Fees
	CommissionPerContract float64 `yaml:"commission_per_contract" json:"commission_per_contract"`
	OCCFeePerContract     float64 `yaml:"occ_fee_per_contract" json:"occ_fee_per_contract"`
	FINRAFeePerContract   float64 `yaml:"finra_fee_per_contract" json:"finra_fee_per_contract"`   // short sales only
	SECFeeRate            float64 `yaml:"sec_fee_rate" json:"sec_fee_rate"`                       // of principal, sells only
	MinCommission         float64 `yaml:"min_commission" json:"min_commission"`
	CommissionMultiplier  float64 `yaml:"commission_multiplier" json:"commission_multiplier"`

	ContractMultiplier float64 `yaml:"contract_multiplier" json:"contract_multiplier"`
}

// DefaultConfig returns the calibrated defaults.
func DefaultConfig() Config {
	return Config{
		BaseSpreadATM:      0.03,
		BaseSpreadStrangle: 0.05,
		MinSpread:          0.01,
		MoneynessSlope:     4.0,
		VIXFloor:           15,
		VIXSlope:           0.05,
		MaxVolFactor:       3.0,
		SpreadMultiplier:   1.0,

		SlippageSmall:      0.05,
		SlippageMedium:     0.25,
		SlippageLarge:      0.50,
		SlippageMultiplier: 1.0,

		ParticipationRate:   0.10,
		MinOpenInterest:     100,
		DefaultOptionVolume: 10000,
		DefaultOpenInterest: 5000,

		CommissionPerContract: 0.65,
		OCCFeePerContract:     0.055,
		FINRAFeePerContract:   0.00279,
		SECFeeRate:            0.0000278,
		MinCommission:         1.00,
		CommissionMultiplier:  1.0,

		ContractMultiplier: 100,
	}
}

// WithScenario applies a cost scenario on top of c.
func (c Config) WithScenario(s domain.ScenarioConfig) Config {
	if s.SpreadMultiplier > 0 {
		c.SpreadMultiplier = s.SpreadMultiplier
	}
	if s.SlippageMultiplier > 0 {
		c.SlippageMultiplier = s.SlippageMultiplier
	}
	if s.CommissionMultiplier > 0 {
		c.CommissionMultiplier = s.CommissionMultiplier
	}
	if s.ParticipationRate > 0 {
		c.ParticipationRate = s.ParticipationRate
	}
	return c
}

// Validate checks that every constant is usable.
func (c Config) Validate() error {
	nonNegative := map[string]float64{
		"base_spread_atm":         c.BaseSpreadATM,
		"base_spread_strangle":    c.BaseSpreadStrangle,
		"moneyness_slope":         c.MoneynessSlope,
		"vix_floor":               c.VIXFloor,
		"vix_slope":               c.VIXSlope,
		"slippage_small":          c.SlippageSmall,
		"slippage_medium":         c.SlippageMedium,
		"slippage_large":          c.SlippageLarge,
		"min_open_interest":       c.MinOpenInterest,
		"default_option_volume":   c.DefaultOptionVolume,
		"default_open_interest":   c.DefaultOpenInterest,
		"commission_per_contract": c.CommissionPerContract,
		"occ_fee_per_contract":    c.OCCFeePerContract,
		"finra_fee_per_contract":  c.FINRAFeePerContract,
		"sec_fee_rate":            c.SECFeeRate,
		"min_commission":          c.MinCommission,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidConfig, name, v)
		}
	}
	if c.MinSpread <= 0 {
		return fmt.Errorf("%w: min_spread must be > 0", ErrInvalidConfig)
	}
	if c.MaxVolFactor < 1 {
		return fmt.Errorf("%w: max_vol_factor must be >= 1", ErrInvalidConfig)
	}
	if c.ParticipationRate <= 0 || c.ParticipationRate > 1 {
		return fmt.Errorf("%w: participation_rate must be in (0, 1]", ErrInvalidConfig)
	}
	if c.SpreadMultiplier <= 0 || c.SlippageMultiplier <= 0 || c.CommissionMultiplier <= 0 {
		return fmt.Errorf("%w: multipliers must be > 0", ErrInvalidConfig)
	}
	if c.ContractMultiplier <= 0 {
		return fmt.Errorf("%w: contract_multiplier must be > 0", ErrInvalidConfig)
	}
	return nil
}
