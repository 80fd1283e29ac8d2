package strategy

import (
	"errors"
	"fmt"
	"sort"

	"options-sim-lab/internal/domain"
)

// Factory errors
var (
	ErrUnknownProfile        = errors.New("unknown strategy profile")
	ErrMissingDTE            = errors.New("profile requires dte")
	ErrMissingProfitTarget   = errors.New("profile requires profit_target_pct")
	ErrMissingWingPct        = errors.New("SHORT_STRANGLE requires wing_pct")
	ErrMissingRangeThreshold = errors.New("FUTURES_MOMENTUM requires range_threshold")
	ErrMissingStopPct        = errors.New("FUTURES_MOMENTUM requires stop_pct")
	ErrInvalidParam          = errors.New("invalid profile parameter")
)

// defaultContracts is used when a profile does not size itself.
const defaultContracts = 1

// Env carries simulation settings a strategy must agree with.
type Env struct {
	Multiplier float64 // contract multiplier applied to every trade
	DefaultVIX float64 // VIX assumed for bars without one; zero means domain.DefaultVIX
}

type builder func(cfg domain.ProfileConfig, env Env) (Strategy, error)

// registry maps profile ids to their implementations.
var registry = map[string]builder{
	domain.ProfileLongCall:        fromLongCallConfig,
	domain.ProfileShortStrangle:   fromShortStrangleConfig,
	domain.ProfileFuturesMomentum: fromFuturesMomentumConfig,
}

// Profiles returns the registered profile ids in sorted order.
func Profiles() []string {
	ids := make([]string, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FromConfig creates a Strategy from domain.ProfileConfig.
// Validates required parameters per profile.
func FromConfig(cfg domain.ProfileConfig, env Env) (Strategy, error) {
	build, ok := registry[cfg.ProfileID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, cfg.ProfileID)
	}
	if env.Multiplier <= 0 {
		return nil, fmt.Errorf("%w: multiplier must be positive", ErrInvalidParam)
	}
	if env.DefaultVIX < 0 {
		return nil, fmt.Errorf("%w: default vix must be >= 0, got %v", ErrInvalidParam, env.DefaultVIX)
	}
	if env.DefaultVIX == 0 {
		env.DefaultVIX = domain.DefaultVIX
	}
	return build(cfg, env)
}

// common validates sizing and expiry shared by every profile.
func common(cfg domain.ProfileConfig) (contracts, dte int, err error) {
	if cfg.DTE == nil {
		return 0, 0, ErrMissingDTE
	}
	dte = *cfg.DTE
	if dte <= 0 {
		return 0, 0, fmt.Errorf("%w: dte must be positive, got %d", ErrInvalidParam, dte)
	}
	contracts = intOr(cfg.Contracts, defaultContracts)
	if contracts <= 0 {
		return 0, 0, fmt.Errorf("%w: contracts must be positive, got %d", ErrInvalidParam, contracts)
	}
	return contracts, dte, nil
}

func positivePct(name string, v float64) error {
	if !(v > 0) {
		return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParam, name, v)
	}
	return nil
}

// fromLongCallConfig creates LongCallStrategy from config.
func fromLongCallConfig(cfg domain.ProfileConfig, env Env) (Strategy, error) {
	contracts, dte, err := common(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.ProfitTargetPct == nil {
		return nil, ErrMissingProfitTarget
	}
	if err := positivePct("profit_target_pct", *cfg.ProfitTargetPct); err != nil {
		return nil, err
	}

	return NewLongCallStrategy(cfg.Symbol, contracts, dte, *cfg.ProfitTargetPct, env.Multiplier), nil
}

// fromShortStrangleConfig creates ShortStrangleStrategy from config.
func fromShortStrangleConfig(cfg domain.ProfileConfig, env Env) (Strategy, error) {
	contracts, dte, err := common(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.WingPct == nil {
		return nil, ErrMissingWingPct
	}
	if cfg.ProfitTargetPct == nil {
		return nil, ErrMissingProfitTarget
	}
	wing := *cfg.WingPct
	if !(wing > 0) || wing >= 1 {
		return nil, fmt.Errorf("%w: wing_pct must be in (0, 1), got %v", ErrInvalidParam, wing)
	}
	if err := positivePct("profit_target_pct", *cfg.ProfitTargetPct); err != nil {
		return nil, err
	}
	minVIX := floatOr(cfg.MinVIX, 0)
	if minVIX < 0 {
		return nil, fmt.Errorf("%w: min_vix must be >= 0, got %v", ErrInvalidParam, minVIX)
	}

	s := NewShortStrangleStrategy(cfg.Symbol, contracts, dte, wing, minVIX, *cfg.ProfitTargetPct, env.Multiplier)
	s.DefaultVIX = env.DefaultVIX
	return s, nil
}

// fromFuturesMomentumConfig creates FuturesMomentumStrategy from config.
func fromFuturesMomentumConfig(cfg domain.ProfileConfig, env Env) (Strategy, error) {
	contracts, dte, err := common(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RangeThreshold == nil {
		return nil, ErrMissingRangeThreshold
	}
	if cfg.StopPct == nil {
		return nil, ErrMissingStopPct
	}
	threshold := *cfg.RangeThreshold
	if !(threshold > 0) || threshold > 1 {
		return nil, fmt.Errorf("%w: range_threshold must be in (0, 1], got %v", ErrInvalidParam, threshold)
	}
	if err := positivePct("stop_pct", *cfg.StopPct); err != nil {
		return nil, err
	}
	target := floatOr(cfg.ProfitTargetPct, 0)
	if target < 0 {
		return nil, fmt.Errorf("%w: profit_target_pct must be >= 0, got %v", ErrInvalidParam, target)
	}

	return NewFuturesMomentumStrategy(cfg.Symbol, contracts, dte, threshold, *cfg.StopPct, target, env.Multiplier), nil
}
