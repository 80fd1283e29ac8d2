package decision

import (
	"errors"

	"options-sim-lab/internal/domain"
)

// ErrNoRealisticScenario is returned when no realistic scenario data is found.
var ErrNoRealisticScenario = errors.New("no realistic scenario data found")

// ErrMissingPessimisticScenario is returned when pessimistic scenario data is missing.
var ErrMissingPessimisticScenario = errors.New("missing pessimistic scenario data")

// BuildInput creates the gate input from per-scenario summaries of one
// profile, as returned by metrics.Aggregator.ScenarioSensitivity.
// Realistic and pessimistic summaries are required; degraded is optional.
func BuildInput(sums []*domain.PerformanceSummary) (*Input, error) {
	var realistic, pessimistic, degraded *domain.PerformanceSummary
	for _, s := range sums {
		switch s.ScenarioID {
		case domain.ScenarioRealistic:
			realistic = s
		case domain.ScenarioPessimistic:
			pessimistic = s
		case domain.ScenarioDegraded:
			degraded = s
		}
	}
	if realistic == nil {
		return nil, ErrNoRealisticScenario
	}
	if pessimistic == nil {
		return nil, ErrMissingPessimisticScenario
	}

	in := &Input{
		ProfileID:            realistic.ProfileID,
		RealisticTrades:      realistic.TotalTrades,
		RealisticPnL:         realistic.PnLTotal,
		RealisticMedianPnL:   realistic.PnLMedian,
		RealisticDrawdownPct: realistic.MaxDrawdownPct,
		MaxConsecutiveLosses: realistic.MaxConsecutiveLosses,
		PessimisticPnL:       pessimistic.PnLTotal,
	}
	if degraded != nil {
		in.HasDegraded = true
		in.DegradedPnL = degraded.PnLTotal
		in.DegradedDDPct = degraded.MaxDrawdownPct
	}
	return in, nil
}
