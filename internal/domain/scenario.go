package domain

// ScenarioConfig scales execution costs to stress a run.
// Multipliers apply on top of the execution model's calibrated values.
type ScenarioConfig struct {
	ScenarioID           string  `yaml:"id" json:"id"` // "optimistic" | "realistic" | "pessimistic" | "degraded"
	SpreadMultiplier     float64 `yaml:"spread_multiplier" json:"spread_multiplier"`
	SlippageMultiplier   float64 `yaml:"slippage_multiplier" json:"slippage_multiplier"`
	CommissionMultiplier float64 `yaml:"commission_multiplier" json:"commission_multiplier"`
	ParticipationRate    float64 `yaml:"participation_rate" json:"participation_rate"` // share of option volume we may take
}

// Scenario ID constants
const (
	ScenarioOptimistic  = "optimistic"
	ScenarioRealistic   = "realistic"
	ScenarioPessimistic = "pessimistic"
	ScenarioDegraded    = "degraded"
)

// Predefined scenario configurations
var (
	ScenarioConfigOptimistic = ScenarioConfig{
		ScenarioID:           ScenarioOptimistic,
		SpreadMultiplier:     0.75,
		SlippageMultiplier:   0.5,
		CommissionMultiplier: 1.0,
		ParticipationRate:    0.20,
	}

	ScenarioConfigRealistic = ScenarioConfig{
		ScenarioID:           ScenarioRealistic,
		SpreadMultiplier:     1.0,
		SlippageMultiplier:   1.0,
		CommissionMultiplier: 1.0,
		ParticipationRate:    0.10,
	}

	ScenarioConfigPessimistic = ScenarioConfig{
		ScenarioID:           ScenarioPessimistic,
		SpreadMultiplier:     1.5,
		SlippageMultiplier:   2.0,
		CommissionMultiplier: 1.25,
		ParticipationRate:    0.05,
	}

	ScenarioConfigDegraded = ScenarioConfig{
		ScenarioID:           ScenarioDegraded,
		SpreadMultiplier:     2.5,
		SlippageMultiplier:   3.0,
		CommissionMultiplier: 1.5,
		ParticipationRate:    0.02,
	}
)

// ScenarioByID returns a predefined scenario, or false if the id is unknown.
func ScenarioByID(id string) (ScenarioConfig, bool) {
	switch id {
	case ScenarioOptimistic:
		return ScenarioConfigOptimistic, true
	case ScenarioRealistic, "":
		return ScenarioConfigRealistic, true
	case ScenarioPessimistic:
		return ScenarioConfigPessimistic, true
	case ScenarioDegraded:
		return ScenarioConfigDegraded, true
	default:
		return ScenarioConfig{}, false
	}
}
