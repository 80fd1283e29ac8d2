package decision

// Decision represents the final GO/NO-GO result.
type Decision string

const (
	DecisionGO   Decision = "GO"
	DecisionNOGO Decision = "NO-GO"
)

// Input contains the scenario metrics of one profile.
type Input struct {
	ProfileID string

	// Realistic scenario
	RealisticTrades      int
	RealisticPnL         float64
	RealisticMedianPnL   float64
	RealisticDrawdownPct float64
	MaxConsecutiveLosses int

	// Cost stress
	PessimisticPnL float64
	HasDegraded    bool
	DegradedPnL    float64
	DegradedDDPct  float64
}

// Thresholds parameterize the gate.
type Thresholds struct {
	MinTrades            int     // realistic closed trades needed for a verdict
	MinStabilityRatio    float64 // pessimistic / realistic P&L
	MaxDrawdownPct       float64 // realistic, fraction of peak
	MaxDegradedDDPct     float64 // degraded, fraction of peak
	MaxConsecutiveLosses int
}

// DefaultThresholds returns the thresholds used by reports and sweeps.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinTrades:            10,
		MinStabilityRatio:    0.5,
		MaxDrawdownPct:       0.25,
		MaxDegradedDDPct:     0.5,
		MaxConsecutiveLosses: 6,
	}
}

// CriterionResult represents pass/fail for one criterion.
type CriterionResult struct {
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
	Pass      bool   `json:"pass"`
}

// Result contains the final decision with checklist.
type Result struct {
	ProfileID  string            `json:"profile_id"`
	Decision   Decision          `json:"decision"`
	GOCriteria []CriterionResult `json:"go_criteria"`
	NOGOChecks []CriterionResult `json:"nogo_checks"` // Pass=false means triggered
}
