package decision

import "fmt"

// Evaluator evaluates decision criteria.
type Evaluator struct {
	th Thresholds
}

// NewEvaluator creates a new decision evaluator.
func NewEvaluator(th Thresholds) *Evaluator {
	return &Evaluator{th: th}
}

// Evaluate produces a Result from input.
// GO if ALL criteria pass and NO NO-GO triggers.
// NO-GO if ANY criterion fails or ANY trigger fires.
func (e *Evaluator) Evaluate(input Input) *Result {
	goCriteria := e.evaluateGOCriteria(input)
	nogoChecks := e.evaluateNOGOTriggers(input)

	decision := DecisionGO
	if anyFailed(goCriteria) || anyFailed(nogoChecks) {
		decision = DecisionNOGO
	}

	return &Result{
		ProfileID:  input.ProfileID,
		Decision:   decision,
		GOCriteria: goCriteria,
		NOGOChecks: nogoChecks,
	}
}

func (e *Evaluator) evaluateGOCriteria(input Input) []CriterionResult {
	criteria := make([]CriterionResult, 5)

	criteria[0] = CriterionResult{
		Name:      "Sample size",
		Threshold: fmt.Sprintf(">= %d trades", e.th.MinTrades),
		Actual:    fmt.Sprintf("%d", input.RealisticTrades),
		Pass:      input.RealisticTrades >= e.th.MinTrades,
	}

	criteria[1] = CriterionResult{
		Name:      "Realistic P&L",
		Threshold: "> 0",
		Actual:    fmt.Sprintf("%.2f", input.RealisticPnL),
		Pass:      input.RealisticPnL > 0,
	}

	criteria[2] = CriterionResult{
		Name:      "Median trade",
		Threshold: "> 0",
		Actual:    fmt.Sprintf("%.2f", input.RealisticMedianPnL),
		Pass:      input.RealisticMedianPnL > 0,
	}

	// Stable under pessimistic costs: PessimisticPnL > 0 AND ratio >= MinStabilityRatio
	stabilityPass := false
	var stabilityActual string
	if input.RealisticPnL > 0 {
		ratio := input.PessimisticPnL / input.RealisticPnL
		stabilityPass = input.PessimisticPnL > 0 && ratio >= e.th.MinStabilityRatio
		stabilityActual = fmt.Sprintf("Pessimistic=%.2f, Ratio=%.2f", input.PessimisticPnL, ratio)
	} else {
		stabilityActual = fmt.Sprintf("Pessimistic=%.2f, Realistic=%.2f", input.PessimisticPnL, input.RealisticPnL)
	}
	criteria[3] = CriterionResult{
		Name:      "Stable under pessimistic costs",
		Threshold: fmt.Sprintf("Pessimistic > 0 AND ratio >= %.2f", e.th.MinStabilityRatio),
		Actual:    stabilityActual,
		Pass:      stabilityPass,
	}

	criteria[4] = CriterionResult{
		Name:      "Drawdown",
		Threshold: fmt.Sprintf("<= %.1f%%", e.th.MaxDrawdownPct*100),
		Actual:    fmt.Sprintf("%.1f%%", input.RealisticDrawdownPct*100),
		Pass:      input.RealisticDrawdownPct <= e.th.MaxDrawdownPct,
	}

	return criteria
}

// Pass=true means NOT triggered, Pass=false means triggered.
func (e *Evaluator) evaluateNOGOTriggers(input Input) []CriterionResult {
	checks := make([]CriterionResult, 4)

	checks[0] = CriterionResult{
		Name:      "Realistic loss",
		Threshold: "<= 0",
		Actual:    fmt.Sprintf("%.2f", input.RealisticPnL),
		Pass:      input.RealisticPnL > 0,
	}

	checks[1] = CriterionResult{
		Name:      "Edge disappears under pessimistic costs",
		Threshold: "Realistic > 0 AND Pessimistic <= 0",
		Actual:    fmt.Sprintf("Realistic=%.2f, Pessimistic=%.2f", input.RealisticPnL, input.PessimisticPnL),
		Pass:      !(input.RealisticPnL > 0 && input.PessimisticPnL <= 0),
	}

	checks[2] = CriterionResult{
		Name:      "Loss streak",
		Threshold: fmt.Sprintf("> %d consecutive", e.th.MaxConsecutiveLosses),
		Actual:    fmt.Sprintf("%d", input.MaxConsecutiveLosses),
		Pass:      input.MaxConsecutiveLosses <= e.th.MaxConsecutiveLosses,
	}

	degraded := CriterionResult{
		Name:      "Degraded drawdown",
		Threshold: fmt.Sprintf("> %.1f%%", e.th.MaxDegradedDDPct*100),
		Actual:    "no degraded run",
		Pass:      true,
	}
	if input.HasDegraded {
		degraded.Actual = fmt.Sprintf("%.1f%% (P&L %.2f)", input.DegradedDDPct*100, input.DegradedPnL)
		degraded.Pass = input.DegradedDDPct <= e.th.MaxDegradedDDPct
	}
	checks[3] = degraded

	return checks
}

func anyFailed(cs []CriterionResult) bool {
	for _, c := range cs {
		if !c.Pass {
			return true
		}
	}
	return false
}
