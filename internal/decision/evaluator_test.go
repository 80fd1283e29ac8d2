package decision

import (
	"errors"
	"strings"
	"testing"

	"options-sim-lab/internal/domain"
)

func goodInput() Input {
	return Input{
		ProfileID:            domain.ProfileShortStrangle,
		RealisticTrades:      24,
		RealisticPnL:         12000,
		RealisticMedianPnL:   350,
		RealisticDrawdownPct: 0.12,
		MaxConsecutiveLosses: 3,
		PessimisticPnL:       8000,
		HasDegraded:          true,
		DegradedPnL:          2000,
		DegradedDDPct:        0.3,
	}
}

func TestEvaluate_GO(t *testing.T) {
	result := NewEvaluator(DefaultThresholds()).Evaluate(goodInput())

	if result.Decision != DecisionGO {
		t.Errorf("Expected GO, got %s", result.Decision)
	}
	if result.ProfileID != domain.ProfileShortStrangle {
		t.Errorf("ProfileID = %q", result.ProfileID)
	}
	for i, c := range result.GOCriteria {
		if !c.Pass {
			t.Errorf("GO criterion %d (%s) should pass, got fail", i+1, c.Name)
		}
	}
	for i, c := range result.NOGOChecks {
		if !c.Pass {
			t.Errorf("NO-GO trigger %d (%s) should not be triggered", i+1, c.Name)
		}
	}
}

func TestEvaluate_NOGO(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Input)
		failed  string
		trigger bool
	}{
		{"small sample", func(in *Input) { in.RealisticTrades = 4 }, "Sample size", false},
		{"negative median", func(in *Input) { in.RealisticMedianPnL = -10 }, "Median trade", false},
		{"unstable", func(in *Input) { in.PessimisticPnL = 3000 }, "Stable under pessimistic costs", false},
		{"deep drawdown", func(in *Input) { in.RealisticDrawdownPct = 0.4 }, "Drawdown", false},
		{"realistic loss", func(in *Input) { in.RealisticPnL = -500 }, "Realistic loss", true},
		{"edge disappears", func(in *Input) { in.PessimisticPnL = -1 }, "Edge disappears under pessimistic costs", true},
		{"loss streak", func(in *Input) { in.MaxConsecutiveLosses = 9 }, "Loss streak", true},
		{"degraded drawdown", func(in *Input) { in.DegradedDDPct = 0.7 }, "Degraded drawdown", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := goodInput()
			tt.mutate(&in)
			result := NewEvaluator(DefaultThresholds()).Evaluate(in)

			if result.Decision != DecisionNOGO {
				t.Fatalf("Expected NO-GO, got %s", result.Decision)
			}
			checks := result.GOCriteria
			if tt.trigger {
				checks = result.NOGOChecks
			}
			found := false
			for _, c := range checks {
				if c.Name == tt.failed {
					found = true
					if c.Pass {
						t.Errorf("%s should fail", c.Name)
					}
				}
			}
			if !found {
				t.Errorf("criterion %q not evaluated", tt.failed)
			}
		})
	}
}

func TestEvaluate_NoDegradedRunDoesNotTrigger(t *testing.T) {
	in := goodInput()
	in.HasDegraded = false
	in.DegradedDDPct = 0.99

	result := NewEvaluator(DefaultThresholds()).Evaluate(in)
	if result.Decision != DecisionGO {
		t.Errorf("Expected GO without a degraded run, got %s", result.Decision)
	}
	if got := result.NOGOChecks[3].Actual; got != "no degraded run" {
		t.Errorf("degraded actual = %q", got)
	}
}

func TestBuildInput(t *testing.T) {
	sums := []*domain.PerformanceSummary{
		{ProfileID: "iron_condor", ScenarioID: domain.ScenarioOptimistic, PnLTotal: 9999},
		{ProfileID: "iron_condor", ScenarioID: domain.ScenarioRealistic, TotalTrades: 12, PnLTotal: 500,
			PnLMedian: 40, MaxDrawdownPct: 0.08, MaxConsecutiveLosses: 2},
		{ProfileID: "iron_condor", ScenarioID: domain.ScenarioPessimistic, PnLTotal: 300},
	}

	in, err := BuildInput(sums)
	if err != nil {
		t.Fatalf("BuildInput failed: %v", err)
	}
	if in.ProfileID != "iron_condor" || in.RealisticTrades != 12 || in.RealisticPnL != 500 {
		t.Errorf("unexpected realistic fields: %+v", in)
	}
	if in.PessimisticPnL != 300 {
		t.Errorf("PessimisticPnL = %v, want 300", in.PessimisticPnL)
	}
	if in.HasDegraded {
		t.Error("HasDegraded should be false")
	}

	if _, err := BuildInput(sums[:1]); !errors.Is(err, ErrNoRealisticScenario) {
		t.Errorf("expected ErrNoRealisticScenario, got %v", err)
	}
	if _, err := BuildInput(sums[:2]); !errors.Is(err, ErrMissingPessimisticScenario) {
		t.Errorf("expected ErrMissingPessimisticScenario, got %v", err)
	}
}

func TestRenderMarkdown(t *testing.T) {
	in := goodInput()
	in.PessimisticPnL = -100
	md := RenderMarkdown(NewEvaluator(DefaultThresholds()).Evaluate(in))

	for _, want := range []string{
		"## Cost Robustness Gate: NO-GO",
		"### GO Criteria",
		"### NO-GO Triggers",
		"| 2 | Edge disappears under pessimistic costs |",
		"TRIGGERED",
		"- NO-GO trigger fired: Edge disappears under pessimistic costs",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}
