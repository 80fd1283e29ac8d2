package metrics

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage"
)

// ErrNoRuns is returned when no persisted runs match the query.
var ErrNoRuns = errors.New("no runs available for aggregation")

// Aggregator computes performance summaries from persisted runs.
type Aggregator struct {
	runStore    storage.RunStore
	tradeStore  storage.TradeRecordStore
	equityStore storage.EquityCurveStore
}

// NewAggregator creates a new metrics aggregator.
func NewAggregator(runStore storage.RunStore, tradeStore storage.TradeRecordStore, equityStore storage.EquityCurveStore) *Aggregator {
	return &Aggregator{
		runStore:    runStore,
		tradeStore:  tradeStore,
		equityStore: equityStore,
	}
}

// ComputeForRun loads a run with its trades and equity curve and summarizes it.
// Monthly realized P&L is attached. Returns storage.ErrNotFound for an unknown run.
func (a *Aggregator) ComputeForRun(ctx context.Context, runID string) (*domain.PerformanceSummary, error) {
	run, err := a.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	trades, err := a.tradeStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load trades of %s: %w", runID, err)
	}

	points, err := a.equityStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load equity curve of %s: %w", runID, err)
	}
	curve := make([]domain.EquityPoint, len(points))
	for i, p := range points {
		curve[i] = *p
	}

	sum := Compute(trades, curve, run.InitialCapital)
	sum.RunID = run.RunID
	sum.ProfileID = run.ProfileID
	sum.ScenarioID = run.ScenarioID

	sum.Periods, err = RealizedByPeriod(trades, domain.PeriodMonthly)
	if err != nil {
		return nil, err
	}

	return sum, nil
}

// ScenarioSensitivity summarizes the latest run of a profile under each scenario.
// Summaries are ordered by scenario id. Returns ErrNoRuns when the profile has no runs.
func (a *Aggregator) ScenarioSensitivity(ctx context.Context, profileID string) ([]*domain.PerformanceSummary, error) {
	runs, err := a.runStore.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	// GetAll is newest first, so the first run seen per scenario is the latest
	latest := make(map[string]string)
	for _, r := range runs {
		if r.ProfileID != profileID || r.Status != domain.RunStatusCompleted {
			continue
		}
		if _, seen := latest[r.ScenarioID]; !seen {
			latest[r.ScenarioID] = r.RunID
		}
	}
	if len(latest) == 0 {
		return nil, ErrNoRuns
	}

	scenarios := make([]string, 0, len(latest))
	for s := range latest {
		scenarios = append(scenarios, s)
	}
	sort.Strings(scenarios)

	out := make([]*domain.PerformanceSummary, 0, len(scenarios))
	for _, s := range scenarios {
		sum, err := a.ComputeForRun(ctx, latest[s])
		if err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, nil
}
