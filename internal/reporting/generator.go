package reporting

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"options-sim-lab/internal/decision"
	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/metrics"
	"options-sim-lab/internal/storage"
)

// Generator produces reports from stored runs.
type Generator struct {
	runStore    storage.RunStore
	tradeStore  storage.TradeRecordStore
	equityStore storage.EquityCurveStore
	aggregator  *metrics.Aggregator
	now         func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(
	runStore storage.RunStore,
	tradeStore storage.TradeRecordStore,
	equityStore storage.EquityCurveStore,
) *Generator {
	return &Generator{
		runStore:    runStore,
		tradeStore:  tradeStore,
		equityStore: equityStore,
		aggregator:  metrics.NewAggregator(runStore, tradeStore, equityStore),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate produces the report of one persisted run.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	summary, err := g.aggregator.ComputeForRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	trades, err := g.tradeStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}

	points, err := g.equityStore.GetByRunID(ctx, runID)
	if err != nil {
		return nil, err
	}
	curve := make([]domain.EquityPoint, len(points))
	for i, p := range points {
		curve[i] = *p
	}

	sensitivity, err := g.aggregator.ScenarioSensitivity(ctx, run.ProfileID)
	if err != nil && !errors.Is(err, metrics.ErrNoRuns) {
		return nil, err
	}

	r := Build(run, summary, trades, curve, sensitivity)
	r.GeneratedAt = g.now()
	return r, nil
}

// Build assembles a report from in-memory results.
// Used directly when a run is rendered without being persisted.
func Build(
	run *domain.BacktestRun,
	summary *domain.PerformanceSummary,
	trades []*domain.TradeRecord,
	curve []domain.EquityPoint,
	sensitivity []*domain.PerformanceSummary,
) *Report {
	r := &Report{
		GeneratedAt:         time.Now().UTC(),
		Run:                 run,
		Summary:             summary,
		Trades:              trades,
		EquityCurve:         curve,
		ScenarioSensitivity: sensitivityRows(sensitivity),
	}
	if worst, ok := metrics.WorstPeriod(summary.Periods); ok {
		r.WorstPeriod = &worst
	}
	if in, err := decision.BuildInput(sensitivity); err == nil {
		r.Verdict = decision.NewEvaluator(decision.DefaultThresholds()).Evaluate(*in)
	}
	return r
}

// sensitivityRows compares each scenario against the realistic one.
func sensitivityRows(sums []*domain.PerformanceSummary) []ScenarioSensitivityRow {
	if len(sums) == 0 {
		return nil
	}

	realistic := math.NaN()
	for _, s := range sums {
		if s.ScenarioID == domain.ScenarioRealistic {
			realistic = s.PnLTotal
		}
	}

	rows := make([]ScenarioSensitivityRow, len(sums))
	for i, s := range sums {
		rows[i] = ScenarioSensitivityRow{
			ScenarioID:     s.ScenarioID,
			RunID:          s.RunID,
			TotalTrades:    s.TotalTrades,
			PnLTotal:       s.PnLTotal,
			TotalReturnPct: s.TotalReturnPct,
			MaxDrawdownPct: s.MaxDrawdownPct,
			Sharpe:         s.Sharpe,
		}
		if !math.IsNaN(realistic) && realistic != 0 {
			rows[i].DegradationPct = (realistic - s.PnLTotal) / math.Abs(realistic) * 100
		}
	}
	return rows
}
