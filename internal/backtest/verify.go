package backtest

import (
	"context"
	"fmt"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/verification"
)

// VerifyDeterminism executes job twice on fresh simulators and compares
// the closed trades and equity curves. A mismatch returns the report
// together with ErrNonDeterministic.
func (r *Runner) VerifyDeterminism(ctx context.Context, job Job) (*verification.VerificationReport, error) {
	first, err := r.Execute(ctx, job)
	if err != nil {
		return nil, err
	}
	second, err := r.Execute(ctx, job)
	if err != nil {
		return nil, err
	}

	report := verification.CompareRuns(
		first.Run.RunID,
		recordPtrs(first.Result.Records()),
		recordPtrs(second.Result.Records()),
		first.Result.EquityCurve,
		second.Result.EquityCurve,
	)
	if second.Run.RunID != first.Run.RunID {
		return report, fmt.Errorf("%w: run id %s then %s", ErrNonDeterministic, first.Run.RunID, second.Run.RunID)
	}
	if !report.OK() {
		return report, fmt.Errorf("%w: %s", ErrNonDeterministic, report.Summary())
	}
	return report, nil
}

// VerifyRun re-executes a persisted run from its stored config and
// compares the result with the stored trades and equity curve.
// Implements verification.Verifier.
func (r *Runner) VerifyRun(ctx context.Context, runID string) (*verification.VerificationReport, error) {
	run, err := r.stores.Runs.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	job, err := JobFromRun(run)
	if err != nil {
		return nil, err
	}

	replayed, err := r.Execute(ctx, job)
	if err != nil {
		return nil, err
	}
	if replayed.Run.RunID != runID {
		return nil, fmt.Errorf("%w: replay of %s produced run %s", ErrBarsChanged, runID, replayed.Run.RunID)
	}

	stored, err := r.stores.Trades.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	storedCurve, err := r.stores.Equity.GetByRunID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load equity curve: %w", err)
	}

	curve := make([]domain.EquityPoint, len(storedCurve))
	for i, p := range storedCurve {
		curve[i] = *p
	}

	return verification.CompareRuns(runID, stored, recordPtrs(replayed.Result.Records()), curve, replayed.Result.EquityCurve), nil
}

var _ verification.Verifier = (*Runner)(nil)

func recordPtrs(records []domain.TradeRecord) []*domain.TradeRecord {
	out := make([]*domain.TradeRecord, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	return out
}
