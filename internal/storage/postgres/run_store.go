package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

var _ storage.RunStore = (*RunStore)(nil)

const selectRunSQL = `
	SELECT
		run_id, profile_id, symbol, scenario_id, config_json,
		started_at, finished_at, bar_count,
		initial_capital, final_equity, final_cash,
		total_trades, rejected_orders, fees_paid, status, error
	FROM backtest_runs
`

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.BacktestRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO backtest_runs (
			run_id, profile_id, symbol, scenario_id, config_json,
			started_at, finished_at, bar_count,
			initial_capital, final_equity, final_cash,
			total_trades, rejected_orders, fees_paid, status, error
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8,
			$9, $10, $11,
			$12, $13, $14, $15, $16
		)
	`

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.ProfileID, r.Symbol, r.ScenarioID, r.ConfigJSON,
		r.StartedAt, r.FinishedAt, r.BarCount,
		r.InitialCapital, r.FinalEquity, r.FinalCash,
		r.TotalTrades, r.RejectedOrders, r.FeesPaid, r.Status, r.Error,
	)
	return translate(err, "insert backtest run")
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.BacktestRun, error) {
	row := s.pool.QueryRow(ctx, selectRunSQL+` WHERE run_id = $1`, runID)
	r, err := scanRun(row)
	if err != nil {
		return nil, translate(err, "get backtest run by id")
	}
	return r, nil
}

// GetByProfileScenario retrieves runs for a profile/scenario combination, newest first.
func (s *RunStore) GetByProfileScenario(ctx context.Context, profileID, scenarioID string) ([]*domain.BacktestRun, error) {
	rows, err := s.pool.Query(ctx, selectRunSQL+`
		WHERE profile_id = $1 AND scenario_id = $2
		ORDER BY started_at DESC, run_id ASC
	`, profileID, scenarioID)
	if err != nil {
		return nil, fmt.Errorf("get backtest runs by profile/scenario: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetAll retrieves all runs, newest first.
func (s *RunStore) GetAll(ctx context.Context) ([]*domain.BacktestRun, error) {
	rows, err := s.pool.Query(ctx, selectRunSQL+` ORDER BY started_at DESC, run_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("get all backtest runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func scanRun(row pgx.Row) (*domain.BacktestRun, error) {
	var r domain.BacktestRun
	err := row.Scan(
		&r.RunID, &r.ProfileID, &r.Symbol, &r.ScenarioID, &r.ConfigJSON,
		&r.StartedAt, &r.FinishedAt, &r.BarCount,
		&r.InitialCapital, &r.FinalEquity, &r.FinalCash,
		&r.TotalTrades, &r.RejectedOrders, &r.FeesPaid, &r.Status, &r.Error,
	)
	if err != nil {
		return nil, err
	}
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()
	return &r, nil
}

func scanRuns(rows pgx.Rows) ([]*domain.BacktestRun, error) {
	var runs []*domain.BacktestRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan backtest run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backtest run rows: %w", err)
	}
	return runs, nil
}
