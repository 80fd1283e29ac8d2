package storage

import (
	"context"
	"errors"
	"time"

	"options-sim-lab/internal/domain"
)

// Stores are append-only: records are written once and never updated.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("record already stored")
	// ErrInvalidInput marks nil records and empty keys.
	ErrInvalidInput = errors.New("invalid record")
)

// BarStore provides access to bars storage.
type BarStore interface {
	// InsertBulk adds multiple bars. Fails entire batch on duplicate (symbol, date).
	InsertBulk(ctx context.Context, bars []*domain.Bar) error

	// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
	GetBySymbol(ctx context.Context, symbol string) ([]*domain.Bar, error)

	// GetByTimeRange retrieves bars for a symbol within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.Bar, error)

	// Symbols returns every stored symbol in sorted order.
	Symbols(ctx context.Context) ([]string, error)
}

// TradeRecordStore provides access to trade_records storage.
type TradeRecordStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if (run_id, trade_id) exists.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error

	// GetByID retrieves a trade of a run. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID, tradeID string) (*domain.TradeRecord, error)

	// GetByRunID retrieves all trades of a run, ordered by entry_date ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.TradeRecord, error)

	// GetByProfile retrieves all trades of a profile across runs, ordered by entry_date ASC.
	GetByProfile(ctx context.Context, profileName string) ([]*domain.TradeRecord, error)
}

// RunStore provides access to backtest_runs storage.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.BacktestRun) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.BacktestRun, error)

	// GetByProfileScenario retrieves runs for a profile/scenario combination, newest first.
	GetByProfileScenario(ctx context.Context, profileID, scenarioID string) ([]*domain.BacktestRun, error)

	// GetAll retrieves all runs, newest first.
	GetAll(ctx context.Context) ([]*domain.BacktestRun, error)
}

// EquityCurveStore provides access to equity_points storage.
type EquityCurveStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (run_id, date).
	InsertBulk(ctx context.Context, points []*domain.EquityPoint) error

	// GetByRunID retrieves the equity curve of a run, ordered by date ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.EquityPoint, error)
}
