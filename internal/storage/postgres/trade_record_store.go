package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage"
)

// TradeRecordStore implements storage.TradeRecordStore using PostgreSQL.
type TradeRecordStore struct {
	pool *Pool
}

// NewTradeRecordStore creates a new TradeRecordStore.
func NewTradeRecordStore(pool *Pool) *TradeRecordStore {
	return &TradeRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)

const insertTradeRecordSQL = `
	INSERT INTO trade_records (
		run_id, trade_id, profile_name, kind, symbol, direction, legs,
		entry_date, entry_cost, entry_commission,
		exit_date, exit_proceeds, exit_commission, exit_reason,
		realized_pnl, hold_days
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10,
		$11, $12, $13, $14,
		$15, $16
	)
`

const selectTradeRecordSQL = `
	SELECT
		run_id, trade_id, profile_name, kind, symbol, direction, legs,
		entry_date, entry_cost, entry_commission,
		exit_date, exit_proceeds, exit_commission, exit_reason,
		realized_pnl, hold_days
	FROM trade_records
`

func tradeRecordArgs(t *domain.TradeRecord) ([]any, error) {
	legs, err := json.Marshal(t.Legs)
	if err != nil {
		return nil, fmt.Errorf("encode legs of %s: %w", t.TradeID, err)
	}
	return []any{
		t.RunID, t.TradeID, t.ProfileName, t.Kind, t.Symbol, t.Direction, legs,
		t.EntryDate, t.EntryCost, t.EntryCommission,
		t.ExitDate, t.ExitProceeds, t.ExitCommission, t.ExitReason,
		t.RealizedPnL, t.HoldDays,
	}, nil
}

// Insert adds a new trade. Returns ErrDuplicateKey if (run_id, trade_id) exists.
func (s *TradeRecordStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	if t == nil || t.TradeID == "" {
		return storage.ErrInvalidInput
	}
	args, err := tradeRecordArgs(t)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, insertTradeRecordSQL, args...)
	return translate(err, "insert trade record")
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeRecordStore) InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	return s.pool.InTx(ctx, func(tx pgx.Tx) error {
		for _, t := range trades {
			if t == nil || t.TradeID == "" {
				return storage.ErrInvalidInput
			}
			args, err := tradeRecordArgs(t)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, insertTradeRecordSQL, args...); err != nil {
				return translate(err, "insert trade record in bulk")
			}
		}
		return nil
	})
}

// GetByID retrieves a trade of a run. Returns ErrNotFound if not exists.
func (s *TradeRecordStore) GetByID(ctx context.Context, runID, tradeID string) (*domain.TradeRecord, error) {
	row := s.pool.QueryRow(ctx, selectTradeRecordSQL+` WHERE run_id = $1 AND trade_id = $2`, runID, tradeID)
	t, err := scanTradeRecord(row)
	if err != nil {
		return nil, translate(err, "get trade record by id")
	}
	return t, nil
}

// GetByRunID retrieves all trades of a run, ordered by entry_date ASC.
func (s *TradeRecordStore) GetByRunID(ctx context.Context, runID string) ([]*domain.TradeRecord, error) {
	rows, err := s.pool.Query(ctx, selectTradeRecordSQL+`
		WHERE run_id = $1
		ORDER BY entry_date ASC, trade_id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("get trade records by run id: %w", err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// GetByProfile retrieves all trades of a profile across runs, ordered by entry_date ASC.
func (s *TradeRecordStore) GetByProfile(ctx context.Context, profileName string) ([]*domain.TradeRecord, error) {
	rows, err := s.pool.Query(ctx, selectTradeRecordSQL+`
		WHERE profile_name = $1
		ORDER BY entry_date ASC, run_id ASC, trade_id ASC
	`, profileName)
	if err != nil {
		return nil, fmt.Errorf("get trade records by profile: %w", err)
	}
	defer rows.Close()

	return scanTradeRecords(rows)
}

// scanTradeRecord scans a single row into a TradeRecord.
func scanTradeRecord(row pgx.Row) (*domain.TradeRecord, error) {
	var (
		t    domain.TradeRecord
		legs []byte
	)

	err := row.Scan(
		&t.RunID, &t.TradeID, &t.ProfileName, &t.Kind, &t.Symbol, &t.Direction, &legs,
		&t.EntryDate, &t.EntryCost, &t.EntryCommission,
		&t.ExitDate, &t.ExitProceeds, &t.ExitCommission, &t.ExitReason,
		&t.RealizedPnL, &t.HoldDays,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(legs, &t.Legs); err != nil {
		return nil, fmt.Errorf("decode legs of %s: %w", t.TradeID, err)
	}
	t.EntryDate = t.EntryDate.UTC()
	t.ExitDate = t.ExitDate.UTC()

	return &t, nil
}

// scanTradeRecords scans multiple rows into a slice of TradeRecord.
func scanTradeRecords(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	var trades []*domain.TradeRecord

	for rows.Next() {
		t, err := scanTradeRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade record row: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade record rows: %w", err)
	}

	return trades, nil
}
