package clickhouse

import (
	"context"
	"fmt"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage"
)

// EquityCurveStore implements storage.EquityCurveStore using ClickHouse.
type EquityCurveStore struct {
	conn *Conn
}

// NewEquityCurveStore creates a new EquityCurveStore.
func NewEquityCurveStore(conn *Conn) *EquityCurveStore {
	return &EquityCurveStore{conn: conn}
}

var _ storage.EquityCurveStore = (*EquityCurveStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (run_id, date).
func (s *EquityCurveStore) InsertBulk(ctx context.Context, points []*domain.EquityPoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		runID string
		date  int64
	}
	seen := make(map[key]struct{}, len(points))
	runs := make(map[string]struct{})
	for _, p := range points {
		if p == nil || p.RunID == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.RunID, p.Date.UnixMilli()}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		runs[p.RunID] = struct{}{}
	}

	// MergeTree does not enforce keys, so check existing rows explicitly
	for runID := range runs {
		existing, err := s.GetByRunID(ctx, runID)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for _, p := range existing {
			if _, dup := seen[key{runID, p.Date.UnixMilli()}]; dup {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO equity_points (
			run_id, date, equity, cash, active_trade_count,
			trading_halted, net_delta, hedge_shares
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			p.RunID, p.Date.UTC(), p.Equity, p.Cash, uint32(p.ActiveTradeCount),
			p.TradingHalted, p.NetDelta, p.HedgeShares,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves the equity curve of a run, ordered by date ASC.
func (s *EquityCurveStore) GetByRunID(ctx context.Context, runID string) ([]*domain.EquityPoint, error) {
	rows, err := s.conn.Query(ctx, `
		SELECT run_id, date, equity, cash, active_trade_count,
			trading_halted, net_delta, hedge_shares
		FROM equity_points
		WHERE run_id = ?
		ORDER BY date ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	var points []*domain.EquityPoint
	for rows.Next() {
		var (
			p      domain.EquityPoint
			active uint32
		)
		err := rows.Scan(
			&p.RunID, &p.Date, &p.Equity, &p.Cash, &active,
			&p.TradingHalted, &p.NetDelta, &p.HedgeShares,
		)
		if err != nil {
			return nil, fmt.Errorf("scan equity point row: %w", err)
		}
		p.ActiveTradeCount = int(active)
		p.Date = p.Date.UTC()
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate equity point rows: %w", err)
	}

	return points, nil
}
