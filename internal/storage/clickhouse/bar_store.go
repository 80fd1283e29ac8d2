package clickhouse

import (
	"context"
	"fmt"
	"time"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage"
)

// BarStore implements storage.BarStore using ClickHouse.
type BarStore struct {
	conn *Conn
}

// NewBarStore creates a new BarStore.
func NewBarStore(conn *Conn) *BarStore {
	return &BarStore{conn: conn}
}

// Compile-time interface check.
var _ storage.BarStore = (*BarStore)(nil)

const selectBarsSQL = `
	SELECT symbol, date, open, high, low, close, volume,
		vix, iv, option_volume, open_interest
	FROM bars
`

// InsertBulk adds multiple bars. Fails entire batch on duplicate (symbol, date).
func (s *BarStore) InsertBulk(ctx context.Context, bars []*domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	// Check for intra-batch duplicates and collect the span per symbol
	type key struct {
		symbol string
		date   int64
	}
	type span struct{ from, to time.Time }
	seen := make(map[key]struct{}, len(bars))
	spans := make(map[string]span)
	for _, b := range bars {
		if b == nil || b.Symbol == "" || b.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		k := key{b.Symbol, b.Date.UnixMilli()}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}

		sp, ok := spans[b.Symbol]
		if !ok || b.Date.Before(sp.from) {
			sp.from = b.Date
		}
		if !ok || b.Date.After(sp.to) {
			sp.to = b.Date
		}
		spans[b.Symbol] = sp
	}

	// MergeTree does not enforce keys, so check existing rows explicitly
	for symbol, sp := range spans {
		existing, err := s.GetByTimeRange(ctx, symbol, sp.from, sp.to)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		for _, b := range existing {
			if _, dup := seen[key{symbol, b.Date.UnixMilli()}]; dup {
				return storage.ErrDuplicateKey
			}
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO bars (
			symbol, date, open, high, low, close, volume,
			vix, iv, option_volume, open_interest
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, b := range bars {
		err = batch.Append(
			b.Symbol, b.Date.UTC(), b.Open, b.High, b.Low, b.Close, b.Volume,
			b.VIX, b.IV, b.OptionVolume, b.OpenInterest,
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

// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
func (s *BarStore) GetBySymbol(ctx context.Context, symbol string) ([]*domain.Bar, error) {
	rows, err := s.conn.Query(ctx, selectBarsSQL+`
		WHERE symbol = ?
		ORDER BY date ASC
	`, symbol)
	if err != nil {
		return nil, fmt.Errorf("query by symbol: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// GetByTimeRange retrieves bars for a symbol within [start, end] (inclusive).
func (s *BarStore) GetByTimeRange(ctx context.Context, symbol string, start, end time.Time) ([]*domain.Bar, error) {
	rows, err := s.conn.Query(ctx, selectBarsSQL+`
		WHERE symbol = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, symbol, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanBars(rows)
}

// Symbols returns every stored symbol in sorted order.
func (s *BarStore) Symbols(ctx context.Context) ([]string, error) {
	rows, err := s.conn.Query(ctx, `SELECT DISTINCT symbol FROM bars ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("query symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			return nil, fmt.Errorf("scan symbol row: %w", err)
		}
		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbol rows: %w", err)
	}
	return symbols, nil
}

// scanBars scans multiple rows.
func scanBars(rows chRows) ([]*domain.Bar, error) {
	var bars []*domain.Bar

	for rows.Next() {
		var b domain.Bar
		err := rows.Scan(
			&b.Symbol, &b.Date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume,
			&b.VIX, &b.IV, &b.OptionVolume, &b.OpenInterest,
		)
		if err != nil {
			return nil, fmt.Errorf("scan bar row: %w", err)
		}
		b.Date = b.Date.UTC()
		bars = append(bars, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bar rows: %w", err)
	}

	return bars, nil
}
