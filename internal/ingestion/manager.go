// Package ingestion loads bars from external sources into the bar store.
package ingestion

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"options-sim-lab/internal/replay"
	"options-sim-lab/internal/storage"
)

// Manager orchestrates ingestion from sources to storage.
// It enforces deterministic ordering and uses storage layer for duplicate rejection.
type Manager struct {
	barSource BarSource
	barStore  storage.BarStore
	logger    *zap.Logger
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	BarSource BarSource
	BarStore  storage.BarStore
	Logger    *zap.Logger
}

// NewManager creates a new ingestion manager with the provided source and store.
func NewManager(opts ManagerOptions) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		barSource: opts.BarSource,
		barStore:  opts.BarStore,
		logger:    logger,
	}
}

// IngestBars fetches bars for symbol from the source and stores them.
// Every bar is validated and the batch is sorted by date; a duplicate date
// or an invalid bar rejects the whole batch before anything is written.
// Duplicates of stored bars are rejected by the storage layer (ErrDuplicateKey).
func (m *Manager) IngestBars(ctx context.Context, symbol string) (int, error) {
	if m.barSource == nil || m.barStore == nil {
		return 0, nil
	}

	bars, err := m.barSource.Fetch(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("fetch bars: %w", err)
	}

	if len(bars) == 0 {
		return 0, nil
	}

	for _, bar := range bars {
		if err := bar.Validate(); err != nil {
			return 0, err
		}
	}

	// Enforce deterministic ordering
	replay.SortBars(bars)
	if err := replay.ValidateOrder(bars); err != nil {
		return 0, err
	}

	// Store via bulk insert - storage layer handles duplicates
	if err := m.barStore.InsertBulk(ctx, bars); err != nil {
		return 0, err
	}

	m.logger.Info("bars ingested",
		zap.String("symbol", symbol),
		zap.Int("count", len(bars)),
		zap.Time("first", bars[0].Date),
		zap.Time("last", bars[len(bars)-1].Date),
	)
	return len(bars), nil
}
