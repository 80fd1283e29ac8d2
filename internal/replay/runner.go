package replay

import (
	"context"
	"time"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage"
)

// endOfTime bounds open-ended ranges.
var endOfTime = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

// Loader reads a symbol's bars from storage in replay order.
type Loader struct {
	barStore storage.BarStore
}

// NewLoader creates a loader over barStore.
func NewLoader(barStore storage.BarStore) *Loader {
	return &Loader{barStore: barStore}
}

// Load returns the bars of symbol within [from, to], sorted and checked
// for strict ordering. A zero from or to leaves that end open.
func (l *Loader) Load(ctx context.Context, symbol string, from, to time.Time) ([]*domain.Bar, error) {
	var (
		bars []*domain.Bar
		err  error
	)
	if from.IsZero() && to.IsZero() {
		bars, err = l.barStore.GetBySymbol(ctx, symbol)
	} else {
		if to.IsZero() {
			to = endOfTime
		}
		bars, err = l.barStore.GetByTimeRange(ctx, symbol, from, to)
	}
	if err != nil {
		return nil, err
	}

	SortBars(bars)
	if err := ValidateOrder(bars); err != nil {
		return nil, err
	}
	return bars, nil
}

// Replay sorts bars, rejects duplicate dates, and feeds them to the engine.
// Replay stops at the first engine error or context cancellation.
func Replay(ctx context.Context, bars []*domain.Bar, engine ReplayEngine) error {
	SortBars(bars)
	if err := ValidateOrder(bars); err != nil {
		return err
	}

	for _, bar := range bars {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := engine.OnBar(ctx, bar); err != nil {
			return err
		}
	}

	return nil
}
