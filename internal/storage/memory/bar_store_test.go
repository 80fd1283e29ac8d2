package memory

import (
	"context"
	"errors"
	"testing"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage"
)

func vix(v float64) *float64 { return &v }

func TestBarStore_InsertAndRange(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	bars := []*domain.Bar{
		{Symbol: "SPY", Date: day0.AddDate(0, 0, 2), Close: 102, VIX: vix(18)},
		{Symbol: "SPY", Date: day0, Close: 100},
		{Symbol: "SPY", Date: day0.AddDate(0, 0, 1), Close: 101},
		{Symbol: "QQQ", Date: day0, Close: 400},
	}
	if err := store.InsertBulk(ctx, bars); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	all, err := store.GetBySymbol(ctx, "SPY")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 bars, got %d", len(all))
	}
	for i, want := range []float64{100, 101, 102} {
		if all[i].Close != want {
			t.Errorf("bar %d: expected close %f, got %f", i, want, all[i].Close)
		}
	}
	if all[2].VIX == nil || *all[2].VIX != 18 {
		t.Errorf("Expected VIX 18 to round-trip, got %v", all[2].VIX)
	}

	ranged, err := store.GetByTimeRange(ctx, "SPY", day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(ranged) != 2 {
		t.Errorf("Expected 2 bars in inclusive range, got %d", len(ranged))
	}

	symbols, _ := store.Symbols(ctx)
	if len(symbols) != 2 || symbols[0] != "QQQ" || symbols[1] != "SPY" {
		t.Errorf("Unexpected symbols %v", symbols)
	}
}

func TestBarStore_Duplicates(t *testing.T) {
	store := NewBarStore()
	ctx := context.Background()

	bar := &domain.Bar{Symbol: "SPY", Date: day0, Close: 100}
	if err := store.InsertBulk(ctx, []*domain.Bar{bar}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.Bar{bar})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	next := &domain.Bar{Symbol: "SPY", Date: day0.AddDate(0, 0, 1), Close: 101}
	err = store.InsertBulk(ctx, []*domain.Bar{next, next})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected intra-batch ErrDuplicateKey, got %v", err)
	}

	err = store.InsertBulk(ctx, []*domain.Bar{{Date: day0}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}
