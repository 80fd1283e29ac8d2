package replay

import (
	"context"
	"errors"
	"testing"
	"time"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage/memory"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// collectingEngine collects bars for verification.
type collectingEngine struct {
	bars []*domain.Bar
}

func (e *collectingEngine) OnBar(_ context.Context, bar *domain.Bar) error {
	e.bars = append(e.bars, bar)
	return nil
}

func insertBars(t *testing.T, store *memory.BarStore, bars ...*domain.Bar) {
	t.Helper()
	if err := store.InsertBulk(context.Background(), bars); err != nil {
		t.Fatalf("InsertBulk bars failed: %v", err)
	}
}

func TestLoader_OrdersBarsDeterministically(t *testing.T) {
	store := memory.NewBarStore()
	ctx := context.Background()

	insertBars(t, store,
		&domain.Bar{Symbol: "SPY", Date: day0.AddDate(0, 0, 2), Close: 103},
		&domain.Bar{Symbol: "SPY", Date: day0, Close: 101},
		&domain.Bar{Symbol: "SPY", Date: day0.AddDate(0, 0, 1), Close: 102},
		&domain.Bar{Symbol: "QQQ", Date: day0, Close: 400},
	)

	bars, err := NewLoader(store).Load(ctx, "SPY", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(bars) != 3 {
		t.Fatalf("Expected 3 bars, got %d", len(bars))
	}
	for i, want := range []float64{101, 102, 103} {
		if bars[i].Close != want {
			t.Errorf("bar %d: expected close %f, got %f", i, want, bars[i].Close)
		}
	}
}

func TestLoader_TimeRange(t *testing.T) {
	store := memory.NewBarStore()
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		insertBars(t, store, &domain.Bar{Symbol: "SPY", Date: day0.AddDate(0, 0, i), Close: float64(100 + i)})
	}
	loader := NewLoader(store)

	bars, err := loader.Load(ctx, "SPY", day0.AddDate(0, 0, 3), day0.AddDate(0, 0, 5))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("Expected 3 bars in inclusive range, got %d", len(bars))
	}
	if bars[0].Close != 103 || bars[2].Close != 105 {
		t.Errorf("Unexpected range bounds: %f..%f", bars[0].Close, bars[2].Close)
	}

	// Open upper bound.
	bars, err = loader.Load(ctx, "SPY", day0.AddDate(0, 0, 8), time.Time{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(bars) != 2 {
		t.Errorf("Expected 2 bars from day 8 on, got %d", len(bars))
	}
}

// stopAfter fails on the nth bar.
type stopAfter struct {
	n    int
	seen int
	err  error
}

func (e *stopAfter) OnBar(_ context.Context, _ *domain.Bar) error {
	e.seen++
	if e.seen == e.n {
		return e.err
	}
	return nil
}

func TestReplay_EngineErrorStops(t *testing.T) {
	var bars []*domain.Bar
	for i := 0; i < 5; i++ {
		bars = append(bars, &domain.Bar{Symbol: "SPY", Date: day0.AddDate(0, 0, i), Close: 100})
	}

	boom := errors.New("boom")
	engine := &stopAfter{n: 2, err: boom}
	if err := Replay(context.Background(), bars, engine); !errors.Is(err, boom) {
		t.Fatalf("Expected engine error, got %v", err)
	}
	if engine.seen != 2 {
		t.Errorf("Expected replay to stop after 2 bars, saw %d", engine.seen)
	}
}

func TestReplay_RejectsDuplicateDates(t *testing.T) {
	bars := []*domain.Bar{
		{Symbol: "SPY", Date: day0, Close: 100},
		{Symbol: "SPY", Date: day0, Close: 101},
	}

	err := Replay(context.Background(), bars, &collectingEngine{})
	if !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("Expected ErrInvalidOrdering, got %v", err)
	}
}

func TestReplay_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	bars := []*domain.Bar{{Symbol: "SPY", Date: day0, Close: 100}}
	engine := &collectingEngine{}
	if err := Replay(ctx, bars, engine); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(engine.bars) != 0 {
		t.Errorf("Expected no bars replayed")
	}
}

func TestSortBars_SymbolTieBreak(t *testing.T) {
	bars := []*domain.Bar{
		{Symbol: "SPY", Date: day0},
		{Symbol: "QQQ", Date: day0},
	}
	SortBars(bars)
	if bars[0].Symbol != "QQQ" {
		t.Errorf("Expected QQQ first, got %s", bars[0].Symbol)
	}
}
