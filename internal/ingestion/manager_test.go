package ingestion

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/ingestion/stub"
	"options-sim-lab/internal/replay"
	"options-sim-lab/internal/storage"
	"options-sim-lab/internal/storage/memory"
)

var day0 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

// orderValidatingBarStore wraps a BarStore and validates ordering in InsertBulk.
type orderValidatingBarStore struct {
	storage.BarStore
}

func (s *orderValidatingBarStore) InsertBulk(ctx context.Context, bars []*domain.Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return replay.ErrInvalidOrdering
		}
	}
	return s.BarStore.InsertBulk(ctx, bars)
}

func bar(symbol string, day int, close float64) *domain.Bar {
	return &domain.Bar{Symbol: symbol, Date: day0.AddDate(0, 0, day), Open: close, High: close + 1, Low: close - 1, Close: close}
}

func TestManager_IngestBars_Ordering(t *testing.T) {
	bars := []*domain.Bar{bar("SPY", 2, 502), bar("SPY", 0, 500), bar("QQQ", 0, 400), bar("SPY", 1, 501)}

	store := &orderValidatingBarStore{BarStore: memory.NewBarStore()}
	mgr := NewManager(ManagerOptions{
		BarSource: stub.NewStubBarSource(bars),
		BarStore:  store,
	})

	ctx := context.Background()
	count, err := mgr.IngestBars(ctx, "SPY")
	if err != nil {
		t.Fatalf("IngestBars failed: %v (Manager must sort before InsertBulk)", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}

	stored, err := store.GetBySymbol(ctx, "SPY")
	if err != nil {
		t.Fatalf("GetBySymbol failed: %v", err)
	}
	for i, b := range stored {
		if !b.Date.Equal(day0.AddDate(0, 0, i)) {
			t.Errorf("bar %d date = %v", i, b.Date)
		}
	}
}

func TestManager_IngestBars_RejectsInvalidBatch(t *testing.T) {
	tests := []struct {
		name    string
		bars    []*domain.Bar
		wantErr error
	}{
		{
			name:    "duplicate date",
			bars:    []*domain.Bar{bar("SPY", 0, 500), bar("SPY", 0, 501)},
			wantErr: replay.ErrInvalidOrdering,
		},
		{
			name:    "nan close",
			bars:    []*domain.Bar{bar("SPY", 0, 500), bar("SPY", 1, math.NaN())},
			wantErr: domain.ErrInvalidBar,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewBarStore()
			mgr := NewManager(ManagerOptions{BarSource: stub.NewStubBarSource(tt.bars), BarStore: store})

			_, err := mgr.IngestBars(context.Background(), "SPY")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}

			stored, _ := store.GetBySymbol(context.Background(), "SPY")
			if len(stored) != 0 {
				t.Errorf("invalid batch partially stored: %d bars", len(stored))
			}
		})
	}
}

func TestManager_IngestBars_DuplicateOfStored(t *testing.T) {
	store := memory.NewBarStore()
	mgr := NewManager(ManagerOptions{
		BarSource: stub.NewStubBarSource([]*domain.Bar{bar("SPY", 0, 500)}),
		BarStore:  store,
	})

	ctx := context.Background()
	if _, err := mgr.IngestBars(ctx, "SPY"); err != nil {
		t.Fatalf("first IngestBars failed: %v", err)
	}
	if _, err := mgr.IngestBars(ctx, "SPY"); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestManager_NilSourceOrStore(t *testing.T) {
	mgr := NewManager(ManagerOptions{})
	count, err := mgr.IngestBars(context.Background(), "SPY")
	if err != nil || count != 0 {
		t.Errorf("IngestBars = %d, %v; want 0, nil", count, err)
	}
}

func TestManager_SourceError(t *testing.T) {
	boom := errors.New("boom")
	mgr := NewManager(ManagerOptions{BarSource: stub.NewFailingBarSource(boom), BarStore: memory.NewBarStore()})
	if _, err := mgr.IngestBars(context.Background(), "SPY"); !errors.Is(err, boom) {
		t.Errorf("expected source error, got %v", err)
	}
}
