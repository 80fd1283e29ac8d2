package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage"
)

// BarStore is an in-memory implementation of storage.BarStore.
type BarStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Bar // keyed by (symbol, date)
}

// NewBarStore creates a new in-memory bar store.
func NewBarStore() *BarStore {
	return &BarStore{
		data: make(map[string]*domain.Bar),
	}
}

// barKey generates a unique key for a bar.
func barKey(symbol string, date time.Time) string {
	return fmt.Sprintf("%s|%d", symbol, date.UnixNano())
}

// cloneBar copies a bar including its optional fields.
func cloneBar(b *domain.Bar) *domain.Bar {
	c := *b
	c.VIX = cloneFloat(b.VIX)
	c.IV = cloneFloat(b.IV)
	c.OptionVolume = cloneFloat(b.OptionVolume)
	c.OpenInterest = cloneFloat(b.OpenInterest)
	return &c
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// InsertBulk adds multiple bars. Fails entire batch on duplicate.
func (s *BarStore) InsertBulk(_ context.Context, bars []*domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[string]struct{}, len(bars))

	// First pass: validate and check for duplicates (existing + intra-batch)
	for _, b := range bars {
		if b == nil || b.Symbol == "" || b.Date.IsZero() {
			return storage.ErrInvalidInput
		}
		key := barKey(b.Symbol, b.Date)
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, b := range bars {
		s.data[barKey(b.Symbol, b.Date)] = cloneBar(b)
	}

	return nil
}

// GetBySymbol retrieves all bars for a symbol, ordered by date ASC.
func (s *BarStore) GetBySymbol(_ context.Context, symbol string) ([]*domain.Bar, error) {
	return s.filter(func(b *domain.Bar) bool { return b.Symbol == symbol }), nil
}

// GetByTimeRange retrieves bars for a symbol within [start, end] (inclusive).
func (s *BarStore) GetByTimeRange(_ context.Context, symbol string, start, end time.Time) ([]*domain.Bar, error) {
	return s.filter(func(b *domain.Bar) bool {
		return b.Symbol == symbol && !b.Date.Before(start) && !b.Date.After(end)
	}), nil
}

// Symbols returns every stored symbol in sorted order.
func (s *BarStore) Symbols(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, b := range s.data {
		seen[b.Symbol] = struct{}{}
	}
	symbols := make([]string, 0, len(seen))
	for sym := range seen {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	return symbols, nil
}

func (s *BarStore) filter(keep func(*domain.Bar) bool) []*domain.Bar {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Bar
	for _, b := range s.data {
		if keep(b) {
			result = append(result, cloneBar(b))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.Before(result[j].Date)
	})

	return result
}

var _ storage.BarStore = (*BarStore)(nil)
