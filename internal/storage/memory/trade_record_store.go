package memory

import (
	"context"
	"sort"
	"sync"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage"
)

// TradeRecordStore is an in-memory implementation of storage.TradeRecordStore.
// Records are grouped by run so run lookups skip other runs.
type TradeRecordStore struct {
	mu    sync.RWMutex
	byRun map[string]map[string]*domain.TradeRecord
}

// NewTradeRecordStore creates an empty store.
func NewTradeRecordStore() *TradeRecordStore {
	return &TradeRecordStore{byRun: make(map[string]map[string]*domain.TradeRecord)}
}

func cloneTrade(t *domain.TradeRecord) *domain.TradeRecord {
	c := *t
	c.Legs = append([]domain.LegRecord(nil), t.Legs...)
	return &c
}

// Insert adds one trade. Returns ErrDuplicateKey if (run_id, trade_id) exists.
func (s *TradeRecordStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	return s.InsertBulk(ctx, []*domain.TradeRecord{t})
}

// InsertBulk stores all trades or none. A duplicate against stored
// trades or within the batch rejects the whole batch.
func (s *TradeRecordStore) InsertBulk(_ context.Context, trades []*domain.TradeRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[[2]string]bool, len(trades))
	for _, t := range trades {
		if t == nil || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		key := [2]string{t.RunID, t.TradeID}
		if _, stored := s.byRun[t.RunID][t.TradeID]; stored || pending[key] {
			return storage.ErrDuplicateKey
		}
		pending[key] = true
	}

	for _, t := range trades {
		run, ok := s.byRun[t.RunID]
		if !ok {
			run = make(map[string]*domain.TradeRecord)
			s.byRun[t.RunID] = run
		}
		run[t.TradeID] = cloneTrade(t)
	}
	return nil
}

// GetByID returns ErrNotFound for unknown (run_id, trade_id).
func (s *TradeRecordStore) GetByID(_ context.Context, runID, tradeID string) (*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.byRun[runID][tradeID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneTrade(t), nil
}

// GetByRunID retrieves all trades of a run, ordered by entry_date ASC.
func (s *TradeRecordStore) GetByRunID(_ context.Context, runID string) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.TradeRecord, 0, len(s.byRun[runID]))
	for _, t := range s.byRun[runID] {
		out = append(out, cloneTrade(t))
	}
	sortByEntry(out)
	return out, nil
}

// GetByProfile retrieves all trades of a profile across runs, ordered by entry_date ASC.
func (s *TradeRecordStore) GetByProfile(_ context.Context, profileName string) ([]*domain.TradeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TradeRecord
	for _, run := range s.byRun {
		for _, t := range run {
			if t.ProfileName == profileName {
				out = append(out, cloneTrade(t))
			}
		}
	}
	sortByEntry(out)
	return out, nil
}

// sortByEntry orders by entry date, then run and trade id for a stable
// order across runs.
func sortByEntry(trades []*domain.TradeRecord) {
	sort.Slice(trades, func(i, j int) bool {
		a, b := trades[i], trades[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if a.RunID != b.RunID {
			return a.RunID < b.RunID
		}
		return a.TradeID < b.TradeID
	})
}

var _ storage.TradeRecordStore = (*TradeRecordStore)(nil)
