package memory

import (
	"context"
	"sort"
	"sync"

	"options-sim-lab/internal/domain"
	"options-sim-lab/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.BacktestRun // keyed by run_id
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.BacktestRun),
	}
}

func cloneRun(r *domain.BacktestRun) *domain.BacktestRun {
	c := *r
	c.ConfigJSON = append([]byte(nil), r.ConfigJSON...)
	return &c
}

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, r *domain.BacktestRun) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[r.RunID] = cloneRun(r)
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.BacktestRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneRun(r), nil
}

// GetByProfileScenario retrieves runs for a profile/scenario combination, newest first.
func (s *RunStore) GetByProfileScenario(_ context.Context, profileID, scenarioID string) ([]*domain.BacktestRun, error) {
	return s.filter(func(r *domain.BacktestRun) bool {
		return r.ProfileID == profileID && r.ScenarioID == scenarioID
	}), nil
}

// GetAll retrieves all runs, newest first.
func (s *RunStore) GetAll(_ context.Context) ([]*domain.BacktestRun, error) {
	return s.filter(func(*domain.BacktestRun) bool { return true }), nil
}

func (s *RunStore) filter(keep func(*domain.BacktestRun) bool) []*domain.BacktestRun {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.BacktestRun
	for _, r := range s.data {
		if keep(r) {
			result = append(result, cloneRun(r))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].StartedAt.Equal(result[j].StartedAt) {
			return result[i].StartedAt.After(result[j].StartedAt)
		}
		return result[i].RunID < result[j].RunID
	})

	return result
}

var _ storage.RunStore = (*RunStore)(nil)
