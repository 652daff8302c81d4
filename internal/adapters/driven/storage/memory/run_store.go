package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]domain.IndexRun
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]domain.IndexRun),
	}
}

// SaveRun records a run, replacing any run with the same ID.
func (s *RunStore) SaveRun(_ context.Context, run domain.IndexRun) error {
	if run.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

// LastRun returns the most recent run for a collection.
func (s *RunStore) LastRun(_ context.Context, collection string) (*domain.IndexRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, run := range s.sorted() {
		if run.Collection == collection {
			return &run, nil
		}
	}
	return nil, domain.ErrNotFound
}

// ListRuns returns up to limit runs, most recent first.
func (s *RunStore) ListRuns(_ context.Context, limit int) ([]domain.IndexRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := s.sorted()
	if limit > 0 && limit < len(runs) {
		runs = runs[:limit]
	}
	return runs, nil
}

// PruneRuns keeps the most recent keep runs.
func (s *RunStore) PruneRuns(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, run := range s.sorted() {
		if i >= keep {
			delete(s.runs, run.ID)
		}
	}
	return nil
}

// sorted returns runs by start time descending (caller must hold lock).
func (s *RunStore) sorted() []domain.IndexRun {
	runs := make([]domain.IndexRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID > runs[j].ID
	})
	return runs
}
