package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

// countingIndexer implements driving.IndexingService for scheduler tests.
type countingIndexer struct {
	mu   sync.Mutex
	runs []domain.IndexOptions
	err  error
}

func (c *countingIndexer) Run(_ context.Context, opts domain.IndexOptions) (*domain.IndexReport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = append(c.runs, opts)
	if c.err != nil {
		return nil, c.err
	}
	return &domain.IndexReport{}, nil
}

func (c *countingIndexer) Status() domain.IndexStatus { return domain.IndexStatus{} }

func (c *countingIndexer) Runs(_ context.Context, _ int) ([]domain.IndexRun, error) {
	return []domain.IndexRun{}, nil
}

func (c *countingIndexer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.runs)
}

func startScheduler(t *testing.T, s *Scheduler) {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- s.Start(context.Background()) }()
	t.Cleanup(func() {
		require.NoError(t, s.Stop())
		require.NoError(t, <-done)
	})
}

func TestScheduler_DisabledReturnsImmediately(t *testing.T) {
	s := NewScheduler(&countingIndexer{}, nil, testSpec, 0, domain.IndexOptions{})

	assert.NoError(t, s.Start(context.Background()))
	assert.NoError(t, s.Stop())
}

func TestScheduler_RunsImmediatelyWithoutHistory(t *testing.T) {
	indexer := &countingIndexer{}
	opts := domain.IndexOptions{Recreate: true, SiteLimit: 10}
	s := NewScheduler(indexer, memory.NewRunStore(), testSpec, time.Hour, opts)
	s.check = 5 * time.Millisecond

	startScheduler(t, s)

	assert.Eventually(t, func() bool { return indexer.count() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, opts, indexer.runs[0])
}

func TestScheduler_WaitsForIntervalAfterLastRun(t *testing.T) {
	indexer := &countingIndexer{}
	runs := memory.NewRunStore()
	now := time.Now()
	require.NoError(t, runs.SaveRun(context.Background(), domain.IndexRun{
		ID: "r1", Collection: testSpec.Name, StartedAt: now.Add(-time.Minute), EndedAt: now,
	}))
	s := NewScheduler(indexer, runs, testSpec, time.Hour, domain.IndexOptions{})
	s.check = 5 * time.Millisecond

	startScheduler(t, s)

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, indexer.count())
}

func TestScheduler_RepeatsAndSurvivesFailures(t *testing.T) {
	indexer := &countingIndexer{err: domain.ErrIndexingInProgress}
	s := NewScheduler(indexer, nil, testSpec, 10*time.Millisecond, domain.IndexOptions{})

	startScheduler(t, s)

	assert.Eventually(t, func() bool { return indexer.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	s := NewScheduler(&countingIndexer{}, nil, testSpec, time.Hour, domain.IndexOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Start(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, s.Stop())
}
