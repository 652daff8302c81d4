package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// maxCheckInterval bounds how long the scheduler sleeps between due checks.
const maxCheckInterval = time.Minute

// Scheduler rebuilds the index periodically while a long-running surface
// is up. The next run is due interval after the last recorded run ended,
// so the schedule survives restarts when the run store is persistent.
type Scheduler struct {
	indexer  driving.IndexingService
	runs     driven.RunStore
	spec     domain.CollectionSpec
	interval time.Duration
	opts     domain.IndexOptions
	check    time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewScheduler creates a scheduler that runs indexer with opts every
// interval. runs may be nil, in which case the first run is due one
// interval after Start.
func NewScheduler(
	indexer driving.IndexingService,
	runs driven.RunStore,
	spec domain.CollectionSpec,
	interval time.Duration,
	opts domain.IndexOptions,
) *Scheduler {
	check := interval
	if check > maxCheckInterval {
		check = maxCheckInterval
	}
	return &Scheduler{
		indexer:  indexer,
		runs:     runs,
		spec:     spec,
		interval: interval,
		opts:     opts,
		check:    check,
		now:      time.Now,
	}
}

// Start runs the scheduler loop. It blocks until Stop is called or ctx is
// done. A non-positive interval disables scheduling.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
	}()

	logger.Info("Re-indexing every %s", s.interval)
	next := s.nextRun(ctx, s.now())

	ticker := time.NewTicker(s.check)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			now := s.now()
			if now.Before(next) {
				continue
			}
			s.runIndex(ctx)
			next = s.now().Add(s.interval)
		}
	}
}

// Stop shuts the loop down and waits for an active run to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
	return nil
}

// nextRun derives the first due time from the run history.
func (s *Scheduler) nextRun(ctx context.Context, now time.Time) time.Time {
	if s.runs == nil {
		return now.Add(s.interval)
	}
	last, err := s.runs.LastRun(ctx, s.spec.Name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return now
	case err != nil:
		logger.Warn("scheduler: read last run: %v", err)
		return now.Add(s.interval)
	default:
		return last.EndedAt.Add(s.interval)
	}
}

// runIndex runs one indexing pass and waits for it. A run already in
// progress, for example one started from the CLI, is left alone.
func (s *Scheduler) runIndex(ctx context.Context) {
	report, err := s.indexer.Run(ctx, s.opts)
	switch {
	case errors.Is(err, domain.ErrIndexingInProgress):
		logger.Debug("scheduler: indexing already in progress")
	case err != nil:
		logger.Warn("scheduler: indexing failed: %v", err)
	default:
		logger.Info("scheduler: indexed %d chunks from %d sites", report.Chunks, report.SitesIndexed)
	}
}
