package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

// Ensure IndexingService implements the interface.
var _ driving.IndexingService = (*IndexingService)(nil)

// DefaultRunHistory is the number of index runs kept in the run store.
const DefaultRunHistory = 100

// IndexingService builds the vector index from the article corpus.
type IndexingService struct {
	spec     domain.CollectionSpec
	index    driven.VectorIndex
	lister   driven.SiteLister
	fetcher  driven.DocumentFetcher
	splitter driven.TextSplitter
	embedder driven.EmbeddingService
	runs     driven.RunStore
	interval time.Duration

	newID func() string
	now   func() time.Time

	mu     sync.Mutex
	status domain.IndexStatus
}

// NewIndexingService creates an indexing service writing to the collection
// described by spec. Fetches are paced by domain.DefaultFetchInterval.
func NewIndexingService(
	spec domain.CollectionSpec,
	index driven.VectorIndex,
	lister driven.SiteLister,
	fetcher driven.DocumentFetcher,
	splitter driven.TextSplitter,
	embedder driven.EmbeddingService,
) *IndexingService {
	return &IndexingService{
		spec:     spec,
		index:    index,
		lister:   lister,
		fetcher:  fetcher,
		splitter: splitter,
		embedder: embedder,
		interval: domain.DefaultFetchInterval,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// SetRunStore enables run history. Without one, runs are not recorded.
func (s *IndexingService) SetRunStore(runs driven.RunStore) {
	s.runs = runs
}

// SetFetchInterval sets the pause between article fetches. Zero disables pacing.
func (s *IndexingService) SetFetchInterval(interval time.Duration) {
	s.interval = interval
}

// Status returns the progress of the current run.
func (s *IndexingService) Status() domain.IndexStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Runs returns up to limit recorded runs, most recent first.
func (s *IndexingService) Runs(ctx context.Context, limit int) ([]domain.IndexRun, error) {
	if s.runs == nil {
		return []domain.IndexRun{}, nil
	}
	return s.runs.ListRuns(ctx, limit)
}

// Run executes one indexing run. Only one run may be active at a time.
func (s *IndexingService) Run(ctx context.Context, opts domain.IndexOptions) (*domain.IndexReport, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	started := s.now()
	report, err := s.run(ctx, opts)
	if report != nil {
		report.Duration = s.now().Sub(started)
	}
	s.record(ctx, started, opts, report, err)

	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *IndexingService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.Running {
		return domain.ErrIndexingInProgress
	}
	s.status = domain.IndexStatus{Running: true}
	return nil
}

func (s *IndexingService) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Running = false
}

func (s *IndexingService) progress(processed, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.SitesProcessed = processed
	s.status.SitesTotal = total
}

//nolint:gocyclo // Pipeline function with necessary sequential steps
func (s *IndexingService) run(ctx context.Context, opts domain.IndexOptions) (*domain.IndexReport, error) {
	logger.Section("Indexing")

	if s.embedder.Dimensions() != s.spec.Dimension {
		return nil, fmt.Errorf("%w: embedder %s produces %d dimensions, collection %s has %d",
			domain.ErrDimensionMismatch, s.embedder.ModelName(), s.embedder.Dimensions(),
			s.spec.Name, s.spec.Dimension)
	}

	// 1. Collection. A recreate only drops records once the new vectors
	// exist, so the live collection survives a failed run. An existing
	// collection with another schema is what a recreate replaces.
	if err := s.index.EnsureCollection(ctx, s.spec, false); err != nil {
		if !opts.Recreate || !errors.Is(err, domain.ErrSchemaMismatch) {
			return nil, fmt.Errorf("ensure collection: %w", err)
		}
		logger.Debug("collection %q will be replaced: %v", s.spec.Name, err)
	}

	// 2. Sites
	sites, err := s.lister.ListSites(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	logger.Info("Found %d sites", len(sites))
	if opts.SiteLimit > 0 && len(sites) > opts.SiteLimit {
		sites = sites[:opts.SiteLimit]
	}

	report := &domain.IndexReport{SitesListed: len(sites)}
	s.progress(0, len(sites))

	// 3. Fetch and chunk, one site at a time. texts[i] and payloads[i]
	// describe the same chunk and are never reordered.
	var texts []string
	var payloads []domain.Payload
	pace := newPacer(s.interval)

	for i, site := range sites {
		if err := pace.Wait(ctx); err != nil {
			return nil, fmt.Errorf("indexing cancelled: %w", err)
		}
		logger.Debug("[%d/%d] %s", i+1, len(sites), site.Name)

		doc, err := s.fetcher.Fetch(ctx, site.Name)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, fmt.Errorf("indexing cancelled: %w", ctx.Err())
			}
			if !errors.Is(err, domain.ErrFetch) {
				err = fmt.Errorf("%w: %w", domain.ErrFetch, err)
			}
			logger.Warn("fetch %q failed: %v", site.Name, err)
			report.Failed = append(report.Failed, domain.SiteOutcome{Site: site, Err: err})

		case !doc.Exists:
			logger.Debug("no article for %q, skipping", site.Name)
			report.Skipped = append(report.Skipped, domain.SiteOutcome{Site: site, Err: domain.ErrFetchNotFound})

		default:
			chunks := s.splitter.Split(doc.Text)
			for _, c := range chunks {
				texts = append(texts, c.Text)
				payloads = append(payloads, domain.Payload{
					SiteName:  site.Name,
					Country:   site.Country,
					Category:  site.Category,
					SourceURL: doc.CanonicalURL,
					Text:      c.Text,
				})
			}
			if len(chunks) > 0 {
				report.SitesIndexed++
			}
			logger.Debug("  %d chunks", len(chunks))
		}

		s.progress(i+1, len(sites))
	}

	if len(texts) == 0 {
		logger.Info("Nothing to embed, keeping existing records")
		return report, nil
	}

	// 4. One embedding batch for every chunk
	logger.Info("Embedding %d chunks", len(texts))
	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbedding) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrEmbedding, len(vectors), len(texts))
	}

	// 5. Pair by position and upsert
	records := make([]domain.IndexRecord, len(texts))
	for i := range texts {
		records[i] = domain.IndexRecord{
			ID:      s.newID(),
			Vector:  vectors[i],
			Payload: payloads[i],
		}
	}

	if opts.Recreate {
		logger.Info("Recreating collection %q", s.spec.Name)
		if err := s.index.EnsureCollection(ctx, s.spec, true); err != nil {
			return nil, fmt.Errorf("recreate collection: %w", err)
		}
	}

	logger.Info("Upserting %d records", len(records))
	if err := s.index.Upsert(ctx, records, true); err != nil {
		return nil, fmt.Errorf("upsert records: %w", err)
	}

	report.Chunks = len(records)
	return report, nil
}

// record saves the run to the run store. History is best effort: a
// failure is logged and does not change the run's result.
func (s *IndexingService) record(
	ctx context.Context, started time.Time, opts domain.IndexOptions, report *domain.IndexReport, runErr error,
) {
	if s.runs == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	run := domain.NewIndexRun(s.newID(), s.spec.Name, started, s.now(), opts, report, runErr)
	if err := s.runs.SaveRun(ctx, run); err != nil {
		logger.Warn("save index run: %v", err)
		return
	}
	if err := s.runs.PruneRuns(ctx, DefaultRunHistory); err != nil {
		logger.Warn("prune index runs: %v", err)
	}
}
