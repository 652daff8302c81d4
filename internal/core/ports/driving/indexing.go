package driving

import (
	"context"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

// IndexingService builds the vector index from the article corpus.
type IndexingService interface {
	// Run lists sites, fetches and chunks their articles, embeds all chunks
	// in one batch and upserts the records. Per-site fetch failures are
	// reported, not returned.
	Run(ctx context.Context, opts domain.IndexOptions) (*domain.IndexReport, error)

	// Status returns the progress of the current run.
	Status() domain.IndexStatus

	// Runs returns up to limit recorded runs, most recent first. Without a
	// run store it returns an empty list.
	Runs(ctx context.Context, limit int) ([]domain.IndexRun, error)
}

// Scheduler re-runs indexing periodically while a long-running surface is up.
type Scheduler interface {
	// Start blocks until Stop is called or ctx is done.
	Start(ctx context.Context) error

	// Stop ends the loop and waits for an active run to finish.
	Stop() error
}
