package driven

import (
	"context"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

// RunStore persists the history of indexing runs.
type RunStore interface {
	// SaveRun records a finished run.
	SaveRun(ctx context.Context, run domain.IndexRun) error

	// LastRun returns the most recent run for a collection.
	// Returns domain.ErrNotFound if there is none.
	LastRun(ctx context.Context, collection string) (*domain.IndexRun, error)

	// ListRuns returns up to limit runs, most recent first.
	ListRuns(ctx context.Context, limit int) ([]domain.IndexRun, error)

	// PruneRuns keeps the most recent keep runs and deletes the rest.
	PruneRuns(ctx context.Context, keep int) error
}
