package driven

import (
	"context"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

// VectorIndex stores index records and answers filtered nearest-neighbour
// queries. Any backend failure is returned wrapping domain.ErrIndexUnavailable;
// implementations never retry.
type VectorIndex interface {
	// EnsureCollection creates the collection if it does not exist.
	// With recreate, an existing collection and all its records are dropped first.
	// An existing collection with a different schema fails with domain.ErrSchemaMismatch.
	EnsureCollection(ctx context.Context, spec domain.CollectionSpec, recreate bool) error

	// Upsert inserts or replaces records by ID. Every record is checked
	// against the collection dimension before any is written. When wait is
	// set, the records are visible to the next Search on return.
	Upsert(ctx context.Context, records []domain.IndexRecord, wait bool) error

	// Search returns up to limit records most similar to vector that satisfy
	// every predicate in filter, highest score first. Equal scores are
	// ordered by record ID.
	Search(ctx context.Context, vector []float32, filter domain.Filter, limit int) ([]domain.ScoredRecord, error)

	// ScrollAll returns up to limit payloads. Unbounded cost; used only to
	// enumerate filter values.
	ScrollAll(ctx context.Context, limit int) ([]domain.Payload, error)

	// Close releases resources.
	Close() error
}
