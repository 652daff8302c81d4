package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

type collection struct {
	spec    domain.CollectionSpec
	records map[string]domain.IndexRecord
}

// VectorIndex is an in-memory implementation of driven.VectorIndex.
// Upserts hold the write lock for the whole batch, so readers see each
// record either entirely before or entirely after a write.
type VectorIndex struct {
	mu          sync.RWMutex
	collections map[string]*collection
	active      string
}

// NewVectorIndex creates a new in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{
		collections: make(map[string]*collection),
	}
}

// EnsureCollection creates or validates the collection and makes it active.
func (v *VectorIndex) EnsureCollection(_ context.Context, spec domain.CollectionSpec, recreate bool) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	existing, ok := v.collections[spec.Name]
	if ok && !recreate {
		if err := spec.Compatible(existing.spec); err != nil {
			return err
		}
	} else {
		v.collections[spec.Name] = &collection{
			spec:    spec,
			records: make(map[string]domain.IndexRecord),
		}
	}
	v.active = spec.Name
	return nil
}

// Upsert inserts or replaces records. wait is implied: writes are
// visible as soon as the call returns.
func (v *VectorIndex) Upsert(_ context.Context, records []domain.IndexRecord, _ bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	coll, err := v.current()
	if err != nil {
		return err
	}

	for i := range records {
		if err := records[i].CheckDimension(coll.spec.Dimension); err != nil {
			return err
		}
		if records[i].ID == "" {
			return fmt.Errorf("%w: record %d has no id", domain.ErrInvalidInput, i)
		}
	}

	for _, r := range records {
		r.Vector = vecmath.Copy(r.Vector)
		coll.records[r.ID] = r
	}
	return nil
}

// Search scores every record that satisfies filter.
func (v *VectorIndex) Search(
	_ context.Context, vector []float32, filter domain.Filter, limit int,
) ([]domain.ScoredRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	coll, err := v.current()
	if err != nil {
		return nil, err
	}
	if len(vector) != coll.spec.Dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
			domain.ErrDimensionMismatch, len(vector), coll.spec.Dimension)
	}

	hits := make([]domain.ScoredRecord, 0, len(coll.records))
	for _, r := range coll.records {
		if !filter.Matches(r.Payload) {
			continue
		}
		hits = append(hits, domain.ScoredRecord{
			Record: r,
			Score:  vecmath.Cosine(vector, r.Vector),
		})
	}
	return vecmath.Rank(hits, limit), nil
}

// ScrollAll returns payloads ordered by record ID. A non-positive limit returns all.
func (v *VectorIndex) ScrollAll(_ context.Context, limit int) ([]domain.Payload, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	coll, err := v.current()
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(coll.records))
	for id := range coll.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}

	payloads := make([]domain.Payload, len(ids))
	for i, id := range ids {
		payloads[i] = coll.records[id].Payload
	}
	return payloads, nil
}

// Count returns the number of records in the active collection.
func (v *VectorIndex) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	coll, err := v.current()
	if err != nil {
		return 0
	}
	return len(coll.records)
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}

// current returns the active collection (caller must hold lock).
func (v *VectorIndex) current() (*collection, error) {
	coll, ok := v.collections[v.active]
	if !ok {
		return nil, fmt.Errorf("%w: no collection has been created", domain.ErrIndexUnavailable)
	}
	return coll, nil
}
