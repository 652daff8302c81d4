// Package indextest holds the behavioural contract every driven.VectorIndex
// implementation must satisfy. Backend packages call Run from their tests.
package indextest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

// Factory returns a fresh, empty index. Cleanup is registered on t.
type Factory func(t *testing.T) driven.VectorIndex

// Spec is the collection used by the contract tests.
var Spec = domain.CollectionSpec{
	Name:           "contract_sites",
	Dimension:      3,
	Metric:         domain.DistanceCosine,
	EmbeddingModel: "stub-embedder",
}

// Record builds a record with the given country and text.
func Record(id, country, text string, vector ...float32) domain.IndexRecord {
	return domain.IndexRecord{
		ID:     id,
		Vector: vector,
		Payload: domain.Payload{
			SiteName:  "Site " + id,
			Country:   country,
			Category:  domain.UnknownCategory,
			SourceURL: "https://en.wikipedia.org/wiki/" + id,
			Text:      text,
		},
	}
}

// ID returns a stable UUID-shaped identifier for n, for backends that
// require UUID keys.
func ID(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}

// Run executes the contract against indexes produced by newIndex.
func Run(t *testing.T, newIndex Factory) {
	t.Helper()

	t.Run("ensure collection is idempotent", func(t *testing.T) {
		idx := newIndex(t)
		ctx := context.Background()
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))
		require.NoError(t, idx.Upsert(ctx, []domain.IndexRecord{Record(ID(1), "China", "wall", 1, 0, 0)}, true))
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))

		payloads, err := idx.ScrollAll(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, payloads, 1, "re-ensuring must not drop records")
	})

	t.Run("schema mismatch without recreate fails", func(t *testing.T) {
		idx := newIndex(t)
		ctx := context.Background()
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))

		wider := Spec
		wider.Dimension = 4
		err := idx.EnsureCollection(ctx, wider, false)
		assert.ErrorIs(t, err, domain.ErrSchemaMismatch)
	})

	t.Run("recreate drops records", func(t *testing.T) {
		idx := newIndex(t)
		ctx := context.Background()
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))
		require.NoError(t, idx.Upsert(ctx, []domain.IndexRecord{Record(ID(1), "China", "wall", 1, 0, 0)}, true))

		require.NoError(t, idx.EnsureCollection(ctx, Spec, true))

		payloads, err := idx.ScrollAll(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, payloads)
	})

	t.Run("search on empty collection returns nothing", func(t *testing.T) {
		idx := newIndex(t)
		ctx := context.Background()
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))

		hits, err := idx.Search(ctx, []float32{1, 0, 0}, domain.Filter{}, 5)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("upserted record is the top hit for its own vector", func(t *testing.T) {
		idx := newIndex(t)
		ctx := context.Background()
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))
		records := []domain.IndexRecord{
			Record(ID(1), "China", "wall", 1, 0, 0),
			Record(ID(2), "France", "abbey", 0, 1, 0),
			Record(ID(3), "Peru", "citadel", 0, 0, 1),
		}
		require.NoError(t, idx.Upsert(ctx, records, true))

		hits, err := idx.Search(ctx, records[1].Vector, domain.Filter{}, 5)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		assert.Equal(t, ID(2), hits[0].Record.ID)
		assert.Equal(t, "abbey", hits[0].Record.Payload.Text)
		assert.Equal(t, "France", hits[0].Record.Payload.Country)
		assert.Equal(t, records[1].Payload.SourceURL, hits[0].Record.Payload.SourceURL)
		assert.InDelta(t, 1.0, hits[0].Score, 1e-5)
	})

	t.Run("results are ordered and limited", func(t *testing.T) {
		idx := newIndex(t)
		ctx := context.Background()
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))
		require.NoError(t, idx.Upsert(ctx, []domain.IndexRecord{
			Record(ID(1), "Italy", "far", 0, 0, 1),
			Record(ID(2), "Italy", "near", 1, 0.1, 0),
			Record(ID(3), "Italy", "middle", 1, 1, 0),
			Record(ID(4), "Italy", "exact", 1, 0, 0),
		}, true))

		hits, err := idx.Search(ctx, []float32{1, 0, 0}, domain.Filter{}, 3)
		require.NoError(t, err)
		require.Len(t, hits, 3)
		assert.Equal(t, "exact", hits[0].Record.Payload.Text)
		assert.Equal(t, "near", hits[1].Record.Payload.Text)
		assert.Equal(t, "middle", hits[2].Record.Payload.Text)
		assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
		assert.GreaterOrEqual(t, hits[1].Score, hits[2].Score)
	})

	t.Run("filter never returns non-matching records", func(t *testing.T) {
		idx := newIndex(t)
		ctx := context.Background()
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))
		require.NoError(t, idx.Upsert(ctx, []domain.IndexRecord{
			Record(ID(1), "China", "wall", 1, 0, 0),
			Record(ID(2), "China", "palace", 0.9, 0.1, 0),
			Record(ID(3), "France", "abbey", 1, 0, 0.01),
			Record(ID(4), "Peru", "citadel", 0.5, 0.5, 0),
		}, true))

		for _, country := range []string{"China", "France", "Peru", "Chile"} {
			hits, err := idx.Search(ctx, []float32{1, 0, 0}, domain.FilterFromCountry(country), 10)
			require.NoError(t, err)
			for _, h := range hits {
				assert.Equal(t, country, h.Record.Payload.Country)
			}
		}

		hits, err := idx.Search(ctx, []float32{1, 0, 0}, domain.FilterFromCountry("China"), 10)
		require.NoError(t, err)
		assert.Len(t, hits, 2)

		hits, err = idx.Search(ctx, []float32{1, 0, 0}, domain.Filter{}, 10)
		require.NoError(t, err)
		assert.Len(t, hits, 4)
	})

	t.Run("great wall scenario", func(t *testing.T) {
		idx := newIndex(t)
		ctx := context.Background()
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))
		wall := Record(ID(1), "China", "The Great Wall of China is in China.", 0.2, 0.9, 0.1)
		require.NoError(t, idx.Upsert(ctx, []domain.IndexRecord{wall}, true))

		query := []float32{0.3, 0.8, 0.2}
		hits, err := idx.Search(ctx, query, domain.FilterFromCountry("China"), 5)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, wall.Payload.Text, hits[0].Record.Payload.Text)

		hits, err = idx.Search(ctx, query, domain.FilterFromCountry("France"), 5)
		require.NoError(t, err)
		assert.Empty(t, hits)
	})

	t.Run("dimension mismatch fails and writes nothing", func(t *testing.T) {
		idx := newIndex(t)
		ctx := context.Background()
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))

		err := idx.Upsert(ctx, []domain.IndexRecord{
			Record(ID(1), "China", "ok", 1, 0, 0),
			Record(ID(2), "China", "too long", 1, 0, 0, 0),
		}, true)
		assert.ErrorIs(t, err, domain.ErrDimensionMismatch)

		payloads, err := idx.ScrollAll(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, payloads)
	})

	t.Run("upsert replaces by id", func(t *testing.T) {
		idx := newIndex(t)
		ctx := context.Background()
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))
		require.NoError(t, idx.Upsert(ctx, []domain.IndexRecord{Record(ID(1), "China", "old", 1, 0, 0)}, true))
		require.NoError(t, idx.Upsert(ctx, []domain.IndexRecord{Record(ID(1), "Japan", "new", 0, 1, 0)}, true))

		payloads, err := idx.ScrollAll(ctx, 0)
		require.NoError(t, err)
		require.Len(t, payloads, 1)
		assert.Equal(t, "new", payloads[0].Text)
		assert.Equal(t, "Japan", payloads[0].Country)
	})

	t.Run("scroll respects limit", func(t *testing.T) {
		idx := newIndex(t)
		ctx := context.Background()
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))
		require.NoError(t, idx.Upsert(ctx, []domain.IndexRecord{
			Record(ID(1), "China", "a", 1, 0, 0),
			Record(ID(2), "France", "b", 0, 1, 0),
			Record(ID(3), "Peru", "c", 0, 0, 1),
		}, true))

		payloads, err := idx.ScrollAll(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, payloads, 2)

		payloads, err = idx.ScrollAll(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, payloads, 3)
	})

	t.Run("invalid filter is rejected", func(t *testing.T) {
		idx := newIndex(t)
		ctx := context.Background()
		require.NoError(t, idx.EnsureCollection(ctx, Spec, false))

		bad := domain.Filter{Predicates: []domain.Predicate{{Kind: "category_eq", Value: "Natural"}}}
		_, err := idx.Search(ctx, []float32{1, 0, 0}, bad, 5)
		assert.ErrorIs(t, err, domain.ErrInvalidFilter)
	})
}
