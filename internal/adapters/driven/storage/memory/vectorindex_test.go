package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/indextest"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

func TestVectorIndex_Contract(t *testing.T) {
	indextest.Run(t, func(t *testing.T) driven.VectorIndex {
		return NewVectorIndex()
	})
}

func TestVectorIndex_NoCollection(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()

	_, err := idx.Search(ctx, []float32{1, 0, 0}, domain.Filter{}, 5)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)

	err = idx.Upsert(ctx, []domain.IndexRecord{indextest.Record("a", "China", "x", 1, 0, 0)}, true)
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestVectorIndex_QueryDimensionMismatch(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx, indextest.Spec, false))

	_, err := idx.Search(ctx, []float32{1, 0}, domain.Filter{}, 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestVectorIndex_RejectsEmptyID(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx, indextest.Spec, false))

	err := idx.Upsert(ctx, []domain.IndexRecord{indextest.Record("", "China", "x", 1, 0, 0)}, true)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, 0, idx.Count())
}

func TestVectorIndex_StoresVectorCopy(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx, indextest.Spec, false))

	vec := []float32{1, 0, 0}
	require.NoError(t, idx.Upsert(ctx, []domain.IndexRecord{indextest.Record("a", "China", "x", vec...)}, true))
	vec[0] = 0
	vec[1] = 1

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, domain.Filter{}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-9)
}

func TestVectorIndex_TiesBreakByID(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx, indextest.Spec, false))
	require.NoError(t, idx.Upsert(ctx, []domain.IndexRecord{
		indextest.Record("c", "China", "x", 1, 0, 0),
		indextest.Record("a", "China", "y", 1, 0, 0),
		indextest.Record("b", "China", "z", 1, 0, 0),
	}, true))

	hits, err := idx.Search(ctx, []float32{1, 0, 0}, domain.Filter{}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "a", hits[0].Record.ID)
	assert.Equal(t, "b", hits[1].Record.ID)
	assert.Equal(t, "c", hits[2].Record.ID)
}

func TestVectorIndex_CollectionsAreSeparate(t *testing.T) {
	idx := NewVectorIndex()
	ctx := context.Background()
	require.NoError(t, idx.EnsureCollection(ctx, indextest.Spec, false))
	require.NoError(t, idx.Upsert(ctx, []domain.IndexRecord{indextest.Record("a", "China", "x", 1, 0, 0)}, true))

	other := indextest.Spec
	other.Name = "other"
	require.NoError(t, idx.EnsureCollection(ctx, other, false))
	assert.Equal(t, 0, idx.Count())

	require.NoError(t, idx.EnsureCollection(ctx, indextest.Spec, false))
	assert.Equal(t, 1, idx.Count())
}
