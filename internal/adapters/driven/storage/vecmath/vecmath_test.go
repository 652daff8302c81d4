package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 3}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 1}, []float32{-1, -1}), 1e-9)
	assert.Equal(t, 0.0, Cosine([]float32{0, 0}, []float32{1, 0}))
	assert.Equal(t, 0.0, Cosine([]float32{1}, []float32{1, 0}))
}

func TestRank(t *testing.T) {
	hit := func(id string, score float64) domain.ScoredRecord {
		return domain.ScoredRecord{Record: domain.IndexRecord{ID: id}, Score: score}
	}

	t.Run("orders by score then id", func(t *testing.T) {
		hits := []domain.ScoredRecord{hit("c", 0.5), hit("b", 0.9), hit("a", 0.5)}
		ranked := Rank(hits, 10)
		require.Len(t, ranked, 3)
		assert.Equal(t, "b", ranked[0].Record.ID)
		assert.Equal(t, "a", ranked[1].Record.ID)
		assert.Equal(t, "c", ranked[2].Record.ID)
	})

	t.Run("truncates to limit", func(t *testing.T) {
		hits := []domain.ScoredRecord{hit("a", 0.1), hit("b", 0.2), hit("c", 0.3)}
		ranked := Rank(hits, 2)
		require.Len(t, ranked, 2)
		assert.Equal(t, "c", ranked[0].Record.ID)
	})

	t.Run("non-positive limit", func(t *testing.T) {
		assert.Empty(t, Rank([]domain.ScoredRecord{hit("a", 1)}, 0))
		assert.Empty(t, Rank([]domain.ScoredRecord{hit("a", 1)}, -3))
	})
}

func TestEncodeDecode(t *testing.T) {
	v := []float32{0.25, -1.5, 3}
	got, err := Decode(Encode(v))
	require.NoError(t, err)
	assert.Equal(t, v, got)

	_, err = Decode([]byte{1, 2, 3})
	assert.Error(t, err)
}

func TestCopy(t *testing.T) {
	v := []float32{1, 2}
	c := Copy(v)
	c[0] = 9
	assert.Equal(t, float32(1), v[0])
	assert.Nil(t, Copy(nil))
}
