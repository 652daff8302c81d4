package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectionSpec_Validate(t *testing.T) {
	valid := CollectionSpec{Name: "sites", Dimension: 3, Metric: DistanceCosine}
	assert.NoError(t, valid.Validate())

	noName := valid
	noName.Name = ""
	assert.ErrorIs(t, noName.Validate(), ErrInvalidInput)

	noDim := valid
	noDim.Dimension = 0
	assert.ErrorIs(t, noDim.Validate(), ErrInvalidInput)

	badMetric := valid
	badMetric.Metric = "dot"
	assert.ErrorIs(t, badMetric.Validate(), ErrInvalidInput)
}

func TestCollectionSpec_Compatible(t *testing.T) {
	want := CollectionSpec{Name: "sites", Dimension: 768, Metric: DistanceCosine, EmbeddingModel: "nomic-embed-text"}

	t.Run("identical", func(t *testing.T) {
		assert.NoError(t, want.Compatible(want))
	})

	t.Run("dimension differs", func(t *testing.T) {
		existing := want
		existing.Dimension = 384
		assert.ErrorIs(t, want.Compatible(existing), ErrSchemaMismatch)
	})

	t.Run("model differs", func(t *testing.T) {
		existing := want
		existing.EmbeddingModel = "all-minilm"
		assert.ErrorIs(t, want.Compatible(existing), ErrSchemaMismatch)
	})

	t.Run("unknown model on existing is accepted", func(t *testing.T) {
		existing := want
		existing.EmbeddingModel = ""
		assert.NoError(t, want.Compatible(existing))
	})
}

func TestIndexRecord_CheckDimension(t *testing.T) {
	r := IndexRecord{ID: "r1", Vector: []float32{1, 2, 3}}
	assert.NoError(t, r.CheckDimension(3))
	assert.ErrorIs(t, r.CheckDimension(4), ErrDimensionMismatch)
}

func TestSettings_CollectionSpec(t *testing.T) {
	s := DefaultSettings()
	spec := s.CollectionSpec()
	assert.Equal(t, "unesco_world_heritage", spec.Name)
	assert.Equal(t, 768, spec.Dimension)
	assert.Equal(t, DistanceCosine, spec.Metric)
	assert.Equal(t, DefaultEmbeddingModel, spec.EmbeddingModel)
}
