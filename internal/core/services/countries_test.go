package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

func TestCountryService_ListCountries(t *testing.T) {
	idx := seededIndex(t)
	require.NoError(t, idx.Upsert(context.Background(), []domain.IndexRecord{
		{ID: "e", Vector: []float32{0, 1, 0}, Payload: domain.Payload{SiteName: "Unlabelled", Text: "x"}},
		{ID: "f", Vector: []float32{0, 1, 0}, Payload: domain.Payload{SiteName: "Machu Picchu", Country: "Peru", Text: "y"}},
	}, true))

	countries, err := NewCountryService(idx).ListCountries(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"China", "France", "Peru"}, countries)
}

func TestCountryService_EmptyIndex(t *testing.T) {
	idx := memory.NewVectorIndex()
	require.NoError(t, idx.EnsureCollection(context.Background(), testSpec, false))

	countries, err := NewCountryService(idx).ListCountries(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, countries)
	assert.Empty(t, countries)
}

func TestCountryService_ScrollLimit(t *testing.T) {
	service := NewCountryService(seededIndex(t))
	service.limit = 1

	countries, err := service.ListCountries(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"China"}, countries)
}

func TestCountryService_Unavailable(t *testing.T) {
	idx := &failingIndex{VectorIndex: memory.NewVectorIndex(), scrollErr: domain.ErrIndexUnavailable}

	_, err := NewCountryService(idx).ListCountries(context.Background())

	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}
