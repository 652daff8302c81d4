package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
)

// Ensure CountryService implements the interface.
var _ driving.CountryService = (*CountryService)(nil)

// DefaultScrollLimit bounds the payload scan used to discover countries.
const DefaultScrollLimit = 10000

// CountryService discovers filter values from the index.
type CountryService struct {
	index driven.VectorIndex
	limit int
}

// NewCountryService creates a country service scanning up to
// DefaultScrollLimit payloads.
func NewCountryService(index driven.VectorIndex) *CountryService {
	return &CountryService{index: index, limit: DefaultScrollLimit}
}

// ListCountries returns the sorted distinct non-empty countries in the index.
func (s *CountryService) ListCountries(ctx context.Context) ([]string, error) {
	payloads, err := s.index.ScrollAll(ctx, s.limit)
	if err != nil {
		return nil, fmt.Errorf("scroll payloads: %w", err)
	}

	seen := make(map[string]bool)
	countries := []string{}
	for _, p := range payloads {
		if p.Country == "" || seen[p.Country] {
			continue
		}
		seen[p.Country] = true
		countries = append(countries, p.Country)
	}
	sort.Strings(countries)
	return countries, nil
}
