package mcp

import (
	"context"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer     *domain.Answer
	err        error
	lastFilter domain.Filter
}

func (m *mockAnswerService) Ask(_ context.Context, question string, filter domain.Filter) (*domain.Answer, error) {
	m.lastFilter = filter
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Question: question, Sources: []domain.Source{}}, nil
}

// mockRetrieverService is a mock implementation of driving.RetrieverService.
type mockRetrieverService struct {
	hits       []domain.ScoredRecord
	err        error
	lastFilter domain.Filter
}

func (m *mockRetrieverService) Retrieve(ctx context.Context, query string, filter domain.Filter) (string, error) {
	hits, err := m.Search(ctx, query, filter)
	if err != nil {
		return "", err
	}
	return domain.GroundingContext(hits), nil
}

func (m *mockRetrieverService) Search(_ context.Context, _ string, filter domain.Filter) ([]domain.ScoredRecord, error) {
	m.lastFilter = filter
	return m.hits, m.err
}

// mockCountryService is a mock implementation of driving.CountryService.
type mockCountryService struct {
	countries []string
	err       error
}

func (m *mockCountryService) ListCountries(_ context.Context) ([]string, error) {
	return m.countries, m.err
}

func validPorts() *Ports {
	return &Ports{Answer: &mockAnswerService{}, Retriever: &mockRetrieverService{}}
}
