package tui

import (
	"context"
	"sync"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

// MockAnswerService implements driving.AnswerService for tests.
type MockAnswerService struct {
	mu       sync.Mutex
	Answer   *domain.Answer
	Err      error
	Question string
	Filter   domain.Filter
}

func (m *MockAnswerService) Ask(_ context.Context, question string, filter domain.Filter) (*domain.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Question = question
	m.Filter = filter
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Answer != nil {
		return m.Answer, nil
	}
	return &domain.Answer{Question: question, Text: "answer", Sources: []domain.Source{}}, nil
}

// MockCountryService implements driving.CountryService for tests.
type MockCountryService struct {
	Countries []string
	Err       error
}

func (m *MockCountryService) ListCountries(_ context.Context) ([]string, error) {
	return m.Countries, m.Err
}
