package driving

import (
	"context"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

// RetrieverService finds the chunks relevant to a query.
type RetrieverService interface {
	// Retrieve returns the grounding context for query: the texts of the
	// top hits joined in rank order. No hits yields "" and a nil error.
	Retrieve(ctx context.Context, query string, filter domain.Filter) (string, error)

	// Search returns the ranked hits behind Retrieve.
	Search(ctx context.Context, query string, filter domain.Filter) ([]domain.ScoredRecord, error)
}

// AnswerService answers questions from retrieved context only.
type AnswerService interface {
	// Ask retrieves context for question, builds the grounded prompt and
	// returns the model's answer. Any failure fails the whole request.
	Ask(ctx context.Context, question string, filter domain.Filter) (*domain.Answer, error)
}

// CountryService enumerates filter values.
type CountryService interface {
	// ListCountries returns the sorted distinct countries present in the index.
	ListCountries(ctx context.Context) ([]string, error)
}
