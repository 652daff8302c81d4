package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// AnswerService answers questions from retrieved context.
// One request makes one embed call, one search and one generate call.
type AnswerService struct {
	retriever driving.RetrieverService
	assembler *Assembler
	llm       driven.LLMService
	tokens    driven.TokenCounter
	opts      driven.GenerateOptions
}

// NewAnswerService creates an answer service.
func NewAnswerService(
	retriever driving.RetrieverService,
	assembler *Assembler,
	llm driven.LLMService,
) *AnswerService {
	return &AnswerService{
		retriever: retriever,
		assembler: assembler,
		llm:       llm,
	}
}

// SetTokenCounter enables prompt size logging.
func (s *AnswerService) SetTokenCounter(tokens driven.TokenCounter) {
	s.tokens = tokens
}

// SetGenerateOptions sets the options passed to every Generate call.
func (s *AnswerService) SetGenerateOptions(opts driven.GenerateOptions) {
	s.opts = opts
}

// Ask answers question using only context retrieved under filter.
// Either a full answer or an error is returned, never a partial answer.
func (s *AnswerService) Ask(ctx context.Context, question string, filter domain.Filter) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: no question provided", domain.ErrInvalidInput)
	}

	hits, err := s.retriever.Search(ctx, question, filter)
	if err != nil {
		return nil, err
	}
	grounding := domain.GroundingContext(hits)

	prompt := s.assembler.Assemble(grounding, question)

	logger.Section("Generation")
	logger.Debug("Model: %s", s.llm.ModelName())
	if s.tokens != nil {
		logger.Debug("Prompt: %d tokens", s.tokens.CountTokens(prompt))
	}

	out, err := s.llm.Generate(ctx, prompt, s.opts)
	if err != nil {
		if !errors.Is(err, domain.ErrGeneration) {
			err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		}
		return nil, err
	}

	return &domain.Answer{
		Question: question,
		Text:     domain.StripReasoning(out),
		Sources:  domain.SourcesOf(hits),
		Context:  grounding,
		Model:    s.llm.ModelName(),
	}, nil
}
