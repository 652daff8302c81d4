package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driving"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

// Ensure RetrieverService implements the interface.
var _ driving.RetrieverService = (*RetrieverService)(nil)

// RetrieverService embeds a query and finds the nearest chunks.
type RetrieverService struct {
	spec     domain.CollectionSpec
	index    driven.VectorIndex
	embedder driven.EmbeddingService
	topK     int
}

// NewRetrieverService creates a retriever over the collection described by
// spec. A non-positive topK uses domain.DefaultTopK.
func NewRetrieverService(
	spec domain.CollectionSpec,
	index driven.VectorIndex,
	embedder driven.EmbeddingService,
	topK int,
) *RetrieverService {
	if topK <= 0 {
		topK = domain.DefaultTopK
	}
	return &RetrieverService{
		spec:     spec,
		index:    index,
		embedder: embedder,
		topK:     topK,
	}
}

// Open checks that the embedder matches the collection and attaches the
// index to it, creating an empty collection when none exists. A collection
// built with another model or dimension fails with domain.ErrSchemaMismatch.
func (s *RetrieverService) Open(ctx context.Context) error {
	if s.embedder.ModelName() != s.spec.EmbeddingModel {
		return fmt.Errorf("%w: embedder model %q, collection expects %q",
			domain.ErrSchemaMismatch, s.embedder.ModelName(), s.spec.EmbeddingModel)
	}
	if s.embedder.Dimensions() != s.spec.Dimension {
		return fmt.Errorf("%w: embedder produces %d dimensions, collection expects %d",
			domain.ErrDimensionMismatch, s.embedder.Dimensions(), s.spec.Dimension)
	}
	if err := s.index.EnsureCollection(ctx, s.spec, false); err != nil {
		return fmt.Errorf("open collection: %w", err)
	}
	return nil
}

// TopK returns the number of hits requested per query.
func (s *RetrieverService) TopK() int {
	return s.topK
}

// Retrieve returns the grounding context for query.
func (s *RetrieverService) Retrieve(ctx context.Context, query string, filter domain.Filter) (string, error) {
	hits, err := s.Search(ctx, query, filter)
	if err != nil {
		return "", err
	}
	return domain.GroundingContext(hits), nil
}

// Search returns up to TopK hits for query that satisfy filter.
func (s *RetrieverService) Search(
	ctx context.Context, query string, filter domain.Filter,
) ([]domain.ScoredRecord, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q, filter: %s, k: %d", query, filter, s.topK)

	if err := filter.Validate(); err != nil {
		return nil, err
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		if !errors.Is(err, domain.ErrEmbedding) {
			err = fmt.Errorf("%w: %w", domain.ErrEmbedding, err)
		}
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.index.Search(ctx, vector, filter, s.topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	logger.Debug("Hits: %d", len(hits))
	for i, h := range hits {
		logger.Debug("  %d. %.4f %s (%s)", i+1, h.Score, h.Record.Payload.SiteName, h.Record.Payload.Country)
	}
	return hits, nil
}
