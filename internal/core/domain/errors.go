package domain

import "errors"

// Domain errors represent pipeline failures.
// Adapters wrap transport errors into the matching sentinel so callers
// can branch with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFilter indicates a filter with an unsupported or malformed predicate.
	ErrInvalidFilter = errors.New("invalid filter")

	// Indexing Errors.

	// ErrFetchNotFound indicates the article source has no page for a site.
	// The site is skipped; the run continues.
	ErrFetchNotFound = errors.New("document not found")

	// ErrFetch indicates a transient failure fetching metadata or an article.
	ErrFetch = errors.New("fetch failed")

	// ErrIndexingInProgress indicates an indexing run is already active.
	ErrIndexingInProgress = errors.New("indexing in progress")

	// Collaborator Errors.

	// ErrEmbedding indicates the embedding service failed.
	// Fatal to the current batch or request.
	ErrEmbedding = errors.New("embedding failed")

	// ErrGeneration indicates the language model failed to produce an answer.
	ErrGeneration = errors.New("generation failed")

	// Vector Index Errors.

	// ErrIndexUnavailable indicates the vector index backend cannot be reached.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrDimensionMismatch indicates a vector whose size differs from the collection's.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")

	// ErrSchemaMismatch indicates an existing collection was created with a
	// different dimension, metric or embedding model.
	ErrSchemaMismatch = errors.New("collection schema mismatch")
)
