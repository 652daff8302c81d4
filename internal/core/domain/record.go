package domain

import "fmt"

// DefaultCollectionName is the vector index collection holding the corpus.
const DefaultCollectionName = "unesco_world_heritage"

// DefaultDimension is the vector size of the pinned embedding model.
const DefaultDimension = 768

// DistanceMetric identifies the similarity measure of a collection.
type DistanceMetric string

// Supported distance metrics.
const (
	// DistanceCosine ranks by cosine similarity, highest first.
	DistanceCosine DistanceMetric = "cosine"
)

// IsValid returns true if the metric is supported.
func (m DistanceMetric) IsValid() bool {
	return m == DistanceCosine
}

// String returns the string representation.
func (m DistanceMetric) String() string {
	return string(m)
}

// CollectionSpec describes the schema of a vector index collection.
// Dimension and EmbeddingModel are fixed for the lifetime of the collection.
type CollectionSpec struct {
	// Name is the collection name.
	Name string

	// Dimension is the vector size every record must have.
	Dimension int

	// Metric is the similarity measure used by Search.
	Metric DistanceMetric

	// EmbeddingModel is the model that produced the stored vectors.
	// Querying with vectors from a different model gives meaningless scores.
	EmbeddingModel string
}

// Validate checks the spec is usable.
func (s CollectionSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: collection name is required", ErrInvalidInput)
	}
	if s.Dimension <= 0 {
		return fmt.Errorf("%w: dimension must be positive, got %d", ErrInvalidInput, s.Dimension)
	}
	if !s.Metric.IsValid() {
		return fmt.Errorf("%w: unsupported distance metric %q", ErrInvalidInput, s.Metric)
	}
	return nil
}

// Compatible reports whether an existing collection can serve s.
// An empty EmbeddingModel on either side is not compared.
func (s CollectionSpec) Compatible(existing CollectionSpec) error {
	if s.Dimension != existing.Dimension {
		return fmt.Errorf("%w: collection %q has dimension %d, want %d",
			ErrSchemaMismatch, existing.Name, existing.Dimension, s.Dimension)
	}
	if s.Metric != existing.Metric {
		return fmt.Errorf("%w: collection %q uses %s, want %s",
			ErrSchemaMismatch, existing.Name, existing.Metric, s.Metric)
	}
	if s.EmbeddingModel != "" && existing.EmbeddingModel != "" && s.EmbeddingModel != existing.EmbeddingModel {
		return fmt.Errorf("%w: collection %q was embedded with %q, not %q",
			ErrSchemaMismatch, existing.Name, existing.EmbeddingModel, s.EmbeddingModel)
	}
	return nil
}

// Payload is the structured data stored alongside a vector.
type Payload struct {
	// SiteName is the site the chunk belongs to.
	SiteName string `json:"site_name"`

	// Country is the site's country; the only filterable field.
	Country string `json:"country"`

	// Category is the heritage category (always UnknownCategory today).
	Category string `json:"category"`

	// SourceURL is the canonical URL of the article.
	SourceURL string `json:"source"`

	// Text is the exact chunk text the vector was computed from.
	Text string `json:"text"`
}

// IndexRecord is a single point in the vector index.
type IndexRecord struct {
	// ID is a fresh opaque identifier, never reused.
	ID string

	// Vector is the embedding of Payload.Text.
	Vector []float32

	// Payload holds the chunk text and site metadata.
	Payload Payload
}

// CheckDimension returns ErrDimensionMismatch if the vector has the wrong size.
func (r IndexRecord) CheckDimension(dim int) error {
	if len(r.Vector) != dim {
		return fmt.Errorf("%w: record %s has %d dimensions, collection has %d",
			ErrDimensionMismatch, r.ID, len(r.Vector), dim)
	}
	return nil
}

// ScoredRecord is a search hit.
type ScoredRecord struct {
	// Record is the matched index record.
	Record IndexRecord

	// Score is the similarity to the query vector, higher is closer.
	Score float64
}
