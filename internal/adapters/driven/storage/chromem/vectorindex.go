// Package chromem provides a driven.VectorIndex backed by chromem-go, an
// embeddable vector database with optional on-disk persistence.
package chromem

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"
	chromemgo "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// schemaFile sits next to the collection directories. chromem-go skips
// plain files in its root when loading.
const schemaFile = "schemas.toml"

// Metadata keys stored on each document.
const (
	keySiteName = "site_name"
	keyCountry  = "country"
	keyCategory = "category"
	keySource   = "source"

	// keyVector holds the upserted vector. chromem-go normalises the
	// embedding it stores, so Search returns this copy instead.
	keyVector = "vector"
)

// errNoEmbedder is returned if chromem-go ever tries to embed text itself.
// Callers always supply vectors.
var errNoEmbedder = errors.New("chromem: documents must carry precomputed embeddings")

type schemaEntry struct {
	Dimension      int    `toml:"dimension"`
	Metric         string `toml:"metric"`
	EmbeddingModel string `toml:"embedding_model"`
}

// VectorIndex stores records in a chromem-go collection.
type VectorIndex struct {
	mu      sync.RWMutex
	db      *chromemgo.DB
	dir     string
	schemas map[string]schemaEntry
	coll    *chromemgo.Collection
	spec    domain.CollectionSpec
}

// New creates an index. An empty dir keeps everything in memory; otherwise
// collections are persisted under dir.
func New(dir string) (*VectorIndex, error) {
	v := &VectorIndex{
		dir:     dir,
		schemas: make(map[string]schemaEntry),
	}

	if dir == "" {
		v.db = chromemgo.NewDB()
		return v, nil
	}

	db, err := chromemgo.NewPersistentDB(dir, false)
	if err != nil {
		return nil, fmt.Errorf("open chromem db: %w", err)
	}
	v.db = db

	if err := v.loadSchemas(); err != nil {
		return nil, err
	}
	return v, nil
}

func noEmbed(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedder
}

// EnsureCollection creates or validates the collection and makes it active.
func (v *VectorIndex) EnsureCollection(_ context.Context, spec domain.CollectionSpec, recreate bool) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if recreate {
		if err := v.db.DeleteCollection(spec.Name); err != nil {
			return fmt.Errorf("%w: delete collection: %v", domain.ErrIndexUnavailable, err)
		}
		delete(v.schemas, spec.Name)
	}

	if existing, ok := v.schemas[spec.Name]; ok {
		if err := spec.Compatible(existing.spec(spec.Name)); err != nil {
			return err
		}
	}

	coll, err := v.db.GetOrCreateCollection(spec.Name, nil, noEmbed)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	if _, ok := v.schemas[spec.Name]; !ok {
		v.schemas[spec.Name] = schemaEntry{
			Dimension:      spec.Dimension,
			Metric:         string(spec.Metric),
			EmbeddingModel: spec.EmbeddingModel,
		}
		if err := v.saveSchemas(); err != nil {
			return err
		}
	}

	v.coll = coll
	v.spec = spec
	return nil
}

// Upsert validates every record, then adds them one by one. chromem-go
// replaces documents that share an ID.
func (v *VectorIndex) Upsert(ctx context.Context, records []domain.IndexRecord, _ bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.coll == nil {
		return fmt.Errorf("%w: no collection has been created", domain.ErrIndexUnavailable)
	}

	for i := range records {
		if err := records[i].CheckDimension(v.spec.Dimension); err != nil {
			return err
		}
		if records[i].ID == "" {
			return fmt.Errorf("%w: record %d has no id", domain.ErrInvalidInput, i)
		}
	}

	for _, r := range records {
		doc := chromemgo.Document{
			ID:        r.ID,
			Metadata:  toMetadata(r.Payload, r.Vector),
			Embedding: vecmath.Copy(r.Vector),
			Content:   r.Payload.Text,
		}
		if err := v.coll.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("%w: add document %s: %v", domain.ErrIndexUnavailable, r.ID, err)
		}
	}
	return nil
}

// Search queries the collection with an equality where-clause built from filter.
func (v *VectorIndex) Search(
	ctx context.Context, vector []float32, filter domain.Filter, limit int,
) ([]domain.ScoredRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.coll == nil {
		return nil, fmt.Errorf("%w: no collection has been created", domain.ErrIndexUnavailable)
	}
	if len(vector) != v.spec.Dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
			domain.ErrDimensionMismatch, len(vector), v.spec.Dimension)
	}

	// chromem-go rejects nResults above the collection size.
	n := min(limit, v.coll.Count())
	if n <= 0 {
		return []domain.ScoredRecord{}, nil
	}

	results, err := v.coll.QueryEmbedding(ctx, vector, n, whereClause(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", domain.ErrIndexUnavailable, err)
	}

	hits := make([]domain.ScoredRecord, 0, len(results))
	for _, res := range results {
		hits = append(hits, domain.ScoredRecord{
			Record: domain.IndexRecord{
				ID:      res.ID,
				Vector:  vectorOf(res),
				Payload: fromResult(res),
			},
			Score: float64(res.Similarity),
		})
	}
	return vecmath.Rank(hits, limit), nil
}

// ScrollAll returns payloads ordered by record ID. chromem-go has no listing
// call, so this runs an unfiltered query for every document.
func (v *VectorIndex) ScrollAll(ctx context.Context, limit int) ([]domain.Payload, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.coll == nil {
		return nil, fmt.Errorf("%w: no collection has been created", domain.ErrIndexUnavailable)
	}

	count := v.coll.Count()
	if count == 0 {
		return []domain.Payload{}, nil
	}

	probe := make([]float32, v.spec.Dimension)
	probe[0] = 1
	results, err := v.coll.QueryEmbedding(ctx, probe, count, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: scroll: %v", domain.ErrIndexUnavailable, err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	if limit > 0 && limit < len(results) {
		results = results[:limit]
	}

	payloads := make([]domain.Payload, len(results))
	for i, res := range results {
		payloads[i] = fromResult(res)
	}
	return payloads, nil
}

// Close releases resources. chromem-go writes synchronously, so there is
// nothing to flush.
func (v *VectorIndex) Close() error {
	return nil
}

func (e schemaEntry) spec(name string) domain.CollectionSpec {
	return domain.CollectionSpec{
		Name:           name,
		Dimension:      e.Dimension,
		Metric:         domain.DistanceMetric(e.Metric),
		EmbeddingModel: e.EmbeddingModel,
	}
}

func (v *VectorIndex) loadSchemas() error {
	data, err := os.ReadFile(filepath.Join(v.dir, schemaFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read collection schemas: %w", err)
	}
	if err := toml.Unmarshal(data, &v.schemas); err != nil {
		return fmt.Errorf("parse collection schemas: %w", err)
	}
	return nil
}

func (v *VectorIndex) saveSchemas() error {
	if v.dir == "" {
		return nil
	}
	data, err := toml.Marshal(v.schemas)
	if err != nil {
		return fmt.Errorf("encode collection schemas: %w", err)
	}
	if err := os.WriteFile(filepath.Join(v.dir, schemaFile), data, 0o600); err != nil {
		return fmt.Errorf("write collection schemas: %w", err)
	}
	return nil
}

func whereClause(filter domain.Filter) map[string]string {
	if filter.IsEmpty() {
		return nil
	}
	where := make(map[string]string, len(filter.Predicates))
	for _, p := range filter.Predicates {
		where[p.Kind.Field()] = p.Value
	}
	return where
}

func toMetadata(p domain.Payload, vector []float32) map[string]string {
	return map[string]string{
		keySiteName: p.SiteName,
		keyCountry:  p.Country,
		keyCategory: p.Category,
		keySource:   p.SourceURL,
		keyVector:   base64.StdEncoding.EncodeToString(vecmath.Encode(vector)),
	}
}

func fromResult(res chromemgo.Result) domain.Payload {
	return domain.Payload{
		SiteName:  res.Metadata[keySiteName],
		Country:   res.Metadata[keyCountry],
		Category:  res.Metadata[keyCategory],
		SourceURL: res.Metadata[keySource],
		Text:      res.Content,
	}
}

// vectorOf returns the vector as upserted, falling back to chromem-go's
// normalised copy for documents written without one.
func vectorOf(res chromemgo.Result) []float32 {
	raw, err := base64.StdEncoding.DecodeString(res.Metadata[keyVector])
	if err != nil || len(raw) == 0 {
		return res.Embedding
	}
	v, err := vecmath.Decode(raw)
	if err != nil {
		return res.Embedding
	}
	return v
}
