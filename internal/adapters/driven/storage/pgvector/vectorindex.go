// Package pgvector provides a driven.VectorIndex backed by PostgreSQL with
// the pgvector extension. Each collection is a table with a vector(N)
// column; similarity is the cosine operator evaluated by the server.
package pgvector

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// schemaTable records the schema of every collection.
const schemaTable = "heritage_collections"

// VectorIndex stores records in PostgreSQL.
type VectorIndex struct {
	pool *pgxpool.Pool

	mu   sync.RWMutex
	spec *domain.CollectionSpec
}

// New connects to the database at dsn, enables the vector extension and
// creates the schema table.
func New(ctx context.Context, dsn string) (*VectorIndex, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, unavailable("connecting", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable("pinging", err)
	}

	v := &VectorIndex{pool: pool}
	if err := v.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return v, nil
}

func (v *VectorIndex) init(ctx context.Context) error {
	_, err := v.pool.Exec(ctx, `
		CREATE EXTENSION IF NOT EXISTS vector;

		CREATE TABLE IF NOT EXISTS `+schemaTable+` (
			name TEXT PRIMARY KEY,
			dimension INTEGER NOT NULL,
			metric TEXT NOT NULL,
			embedding_model TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT now()
		);
	`)
	if err != nil {
		return unavailable("creating schema table", err)
	}
	return nil
}

// EnsureCollection creates or validates the collection and makes it active.
func (v *VectorIndex) EnsureCollection(ctx context.Context, spec domain.CollectionSpec, recreate bool) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	tx, err := v.pool.Begin(ctx)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	table := tableName(spec.Name)
	if recreate {
		if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return unavailable("dropping collection table", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM "+schemaTable+" WHERE name = $1", spec.Name); err != nil {
			return unavailable("dropping collection schema", err)
		}
	}

	var existing domain.CollectionSpec
	var metric string
	err = tx.QueryRow(ctx, `
		SELECT name, dimension, metric, embedding_model FROM `+schemaTable+` WHERE name = $1
	`, spec.Name).Scan(&existing.Name, &existing.Dimension, &metric, &existing.EmbeddingModel)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if err := createCollection(ctx, tx, spec, table); err != nil {
			return err
		}
	case err != nil:
		return unavailable("reading collection schema", err)
	default:
		existing.Metric = domain.DistanceMetric(metric)
		if err := spec.Compatible(existing); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return unavailable("committing collection", err)
	}

	v.spec = &spec
	return nil
}

func createCollection(ctx context.Context, tx pgx.Tx, spec domain.CollectionSpec, table string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO `+schemaTable+` (name, dimension, metric, embedding_model)
		VALUES ($1, $2, $3, $4)
	`, spec.Name, spec.Dimension, string(spec.Metric), spec.EmbeddingModel)
	if err != nil {
		return unavailable("saving collection schema", err)
	}

	// No ANN index: filtered queries must see every matching row.
	_, err = tx.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			site_name TEXT NOT NULL,
			country TEXT NOT NULL,
			category TEXT NOT NULL,
			source TEXT NOT NULL,
			text TEXT NOT NULL,
			embedding vector(%d) NOT NULL
		)
	`, table, spec.Dimension))
	if err != nil {
		return unavailable("creating collection table", err)
	}

	index := pgx.Identifier{"idx_" + sanitize(spec.Name) + "_country"}.Sanitize()
	if _, err := tx.Exec(ctx, "CREATE INDEX IF NOT EXISTS "+index+" ON "+table+" (country)"); err != nil {
		return unavailable("creating country index", err)
	}
	return nil
}

// Upsert writes all records in one transaction.
func (v *VectorIndex) Upsert(ctx context.Context, records []domain.IndexRecord, _ bool) error {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.spec == nil {
		return noCollection()
	}

	for i := range records {
		if err := records[i].CheckDimension(v.spec.Dimension); err != nil {
			return err
		}
		if records[i].ID == "" {
			return fmt.Errorf("%w: record %d has no id", domain.ErrInvalidInput, i)
		}
	}
	if len(records) == 0 {
		return nil
	}

	query := `INSERT INTO ` + tableName(v.spec.Name) + ` (id, site_name, country, category, source, text, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			site_name = EXCLUDED.site_name,
			country = EXCLUDED.country,
			category = EXCLUDED.category,
			source = EXCLUDED.source,
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding`

	batch := &pgx.Batch{}
	for _, r := range records {
		p := r.Payload
		batch.Queue(query, r.ID, p.SiteName, p.Country, p.Category, p.SourceURL, p.Text,
			pgvector.NewVector(r.Vector))
	}

	tx, err := v.pool.Begin(ctx)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return unavailable("upserting records", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return unavailable("committing records", err)
	}
	return nil
}

// Search orders rows by cosine distance on the server.
func (v *VectorIndex) Search(
	ctx context.Context, vector []float32, filter domain.Filter, limit int,
) ([]domain.ScoredRecord, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.spec == nil {
		return nil, noCollection()
	}
	if len(vector) != v.spec.Dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
			domain.ErrDimensionMismatch, len(vector), v.spec.Dimension)
	}
	if limit <= 0 {
		return []domain.ScoredRecord{}, nil
	}

	query, args := searchQuery(tableName(v.spec.Name), pgvector.NewVector(vector), filter, limit)
	rows, err := v.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, unavailable("querying records", err)
	}
	defer rows.Close()

	hits := []domain.ScoredRecord{}
	for rows.Next() {
		var r domain.IndexRecord
		var embedding pgvector.Vector
		var score float64
		if err := rows.Scan(&r.ID, &r.Payload.SiteName, &r.Payload.Country, &r.Payload.Category,
			&r.Payload.SourceURL, &r.Payload.Text, &embedding, &score); err != nil {
			return nil, unavailable("scanning record", err)
		}
		r.Vector = embedding.Slice()
		hits = append(hits, domain.ScoredRecord{Record: r, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating records", err)
	}

	return vecmath.Rank(hits, limit), nil
}

// ScrollAll returns payloads ordered by record ID. A non-positive limit returns all.
func (v *VectorIndex) ScrollAll(ctx context.Context, limit int) ([]domain.Payload, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.spec == nil {
		return nil, noCollection()
	}

	var bound *int // NULL means no limit
	if limit > 0 {
		bound = &limit
	}

	rows, err := v.pool.Query(ctx, `
		SELECT site_name, country, category, source, text
		FROM `+tableName(v.spec.Name)+`
		ORDER BY id
		LIMIT $1
	`, bound)
	if err != nil {
		return nil, unavailable("scrolling records", err)
	}
	defer rows.Close()

	payloads := []domain.Payload{}
	for rows.Next() {
		var p domain.Payload
		if err := rows.Scan(&p.SiteName, &p.Country, &p.Category, &p.SourceURL, &p.Text); err != nil {
			return nil, unavailable("scanning payload", err)
		}
		payloads = append(payloads, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating payloads", err)
	}
	return payloads, nil
}

// Close closes the connection pool.
func (v *VectorIndex) Close() error {
	if v.pool != nil {
		v.pool.Close()
	}
	return nil
}

// searchQuery builds the ranked query for a validated filter. Column names
// come from Predicate.Field, never from user input.
func searchQuery(table string, vector pgvector.Vector, filter domain.Filter, limit int) (string, []any) {
	args := []any{vector}
	var where []string
	for _, p := range filter.Predicates {
		args = append(args, p.Value)
		where = append(where, fmt.Sprintf("%s = $%d", p.Kind.Field(), len(args)))
	}
	args = append(args, limit)

	var b strings.Builder
	b.WriteString(`SELECT id, site_name, country, category, source, text, embedding,
		1 - (embedding <=> $1) AS score
		FROM `)
	b.WriteString(table)
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY embedding <=> $1, id LIMIT $%d", len(args))
	return b.String(), args
}

// tableName returns the quoted table holding a collection's records.
func tableName(collection string) string {
	return pgx.Identifier{"records_" + sanitize(collection)}.Sanitize()
}

// sanitize keeps identifier-safe characters and lowercases the rest.
func sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

func unavailable(action string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrIndexUnavailable, action, err)
}

func noCollection() error {
	return fmt.Errorf("%w: no collection has been created", domain.ErrIndexUnavailable)
}
