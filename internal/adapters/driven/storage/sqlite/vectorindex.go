package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/vecmath"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

// vectorIndex implements driven.VectorIndex. Predicates are pushed into the
// WHERE clause; similarity is computed in process over the matching rows.
type vectorIndex struct {
	store *Store

	mu   sync.RWMutex
	spec *domain.CollectionSpec
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// EnsureCollection creates or validates the collection and makes it active.
func (v *vectorIndex) EnsureCollection(ctx context.Context, spec domain.CollectionSpec, recreate bool) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if recreate {
		if _, err := tx.ExecContext(ctx, "DELETE FROM records WHERE collection = ?", spec.Name); err != nil {
			return unavailable("dropping records", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", spec.Name); err != nil {
			return unavailable("dropping collection", err)
		}
	}

	existing, err := loadCollection(ctx, tx, spec.Name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		_, err = tx.ExecContext(ctx, `
			INSERT INTO collections (name, dimension, metric, embedding_model)
			VALUES (?, ?, ?, ?)
		`, spec.Name, spec.Dimension, string(spec.Metric), spec.EmbeddingModel)
		if err != nil {
			return unavailable("creating collection", err)
		}
	case err != nil:
		return err
	default:
		if err := spec.Compatible(*existing); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing collection", err)
	}

	v.spec = &spec
	return nil
}

// Upsert writes all records in one transaction. wait is implied by the commit.
func (v *vectorIndex) Upsert(ctx context.Context, records []domain.IndexRecord, _ bool) error {
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

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("beginning transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (collection, id, site_name, country, category, source, text, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			site_name = excluded.site_name,
			country = excluded.country,
			category = excluded.category,
			source = excluded.source,
			text = excluded.text,
			embedding = excluded.embedding
	`)
	if err != nil {
		return unavailable("preparing upsert", err)
	}
	defer stmt.Close()

	for _, r := range records {
		p := r.Payload
		if _, err := stmt.ExecContext(ctx, v.spec.Name, r.ID,
			p.SiteName, p.Country, p.Category, p.SourceURL, p.Text,
			vecmath.Encode(r.Vector)); err != nil {
			return unavailable("upserting record "+r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("committing records", err)
	}
	return nil
}

// Search scores every row that satisfies filter.
func (v *vectorIndex) Search(
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

	query, args := searchQuery(v.spec.Name, filter)
	rows, err := v.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, unavailable("querying records", err)
	}
	defer rows.Close()

	hits := []domain.ScoredRecord{}
	for rows.Next() {
		var r domain.IndexRecord
		var blob []byte
		if err := rows.Scan(&r.ID, &r.Payload.SiteName, &r.Payload.Country,
			&r.Payload.Category, &r.Payload.SourceURL, &r.Payload.Text, &blob); err != nil {
			return nil, unavailable("scanning record", err)
		}
		r.Vector, err = vecmath.Decode(blob)
		if err != nil {
			return nil, unavailable("decoding record "+r.ID, err)
		}
		hits = append(hits, domain.ScoredRecord{
			Record: r,
			Score:  vecmath.Cosine(vector, r.Vector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterating records", err)
	}

	return vecmath.Rank(hits, limit), nil
}

// ScrollAll returns payloads ordered by record ID. A non-positive limit returns all.
func (v *vectorIndex) ScrollAll(ctx context.Context, limit int) ([]domain.Payload, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.spec == nil {
		return nil, noCollection()
	}
	if limit <= 0 {
		limit = -1 // SQLite reads a negative LIMIT as unbounded
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT site_name, country, category, source, text
		FROM records WHERE collection = ?
		ORDER BY id
		LIMIT ?
	`, v.spec.Name, limit)
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

// Close closes the underlying store.
func (v *vectorIndex) Close() error {
	return v.store.Close()
}

// searchQuery builds the row query for a validated filter. Column names
// come from Predicate.Field, never from user input.
func searchQuery(collection string, filter domain.Filter) (string, []any) {
	var b strings.Builder
	b.WriteString(`SELECT id, site_name, country, category, source, text, embedding
		FROM records WHERE collection = ?`)
	args := []any{collection}
	for _, p := range filter.Predicates {
		b.WriteString(" AND ")
		b.WriteString(p.Kind.Field())
		b.WriteString(" = ?")
		args = append(args, p.Value)
	}
	return b.String(), args
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func loadCollection(ctx context.Context, q queryRower, name string) (*domain.CollectionSpec, error) {
	row := q.QueryRowContext(ctx, `
		SELECT name, dimension, metric, embedding_model FROM collections WHERE name = ?
	`, name)

	var spec domain.CollectionSpec
	var metric string
	if err := row.Scan(&spec.Name, &spec.Dimension, &metric, &spec.EmbeddingModel); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, unavailable("scanning collection", err)
	}
	spec.Metric = domain.DistanceMetric(metric)
	return &spec, nil
}

func unavailable(action string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrIndexUnavailable, action, err)
}

func noCollection() error {
	return fmt.Errorf("%w: no collection has been created", domain.ErrIndexUnavailable)
}
