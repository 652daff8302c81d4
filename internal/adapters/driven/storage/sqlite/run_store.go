package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

const runColumns = `id, collection, started_at, ended_at, recreated,
	sites_listed, sites_indexed, skipped, failed, chunks, error`

// SaveRun records a finished run. Saving the same ID twice replaces it.
func (s *runStore) SaveRun(ctx context.Context, run domain.IndexRun) error {
	if run.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO index_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			collection = excluded.collection,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			recreated = excluded.recreated,
			sites_listed = excluded.sites_listed,
			sites_indexed = excluded.sites_indexed,
			skipped = excluded.skipped,
			failed = excluded.failed,
			chunks = excluded.chunks,
			error = excluded.error
	`, run.ID, run.Collection, formatTime(run.StartedAt), formatTime(run.EndedAt),
		boolToInt(run.Recreated), run.SitesListed, run.SitesIndexed,
		run.Skipped, run.Failed, run.Chunks, nullString(run.Error))

	if err != nil {
		return fmt.Errorf("saving index run: %w", err)
	}
	return nil
}

// LastRun returns the most recent run for a collection.
func (s *runStore) LastRun(ctx context.Context, collection string) (*domain.IndexRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM index_runs
		WHERE collection = ?
		ORDER BY started_at DESC
		LIMIT 1
	`, collection)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns recent runs across collections, most recent first.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.IndexRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM index_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying index runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.IndexRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index runs: %w", err)
	}

	return runs, nil
}

// PruneRuns keeps the most recent keep runs.
func (s *runStore) PruneRuns(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM index_runs
		WHERE id NOT IN (
			SELECT id FROM index_runs ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning index runs: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.IndexRun, error) {
	var run domain.IndexRun
	var started, ended string
	var recreated int
	var runErr sql.NullString

	if err := row.Scan(&run.ID, &run.Collection, &started, &ended, &recreated,
		&run.SitesListed, &run.SitesIndexed, &run.Skipped, &run.Failed,
		&run.Chunks, &runErr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning index run: %w", err)
	}

	run.StartedAt = parseTime(started)
	run.EndedAt = parseTime(ended)
	run.Recreated = recreated == 1
	run.Error = runErr.String
	return &run, nil
}
