// Package storage opens the vector index and run history selected by
// settings.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/chromem"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/pgvector"
	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

// chromemDir is the chromem-go directory inside the data directory.
const chromemDir = "chromem"

// Backend is an opened vector index with its run history.
type Backend struct {
	Index driven.VectorIndex
	Runs  driven.RunStore

	closers []io.Closer
}

// Close releases every resource held by the backend.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DataDir resolves the data directory for file-backed backends.
// An empty path means ~/.heritage/data.
func DataDir(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".heritage", "data"), nil
}

// Open opens the backend named by settings. The memory backend keeps run
// history in memory; every other backend records runs in the SQLite
// database in the data directory.
func Open(ctx context.Context, settings domain.IndexSettings) (*Backend, error) {
	if settings.Backend == domain.IndexBackendMemory {
		return &Backend{Index: memory.NewVectorIndex(), Runs: memory.NewRunStore()}, nil
	}
	if !settings.Backend.IsValid() {
		return nil, fmt.Errorf("%w: unsupported index backend: %q", domain.ErrInvalidInput, settings.Backend)
	}
	if settings.Backend == domain.IndexBackendPgvector && settings.DSN == "" {
		return nil, fmt.Errorf("%w: the pgvector backend needs index.dsn", domain.ErrInvalidInput)
	}

	dir, err := DataDir(settings.Path)
	if err != nil {
		return nil, err
	}
	store, err := sqlite.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	switch settings.Backend {
	case domain.IndexBackendSQLite:
		// The SQLite index closes the store it shares with the run history.
		index := store.VectorIndex()
		return &Backend{Index: index, Runs: store.RunStore(), closers: []io.Closer{index}}, nil

	case domain.IndexBackendChromem:
		index, err := chromem.New(filepath.Join(dir, chromemDir))
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
		}
		return &Backend{Index: index, Runs: store.RunStore(), closers: []io.Closer{index, store}}, nil

	default:
		index, err := pgvector.New(ctx, settings.DSN)
		if err != nil {
			store.Close()
			return nil, err
		}
		return &Backend{Index: index, Runs: store.RunStore(), closers: []io.Closer{index, store}}, nil
	}
}
