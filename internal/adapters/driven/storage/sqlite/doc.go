// Package sqlite provides a SQLite-based vector index and run history.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. A single database file backs:
//
//   - VectorIndex: records with their embeddings, scored by cosine similarity in process
//   - RunStore: the history of indexing runs
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.heritage/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode, and upserts run in a single transaction.
package sqlite
