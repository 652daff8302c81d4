// Package memory provides in-process implementations of driven ports.
// Nothing is persisted; contents are lost when the process exits.
//
// Adapters:
//   - VectorIndex: brute-force cosine search over a map of records
//   - RunStore: indexing run history
//   - ConfigStore: key/value settings for tests and ephemeral runs
package memory
