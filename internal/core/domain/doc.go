// Package domain defines the core entities of the heritage question
// answering pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Site: A World Heritage Site as listed by the metadata source
//   - Document: The fetched article text for a site
//   - Chunk: A bounded window of a document, the unit of embedding
//   - IndexRecord: A vector plus its payload as stored in the vector index
//   - Filter: A validated set of payload predicates for similarity search
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
