// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them. Every handle is constructed once at startup and passed
// to service constructors; none is held in package state.
//
// # Required Interfaces
//
//   - EmbeddingService: Maps text to vectors, for documents and queries alike
//   - VectorIndex: Stores records and answers filtered similarity search
//   - LLMService: Turns a grounded prompt into answer text
//   - SiteLister: Lists World Heritage Sites with their countries
//   - DocumentFetcher: Fetches the article text for a site
//   - TextSplitter: Partitions article text into chunks
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
//   - TokenCounter: Estimates prompt size for logging. May be nil.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
