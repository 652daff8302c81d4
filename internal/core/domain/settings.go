package domain

import "time"

const unknownDescription = "Unknown"

// Default models. The embedding model is pinned: index-time and
// query-time vectors must come from the same model.
const (
	DefaultEmbeddingModel = "nomic-embed-text"
	DefaultLLMModel       = "deepseek-r1:1.5b"
	DefaultUserAgent      = "UNESCO-RAG-App/1.0"
	DefaultLanguage       = "en"
	DefaultServerAddr     = ":5000"
	DefaultChunkSize      = 1000
	DefaultChunkOverlap   = 150
)

// IndexBackend selects the vector index implementation.
type IndexBackend string

// Available index backends.
const (
	// IndexBackendMemory keeps records in process memory; lost on exit.
	IndexBackendMemory IndexBackend = "memory"

	// IndexBackendSQLite stores records in a local SQLite database.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendChromem stores records in a persistent chromem-go database.
	IndexBackendChromem IndexBackend = "chromem"

	// IndexBackendPgvector stores records in PostgreSQL with the pgvector extension.
	IndexBackendPgvector IndexBackend = "pgvector"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendMemory, IndexBackendSQLite, IndexBackendChromem, IndexBackendPgvector:
		return true
	default:
		return false
	}
}

// IsPersistent returns true if records survive a restart.
func (b IndexBackend) IsPersistent() bool {
	return b != IndexBackendMemory
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendMemory:
		return "In-memory (not persisted)"
	case IndexBackendSQLite:
		return "SQLite (local file)"
	case IndexBackendChromem:
		return "chromem-go (local directory)"
	case IndexBackendPgvector:
		return "PostgreSQL + pgvector"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API. Generation only.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// SupportsEmbedding returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbedding() bool {
	return p == AIProviderOllama || p == AIProviderOpenAI
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Backend selects the vector index implementation.
	Backend IndexBackend

	// Collection is the collection (or table) name.
	Collection string

	// Dimension is the embedding vector size.
	Dimension int

	// Path is the data directory for file-backed backends.
	// Empty means ~/.heritage/data.
	Path string

	// DSN is the PostgreSQL connection string for the pgvector backend.
	DSN string

	// RefreshInterval rebuilds the index periodically while the server
	// runs. Zero disables scheduled rebuilds.
	RefreshInterval time.Duration
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint.
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string
}

// RetrievalSettings holds query-time configuration.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int
}

// ChunkingSettings holds chunker configuration.
type ChunkingSettings struct {
	// Size is the maximum chunk length in characters.
	Size int

	// Overlap is the number of characters shared by consecutive chunks.
	Overlap int
}

// FetchSettings holds metadata and article fetch configuration.
type FetchSettings struct {
	// SiteLimit caps the sites processed per run. 0 means all.
	SiteLimit int

	// Interval is the pause between article fetches.
	Interval time.Duration

	// UserAgent identifies the client to Wikidata and Wikipedia.
	UserAgent string

	// Language is the Wikipedia language edition.
	Language string
}

// ServerSettings holds HTTP query surface configuration.
type ServerSettings struct {
	// Addr is the listen address.
	Addr string
}

// Settings holds all application settings.
type Settings struct {
	Index     IndexSettings
	Embedding EmbeddingSettings
	LLM       LLMSettings
	Retrieval RetrievalSettings
	Chunking  ChunkingSettings
	Fetch     FetchSettings
	Server    ServerSettings
}

// DefaultSettings returns settings that work against a local Ollama
// with an on-disk SQLite index.
func DefaultSettings() Settings {
	return Settings{
		Index: IndexSettings{
			Backend:    IndexBackendSQLite,
			Collection: DefaultCollectionName,
			Dimension:  DefaultDimension,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderOllama,
			Model:    DefaultEmbeddingModel,
		},
		LLM: LLMSettings{
			Provider: AIProviderOllama,
			Model:    DefaultLLMModel,
		},
		Retrieval: RetrievalSettings{
			TopK: DefaultTopK,
		},
		Chunking: ChunkingSettings{
			Size:    DefaultChunkSize,
			Overlap: DefaultChunkOverlap,
		},
		Fetch: FetchSettings{
			SiteLimit: DefaultSiteLimit,
			Interval:  DefaultFetchInterval,
			UserAgent: DefaultUserAgent,
			Language:  DefaultLanguage,
		},
		Server: ServerSettings{
			Addr: DefaultServerAddr,
		},
	}
}

// CollectionSpec returns the collection schema implied by the settings.
func (s Settings) CollectionSpec() CollectionSpec {
	return CollectionSpec{
		Name:           s.Index.Collection,
		Dimension:      s.Index.Dimension,
		Metric:         DistanceCosine,
		EmbeddingModel: s.Embedding.Model,
	}
}
