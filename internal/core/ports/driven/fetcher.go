package driven

import (
	"context"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

// SiteLister lists the sites to index.
type SiteLister interface {
	// ListSites returns every known site. Failures wrap domain.ErrFetch.
	ListSites(ctx context.Context) ([]domain.Site, error)
}

// DocumentFetcher fetches the article for a site.
type DocumentFetcher interface {
	// Fetch returns the article for the named site. A missing article is
	// reported as Document{Exists: false} with a nil error; transport
	// failures wrap domain.ErrFetch.
	Fetch(ctx context.Context, siteName string) (*domain.Document, error)
}

// TextSplitter partitions document text into bounded, overlapping chunks.
type TextSplitter interface {
	// Split returns the chunks of text in document order.
	// Empty text yields no chunks.
	Split(text string) []domain.Chunk
}

// TokenCounter estimates the token length of a prompt.
type TokenCounter interface {
	// CountTokens returns the number of tokens in text.
	CountTokens(text string) int
}
