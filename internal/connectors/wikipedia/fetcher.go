// Package wikipedia fetches plain-text articles from the MediaWiki action API.
package wikipedia

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/custodia-labs/heritage-rag/internal/connectors"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
	"github.com/custodia-labs/heritage-rag/internal/logger"
)

// Ensure Fetcher implements the interface.
var _ driven.DocumentFetcher = (*Fetcher)(nil)

// Config holds configuration for the fetcher.
type Config struct {
	// Language is the Wikipedia edition (default: en).
	Language string

	// BaseURL overrides https://<language>.wikipedia.org.
	BaseURL string

	// Client performs the request.
	Client *connectors.Client
}

// Fetcher retrieves articles by title.
type Fetcher struct {
	apiURL string
	client *connectors.Client
}

// queryResponse is the formatversion=2 response of prop=extracts|info.
type queryResponse struct {
	Query struct {
		Pages []page `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type page struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	FullURL string `json:"fullurl"`
	Missing bool   `json:"missing"`
	Invalid bool   `json:"invalid"`
}

// New creates a fetcher.
func New(cfg Config) *Fetcher {
	if cfg.Language == "" {
		cfg.Language = domain.DefaultLanguage
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Language + ".wikipedia.org"
	}
	if cfg.Client == nil {
		cfg.Client = connectors.NewClient("", 0)
	}
	return &Fetcher{
		apiURL: strings.TrimSuffix(cfg.BaseURL, "/") + "/w/api.php",
		client: cfg.Client,
	}
}

// illegalTitleChars cannot appear in a page title. The API reads "|" as a
// title separator and "#" as a section anchor, so such names are never
// sent.
const illegalTitleChars = "|#<>[]{}"

// Fetch returns the plain-text article titled siteName, following redirects.
// A missing or invalid title yields Document{Exists: false} and no error.
func (f *Fetcher) Fetch(ctx context.Context, siteName string) (*domain.Document, error) {
	if strings.TrimSpace(siteName) == "" {
		return &domain.Document{}, nil
	}
	if strings.ContainsAny(siteName, illegalTitleChars) {
		logger.Debug("wikipedia: %q is not a valid page title", siteName)
		return &domain.Document{}, nil
	}

	q := url.Values{}
	q.Set("action", "query")
	q.Set("prop", "extracts|info")
	q.Set("explaintext", "1")
	q.Set("exsectionformat", "plain")
	q.Set("inprop", "url")
	q.Set("redirects", "1")
	q.Set("format", "json")
	q.Set("formatversion", "2")
	q.Set("titles", siteName)

	var resp queryResponse
	if err := f.client.GetJSON(ctx, f.apiURL+"?"+q.Encode(), "application/json", &resp); err != nil {
		return nil, fmt.Errorf("fetch %q: %w", siteName, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: fetch %q: %s: %s", domain.ErrFetch, siteName, resp.Error.Code, resp.Error.Info)
	}

	if len(resp.Query.Pages) == 0 {
		return &domain.Document{}, nil
	}
	p := resp.Query.Pages[0]
	if p.Missing || p.Invalid {
		return &domain.Document{Title: p.Title}, nil
	}

	return &domain.Document{
		Exists:       true,
		Title:        p.Title,
		Text:         p.Extract,
		CanonicalURL: p.FullURL,
	}, nil
}
