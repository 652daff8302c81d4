// Package wikidata lists World Heritage Sites from the Wikidata SPARQL endpoint.
package wikidata

import (
	"context"
	"fmt"
	"net/url"

	"github.com/custodia-labs/heritage-rag/internal/connectors"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

// Ensure SiteLister implements the interface.
var _ driven.SiteLister = (*SiteLister)(nil)

// DefaultEndpoint is the public Wikidata query service.
const DefaultEndpoint = "https://query.wikidata.org/sparql"

// sitesQuery selects every instance of "World Heritage Site" (Q9259) with
// its country (P17), labelled in the auto language or English.
const sitesQuery = `SELECT ?itemLabel ?countryLabel WHERE {
  ?item wdt:P31 wd:Q9259.
  ?item wdt:P17 ?country.
  SERVICE wikibase:label { bd:serviceParam wikibase:language "[AUTO_LANGUAGE],en". }
}`

const sparqlJSON = "application/sparql-results+json"

// Config holds configuration for the lister.
type Config struct {
	// Endpoint is the SPARQL endpoint (default: DefaultEndpoint).
	Endpoint string

	// Client performs the request.
	Client *connectors.Client
}

// SiteLister queries Wikidata for heritage sites.
type SiteLister struct {
	endpoint string
	client   *connectors.Client
}

// sparqlResponse is the SPARQL 1.1 JSON results format.
type sparqlResponse struct {
	Results struct {
		Bindings []map[string]binding `json:"bindings"`
	} `json:"results"`
}

type binding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// New creates a site lister.
func New(cfg Config) *SiteLister {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Client == nil {
		cfg.Client = connectors.NewClient("", 0)
	}
	return &SiteLister{endpoint: cfg.Endpoint, client: cfg.Client}
}

// ListSites returns the sites in the order the endpoint reports them.
// Rows without a name or country are dropped and repeated (name, country)
// pairs are collapsed. Every site gets domain.UnknownCategory.
func (l *SiteLister) ListSites(ctx context.Context) ([]domain.Site, error) {
	q := url.Values{}
	q.Set("query", sitesQuery)
	q.Set("format", "json")

	var resp sparqlResponse
	if err := l.client.GetJSON(ctx, l.endpoint+"?"+q.Encode(), sparqlJSON, &resp); err != nil {
		return nil, fmt.Errorf("query wikidata: %w", err)
	}

	return sitesFromBindings(resp.Results.Bindings), nil
}

func sitesFromBindings(rows []map[string]binding) []domain.Site {
	type key struct{ name, country string }
	seen := make(map[key]bool, len(rows))

	sites := make([]domain.Site, 0, len(rows))
	for _, row := range rows {
		name := row["itemLabel"].Value
		country := row["countryLabel"].Value
		if name == "" || country == "" {
			continue
		}

		k := key{name, country}
		if seen[k] {
			continue
		}
		seen[k] = true

		sites = append(sites, domain.Site{
			Name:     name,
			Country:  country,
			Category: domain.UnknownCategory,
		})
	}
	return sites
}
