// Package connectors provides the clients that feed the indexing pipeline:
// a site lister backed by Wikidata and an article fetcher backed by
// Wikipedia. Both share the JSON client in this package, which identifies
// itself with the configured User-Agent and maps HTTP failures onto
// domain.ErrFetch.
package connectors
