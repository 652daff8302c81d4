package domain

import "time"

// DefaultSiteLimit caps the number of sites processed per run.
const DefaultSiteLimit = 50

// DefaultFetchInterval is the pause between article fetches.
const DefaultFetchInterval = 500 * time.Millisecond

// IndexOptions configures an indexing run.
type IndexOptions struct {
	// Recreate drops every existing record before indexing. Destructive.
	Recreate bool

	// SiteLimit caps the number of sites processed. 0 means all.
	SiteLimit int
}

// SiteOutcome records why a site contributed no records.
type SiteOutcome struct {
	// Site is the site that was skipped or failed.
	Site Site

	// Err is ErrFetchNotFound for skips, a wrapped ErrFetch for failures.
	Err error
}

// IndexReport summarises an indexing run.
type IndexReport struct {
	// SitesListed is the number of sites returned by the metadata source
	// after the limit was applied.
	SitesListed int

	// SitesIndexed is the number of sites that produced at least one record.
	SitesIndexed int

	// Chunks is the number of records upserted.
	Chunks int

	// Skipped lists sites without an article.
	Skipped []SiteOutcome

	// Failed lists sites whose fetch failed.
	Failed []SiteOutcome

	// Duration is the wall time of the run.
	Duration time.Duration
}

// IndexStatus reports the state of the indexing service.
type IndexStatus struct {
	// Running is true while a run is in progress.
	Running bool

	// SitesProcessed counts sites fetched so far in the current run.
	SitesProcessed int

	// SitesTotal is the number of sites in the current run.
	SitesTotal int
}
