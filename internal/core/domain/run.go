package domain

import "time"

// IndexRun is the persisted outcome of one indexing run.
type IndexRun struct {
	// ID is the unique identifier for the run.
	ID string

	// Collection is the collection the run wrote to.
	Collection string

	// StartedAt is when the run started.
	StartedAt time.Time

	// EndedAt is when the run completed.
	EndedAt time.Time

	// Recreated is true when the run dropped the collection first.
	Recreated bool

	// SitesListed, SitesIndexed, Skipped and Failed mirror IndexReport.
	SitesListed  int
	SitesIndexed int
	Skipped      int
	Failed       int

	// Chunks is the number of records upserted.
	Chunks int

	// Error contains the error message if the run aborted.
	Error string
}

// Success reports whether the run completed without aborting.
func (r IndexRun) Success() bool {
	return r.Error == ""
}

// Duration returns the wall time of the run.
func (r IndexRun) Duration() time.Duration {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// NewIndexRun builds a run record from a report. err is the error that
// aborted the run, if any; report may be nil in that case.
func NewIndexRun(id, collection string, started, ended time.Time, opts IndexOptions, report *IndexReport, err error) IndexRun {
	run := IndexRun{
		ID:         id,
		Collection: collection,
		StartedAt:  started,
		EndedAt:    ended,
		Recreated:  opts.Recreate,
	}
	if report != nil {
		run.SitesListed = report.SitesListed
		run.SitesIndexed = report.SitesIndexed
		run.Skipped = len(report.Skipped)
		run.Failed = len(report.Failed)
		run.Chunks = report.Chunks
	}
	if err != nil {
		run.Error = err.Error()
	}
	return run
}
