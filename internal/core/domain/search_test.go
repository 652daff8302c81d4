package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func hit(site, country, url, text string) ScoredRecord {
	return ScoredRecord{Record: IndexRecord{Payload: Payload{
		SiteName: site, Country: country, SourceURL: url, Text: text,
	}}}
}

func TestGroundingContext(t *testing.T) {
	assert.Equal(t, "", GroundingContext(nil))
	assert.Equal(t, "only", GroundingContext([]ScoredRecord{hit("a", "b", "c", "only")}))

	got := GroundingContext([]ScoredRecord{
		hit("Great Wall", "China", "u1", "first"),
		hit("Great Wall", "China", "u1", "second"),
		hit("Versailles", "France", "u2", "third"),
	})
	assert.Equal(t, "first\n\n---\n\nsecond\n\n---\n\nthird", got)
}

func TestSourcesOf(t *testing.T) {
	assert.Empty(t, SourcesOf(nil))
	assert.NotNil(t, SourcesOf(nil))

	got := SourcesOf([]ScoredRecord{
		hit("Versailles", "France", "u2", "x"),
		hit("Great Wall", "China", "u1", "y"),
		hit("Versailles", "France", "u2", "z"),
	})
	assert.Equal(t, []Source{
		{SiteName: "Versailles", Country: "France", URL: "u2"},
		{SiteName: "Great Wall", Country: "China", URL: "u1"},
	}, got)
}
