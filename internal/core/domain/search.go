package domain

import "strings"

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// ContextSeparator joins chunk texts in a grounding context.
const ContextSeparator = "\n\n---\n\n"

// Source identifies an article that contributed to an answer.
type Source struct {
	// SiteName is the site the article describes.
	SiteName string `json:"site_name"`

	// Country is the site's country.
	Country string `json:"country"`

	// URL is the canonical article URL.
	URL string `json:"url"`
}

// Answer is a grounded response to a question.
type Answer struct {
	// Question is the trimmed question that was asked.
	Question string `json:"question"`

	// Text is the generated answer.
	Text string `json:"answer"`

	// Sources lists distinct contributing articles in rank order.
	Sources []Source `json:"sources"`

	// Context is the grounding context given to the model.
	Context string `json:"-"`

	// Model is the generation model name.
	Model string `json:"model,omitempty"`
}

// GroundingContext joins the texts of hits in rank order. No hits yields "".
func GroundingContext(hits []ScoredRecord) string {
	texts := make([]string, len(hits))
	for i, h := range hits {
		texts[i] = h.Record.Payload.Text
	}
	return strings.Join(texts, ContextSeparator)
}

// SourcesOf returns the distinct articles behind hits, in rank order.
func SourcesOf(hits []ScoredRecord) []Source {
	sources := []Source{}
	seen := make(map[Source]bool, len(hits))
	for _, h := range hits {
		p := h.Record.Payload
		src := Source{SiteName: p.SiteName, Country: p.Country, URL: p.SourceURL}
		if seen[src] {
			continue
		}
		seen[src] = true
		sources = append(sources, src)
	}
	return sources
}
