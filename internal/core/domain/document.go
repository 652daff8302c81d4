package domain

// Document is the result of fetching the article for a site.
type Document struct {
	// Exists is false when the article source has no page for the site.
	Exists bool

	// Title is the resolved page title (after redirects).
	Title string

	// Text is the plain-text article body.
	Text string

	// CanonicalURL is the public URL of the article.
	CanonicalURL string
}

// Chunk is a bounded window of a document's text.
// Start and End are rune offsets into the source text; Text equals
// the runes in [Start, End).
type Chunk struct {
	// Text is the chunk content.
	Text string

	// Position is the ordinal position within the document.
	Position int

	// Start is the rune offset of the first character.
	Start int

	// End is the rune offset one past the last character.
	End int
}

// Len returns the chunk length in characters.
func (c Chunk) Len() int {
	return c.End - c.Start
}
