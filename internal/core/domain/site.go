package domain

// UnknownCategory is stored for every site. The metadata source query does
// not select a category, so category filtering is not supported.
const UnknownCategory = "Unknown"

// Site is a World Heritage Site as listed by the metadata source.
// Identity is the Name.
type Site struct {
	// Name is the site label, also used as the article title.
	Name string

	// Country is the label of the country the site is located in.
	Country string

	// Category is the heritage category, UnknownCategory when not provided.
	Category string
}
