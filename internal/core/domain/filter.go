package domain

import (
	"fmt"
	"strings"
)

// PredicateKind is the closed set of payload predicates a vector index
// must support. Category is not a kind: the metadata source never
// provides one.
type PredicateKind string

// Supported predicate kinds.
const (
	// PredicateCountryEquals matches payloads whose Country equals the value exactly.
	PredicateCountryEquals PredicateKind = "country_eq"
)

// IsValid returns true if the kind is supported.
func (k PredicateKind) IsValid() bool {
	return k == PredicateCountryEquals
}

// Field returns the payload field the predicate constrains.
func (k PredicateKind) Field() string {
	switch k {
	case PredicateCountryEquals:
		return "country"
	default:
		return ""
	}
}

// Predicate is a single exact-match constraint on a payload field.
type Predicate struct {
	Kind  PredicateKind
	Value string
}

// Matches reports whether the payload satisfies the predicate.
func (p Predicate) Matches(payload Payload) bool {
	switch p.Kind {
	case PredicateCountryEquals:
		return payload.Country == p.Value
	default:
		return false
	}
}

// Filter is a conjunction of predicates. The zero value matches everything.
type Filter struct {
	Predicates []Predicate
}

// FilterFromCountry builds a filter from an optional country value.
// An empty or blank country yields the empty filter.
func FilterFromCountry(country string) Filter {
	country = strings.TrimSpace(country)
	if country == "" {
		return Filter{}
	}
	return Filter{Predicates: []Predicate{{Kind: PredicateCountryEquals, Value: country}}}
}

// IsEmpty returns true if the filter has no predicates.
func (f Filter) IsEmpty() bool {
	return len(f.Predicates) == 0
}

// Country returns the country equality value, if any.
func (f Filter) Country() (string, bool) {
	for _, p := range f.Predicates {
		if p.Kind == PredicateCountryEquals {
			return p.Value, true
		}
	}
	return "", false
}

// Validate rejects unknown kinds, empty values and repeated kinds.
func (f Filter) Validate() error {
	seen := make(map[PredicateKind]bool, len(f.Predicates))
	for _, p := range f.Predicates {
		if !p.Kind.IsValid() {
			return fmt.Errorf("%w: unsupported predicate %q", ErrInvalidFilter, p.Kind)
		}
		if p.Value == "" {
			return fmt.Errorf("%w: empty value for %s", ErrInvalidFilter, p.Kind)
		}
		if seen[p.Kind] {
			return fmt.Errorf("%w: duplicate predicate %s", ErrInvalidFilter, p.Kind)
		}
		seen[p.Kind] = true
	}
	return nil
}

// Matches reports whether the payload satisfies every predicate.
func (f Filter) Matches(payload Payload) bool {
	for _, p := range f.Predicates {
		if !p.Matches(payload) {
			return false
		}
	}
	return true
}

// String returns a compact form for logging.
func (f Filter) String() string {
	if f.IsEmpty() {
		return "{}"
	}
	parts := make([]string, len(f.Predicates))
	for i, p := range f.Predicates {
		parts[i] = fmt.Sprintf("%s=%q", p.Kind.Field(), p.Value)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
