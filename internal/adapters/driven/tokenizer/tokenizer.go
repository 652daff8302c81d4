// Package tokenizer counts prompt tokens with a BPE encoding.
package tokenizer

import (
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

// Ensure Counter implements the interface.
var _ driven.TokenCounter = (*Counter)(nil)

// DefaultEncoding is a general-purpose encoding close enough for local models.
const DefaultEncoding = "cl100k_base"

// charsPerToken approximates the token count when no encoding is available.
const charsPerToken = 4

// Counter counts tokens. The encoding is loaded on first use; tiktoken
// downloads its ranks on a cold cache, so a failed load degrades to an
// estimate instead of an error.
type Counter struct {
	name string

	once sync.Once
	enc  *tiktoken.Tiktoken
	err  error
}

// New creates a counter for the named encoding. Empty uses DefaultEncoding.
func New(encoding string) *Counter {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	return &Counter{name: encoding}
}

// CountTokens returns the number of tokens in text.
func (c *Counter) CountTokens(text string) int {
	if text == "" {
		return 0
	}

	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding(c.name)
	})
	if c.err != nil {
		return Estimate(text)
	}
	return len(c.enc.Encode(text, nil, nil))
}

// Exact reports whether counts come from the encoding rather than an estimate.
func (c *Counter) Exact() bool {
	c.once.Do(func() {
		c.enc, c.err = tiktoken.GetEncoding(c.name)
	})
	return c.err == nil
}

// Estimate approximates the token count from the character count.
func Estimate(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}
