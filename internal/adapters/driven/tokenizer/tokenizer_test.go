package tokenizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 1, Estimate("abc"))
	assert.Equal(t, 1, Estimate("abcd"))
	assert.Equal(t, 2, Estimate("abcde"))
	assert.Equal(t, 1, Estimate("été"))
}

func TestCounter_UnknownEncodingFallsBack(t *testing.T) {
	c := New("no_such_encoding")

	assert.False(t, c.Exact())
	assert.Equal(t, Estimate("Great Wall of China"), c.CountTokens("Great Wall of China"))
	assert.Equal(t, 0, c.CountTokens(""))
}

func TestCounter_DefaultEncoding(t *testing.T) {
	c := New("")
	assert.Equal(t, DefaultEncoding, c.name)

	if !c.Exact() {
		t.Skip("encoding ranks unavailable offline")
	}

	short := c.CountTokens("Machu Picchu")
	long := c.CountTokens(strings.Repeat("Machu Picchu ", 20))
	assert.Positive(t, short)
	assert.Greater(t, long, short)
}
