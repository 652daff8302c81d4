// Package chunker provides a recursive, boundary-aware text splitter.
//
// Windows are cut at the last paragraph break that fits, else the last
// sentence end, else the last whitespace, else at the size limit. Offsets
// are counted in runes so multi-byte text is measured in characters.
package chunker

import (
	"unicode"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.TextSplitter = (*Splitter)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// Splitter splits document text into overlapping chunks.
type Splitter struct {
	chunkSize int
	overlap   int
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// New creates a new splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Name returns the splitter name.
func (s *Splitter) Name() string {
	return "chunker"
}

// ChunkSize returns the maximum chunk length.
func (s *Splitter) ChunkSize() int {
	return s.chunkSize
}

// Overlap returns the minimum overlap between consecutive chunks.
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split partitions text into chunks of at most ChunkSize characters.
// Consecutive chunks share at least Overlap characters. The result is a
// pure function of the text and the splitter's parameters.
func (s *Splitter) Split(text string) []domain.Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	n := len(runes)
	if n <= s.chunkSize {
		return []domain.Chunk{{Text: text, Position: 0, Start: 0, End: n}}
	}

	chunks := make([]domain.Chunk, 0, n/(s.chunkSize-s.overlap)+1)
	start := 0
	for {
		limit := start + s.chunkSize
		if limit >= n {
			chunks = append(chunks, newChunk(runes, len(chunks), start, n))
			break
		}

		end := s.cut(runes, start, limit)
		chunks = append(chunks, newChunk(runes, len(chunks), start, end))
		start = s.nextStart(runes, start, end)
	}

	return chunks
}

func newChunk(runes []rune, position, start, end int) domain.Chunk {
	return domain.Chunk{
		Text:     string(runes[start:end]),
		Position: position,
		Start:    start,
		End:      end,
	}
}

// boundary reports whether a chunk may end just before index e.
type boundary func(runes []rune, start, e int) bool

// boundaries in order of preference.
var boundaries = []boundary{
	paragraphEnd,
	sentenceEnd,
	wordEnd,
}

func paragraphEnd(runes []rune, start, e int) bool {
	return e-2 >= start && runes[e-1] == '\n' && runes[e-2] == '\n'
}

func sentenceEnd(runes []rune, start, e int) bool {
	if runes[e-1] == '\n' {
		return true
	}
	if e-2 < start || !unicode.IsSpace(runes[e-1]) {
		return false
	}
	switch runes[e-2] {
	case '.', '!', '?':
		return true
	default:
		return false
	}
}

func wordEnd(runes []rune, _ int, e int) bool {
	return unicode.IsSpace(runes[e-1])
}

// cut returns the end offset of the window starting at start.
// The end must leave more than overlap characters in the window so the
// next window starts strictly after this one.
func (s *Splitter) cut(runes []rune, start, limit int) int {
	lowest := start + s.overlap + 1
	for _, isBoundary := range boundaries {
		for e := limit; e >= lowest; e-- {
			if isBoundary(runes, start, e) {
				return e
			}
		}
	}
	return limit
}

// nextStart backs up overlap characters from end, then moves further back
// to the start of a word when one is within half the overlap.
func (s *Splitter) nextStart(runes []rune, start, end int) int {
	next := end - s.overlap
	if s.overlap == 0 {
		return next
	}

	lowest := next - s.overlap/2
	if lowest < start {
		lowest = start
	}
	for j := next; j > lowest; j-- {
		if unicode.IsSpace(runes[j-1]) && !unicode.IsSpace(runes[j]) {
			return j
		}
	}
	return next
}

// Join reassembles the text that produced chunks by dropping the part of
// each chunk that overlaps its predecessor.
func Join(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}

	out := []rune(chunks[0].Text)
	for i := 1; i < len(chunks); i++ {
		shared := chunks[i-1].End - chunks[i].Start
		out = append(out, []rune(chunks[i].Text)[shared:]...)
	}
	return string(out)
}
