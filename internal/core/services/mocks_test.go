package services

import (
	"context"
	"strings"
	"sync"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
	"github.com/custodia-labs/heritage-rag/internal/core/ports/driven"
)

var testSpec = domain.CollectionSpec{
	Name:           "test_sites",
	Dimension:      3,
	Metric:         domain.DistanceCosine,
	EmbeddingModel: "fake-embed",
}

// fakeEmbedder returns fixed vectors for known texts and a vector derived
// from the text length otherwise.
type fakeEmbedder struct {
	mu      sync.Mutex
	dims    int
	model   string
	vectors map[string][]float32
	err     error
	calls   int
	batches [][]string
	short   bool // return one vector fewer than requested
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{dims: testSpec.Dimension, model: testSpec.EmbeddingModel, vectors: map[string][]float32{}}
}

func (f *fakeEmbedder) vector(text string) []float32 {
	if v, ok := f.vectors[text]; ok {
		return v
	}
	v := make([]float32, f.dims)
	v[0] = 1
	if f.dims > 1 {
		v[1] = float32(len(text) % 7)
	}
	return v
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector(text), nil
}

func (f *fakeEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.batches = append(f.batches, append([]string(nil), texts...))
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		out = append(out, f.vector(t))
	}
	if f.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return f.dims }
func (f *fakeEmbedder) ModelName() string            { return f.model }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

type fakeLLM struct {
	mu      sync.Mutex
	out     string
	err     error
	prompts []string
	opts    []driven.GenerateOptions
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func (f *fakeLLM) ModelName() string            { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

type fakeLister struct {
	sites []domain.Site
	err   error
}

func (f *fakeLister) ListSites(_ context.Context) ([]domain.Site, error) {
	return f.sites, f.err
}

// fakeFetcher serves articles by site name. Unknown names have no article.
type fakeFetcher struct {
	mu      sync.Mutex
	texts   map[string]string
	errs    map[string]error
	fetched []string
	onFetch func(name string)
}

func (f *fakeFetcher) Fetch(_ context.Context, name string) (*domain.Document, error) {
	f.mu.Lock()
	f.fetched = append(f.fetched, name)
	hook := f.onFetch
	f.mu.Unlock()
	if hook != nil {
		hook(name)
	}

	if err := f.errs[name]; err != nil {
		return nil, err
	}
	text, ok := f.texts[name]
	if !ok {
		return &domain.Document{Exists: false}, nil
	}
	return &domain.Document{
		Exists:       true,
		Title:        name,
		Text:         text,
		CanonicalURL: "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(name, " ", "_"),
	}, nil
}

// pipeSplitter splits on "|" so tests control chunk boundaries.
type pipeSplitter struct{}

func (pipeSplitter) Split(text string) []domain.Chunk {
	var chunks []domain.Chunk
	offset := 0
	for i, part := range strings.Split(text, "|") {
		n := len([]rune(part))
		if part != "" {
			chunks = append(chunks, domain.Chunk{Text: part, Position: i, Start: offset, End: offset + n})
		}
		offset += n + 1
	}
	return chunks
}

type fakePrompts struct {
	tmpl string
	err  error
}

func (f *fakePrompts) Load(_ string) (string, error) { return f.tmpl, f.err }
func (f *fakePrompts) Reload()                       {}

// failingIndex wraps a VectorIndex and fails selected calls.
type failingIndex struct {
	driven.VectorIndex
	upsertErr error
	searchErr error
	scrollErr error
	upserts   int
}

func (f *failingIndex) Upsert(ctx context.Context, records []domain.IndexRecord, wait bool) error {
	f.upserts++
	if f.upsertErr != nil {
		return f.upsertErr
	}
	return f.VectorIndex.Upsert(ctx, records, wait)
}

func (f *failingIndex) Search(
	ctx context.Context, vector []float32, filter domain.Filter, limit int,
) ([]domain.ScoredRecord, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.VectorIndex.Search(ctx, vector, filter, limit)
}

func (f *failingIndex) ScrollAll(ctx context.Context, limit int) ([]domain.Payload, error) {
	if f.scrollErr != nil {
		return nil, f.scrollErr
	}
	return f.VectorIndex.ScrollAll(ctx, limit)
}
