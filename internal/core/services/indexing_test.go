package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heritage-rag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

type indexingFixture struct {
	service  *IndexingService
	index    *memory.VectorIndex
	embedder *fakeEmbedder
	fetcher  *fakeFetcher
	lister   *fakeLister
	runs     *memory.RunStore
}

func newIndexingFixture() *indexingFixture {
	f := &indexingFixture{
		index:    memory.NewVectorIndex(),
		embedder: newFakeEmbedder(),
		runs:     memory.NewRunStore(),
		lister: &fakeLister{sites: []domain.Site{
			{Name: "Great Wall", Country: "China", Category: domain.UnknownCategory},
			{Name: "Atlantis", Country: "Nowhere", Category: domain.UnknownCategory},
			{Name: "Mont-Saint-Michel", Country: "France", Category: domain.UnknownCategory},
			{Name: "Petra", Country: "Jordan", Category: domain.UnknownCategory},
		}},
		fetcher: &fakeFetcher{
			texts: map[string]string{
				"Great Wall":        "wall one|wall two",
				"Mont-Saint-Michel": "abbey",
			},
			errs: map[string]error{"Petra": errors.New("connection reset")},
		},
	}
	f.embedder.vectors = map[string][]float32{
		"wall one": {1, 0, 0},
		"wall two": {0, 1, 0},
		"abbey":    {0, 0, 1},
	}

	f.service = NewIndexingService(testSpec, f.index, f.lister, f.fetcher, pipeSplitter{}, f.embedder)
	f.service.SetFetchInterval(0)
	f.service.SetRunStore(f.runs)

	n := 0
	f.service.newID = func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
	return f
}

func TestIndexingService_Run(t *testing.T) {
	f := newIndexingFixture()

	report, err := f.service.Run(context.Background(), domain.IndexOptions{})

	require.NoError(t, err)
	assert.Equal(t, 4, report.SitesListed)
	assert.Equal(t, 2, report.SitesIndexed)
	assert.Equal(t, 3, report.Chunks)

	require.Len(t, report.Skipped, 1)
	assert.Equal(t, "Atlantis", report.Skipped[0].Site.Name)
	assert.ErrorIs(t, report.Skipped[0].Err, domain.ErrFetchNotFound)

	require.Len(t, report.Failed, 1)
	assert.Equal(t, "Petra", report.Failed[0].Site.Name)
	assert.ErrorIs(t, report.Failed[0].Err, domain.ErrFetch)

	assert.Equal(t, 3, f.index.Count())
	require.Len(t, f.embedder.batches, 1, "all chunks are embedded in one batch")
	assert.Equal(t, []string{"wall one", "wall two", "abbey"}, f.embedder.batches[0])
	assert.False(t, f.service.Status().Running)
	assert.Equal(t, 4, f.service.Status().SitesProcessed)
}

func TestIndexingService_Run_PairsVectorsWithPayloadsByPosition(t *testing.T) {
	f := newIndexingFixture()

	_, err := f.service.Run(context.Background(), domain.IndexOptions{})
	require.NoError(t, err)

	for text, vector := range f.embedder.vectors {
		hits, err := f.index.Search(context.Background(), vector, domain.Filter{}, 1)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, text, hits[0].Record.Payload.Text)
		assert.Equal(t, vector, hits[0].Record.Vector)
	}

	hits, err := f.index.Search(context.Background(), []float32{0, 0, 1}, domain.Filter{}, 1)
	require.NoError(t, err)
	p := hits[0].Record.Payload
	assert.Equal(t, "Mont-Saint-Michel", p.SiteName)
	assert.Equal(t, "France", p.Country)
	assert.Equal(t, domain.UnknownCategory, p.Category)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Mont-Saint-Michel", p.SourceURL)
}

func TestIndexingService_Run_SiteLimit(t *testing.T) {
	f := newIndexingFixture()

	report, err := f.service.Run(context.Background(), domain.IndexOptions{SiteLimit: 1})

	require.NoError(t, err)
	assert.Equal(t, 1, report.SitesListed)
	assert.Equal(t, []string{"Great Wall"}, f.fetcher.fetched)
	assert.Equal(t, 2, report.Chunks)
}

func TestIndexingService_Run_EmbeddingFailureWritesNothing(t *testing.T) {
	f := newIndexingFixture()
	f.embedder.err = errors.New("model not loaded")
	idx := &failingIndex{VectorIndex: f.index}
	f.service.index = idx

	report, err := f.service.Run(context.Background(), domain.IndexOptions{})

	assert.Nil(t, report)
	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Zero(t, idx.upserts)
	assert.Zero(t, f.index.Count())
}

func TestIndexingService_Run_VectorCountMismatch(t *testing.T) {
	f := newIndexingFixture()
	f.embedder.short = true

	_, err := f.service.Run(context.Background(), domain.IndexOptions{})

	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Zero(t, f.index.Count())
}

func TestIndexingService_Run_NothingToEmbed(t *testing.T) {
	f := newIndexingFixture()
	f.fetcher.texts = nil

	report, err := f.service.Run(context.Background(), domain.IndexOptions{})

	require.NoError(t, err)
	assert.Zero(t, report.Chunks)
	assert.Len(t, report.Skipped, 3)
	assert.Empty(t, f.embedder.batches)
}

func TestIndexingService_Run_ListFailure(t *testing.T) {
	f := newIndexingFixture()
	f.lister.err = fmt.Errorf("%w: sparql endpoint returned 503", domain.ErrFetch)

	_, err := f.service.Run(context.Background(), domain.IndexOptions{})

	assert.ErrorIs(t, err, domain.ErrFetch)
	run, runErr := f.runs.LastRun(context.Background(), testSpec.Name)
	require.NoError(t, runErr)
	assert.False(t, run.Success())
}

func TestIndexingService_Run_DimensionMismatch(t *testing.T) {
	f := newIndexingFixture()
	f.embedder.dims = 5

	_, err := f.service.Run(context.Background(), domain.IndexOptions{})

	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Empty(t, f.fetcher.fetched)
}

func TestIndexingService_Run_Recreate(t *testing.T) {
	f := newIndexingFixture()
	ctx := context.Background()

	_, err := f.service.Run(ctx, domain.IndexOptions{})
	require.NoError(t, err)
	_, err = f.service.Run(ctx, domain.IndexOptions{})
	require.NoError(t, err)
	assert.Equal(t, 6, f.index.Count(), "without recreate a second run appends")

	_, err = f.service.Run(ctx, domain.IndexOptions{Recreate: true})
	require.NoError(t, err)
	assert.Equal(t, 3, f.index.Count())
}

func TestIndexingService_Run_FailedRecreateKeepsRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("embedding failure", func(t *testing.T) {
		f := newIndexingFixture()
		_, err := f.service.Run(ctx, domain.IndexOptions{})
		require.NoError(t, err)
		require.Equal(t, 3, f.index.Count())

		f.embedder.err = errors.New("model server down")
		_, err = f.service.Run(ctx, domain.IndexOptions{Recreate: true})

		assert.ErrorIs(t, err, domain.ErrEmbedding)
		assert.Equal(t, 3, f.index.Count())
	})

	t.Run("list failure", func(t *testing.T) {
		f := newIndexingFixture()
		_, err := f.service.Run(ctx, domain.IndexOptions{})
		require.NoError(t, err)

		f.lister.err = fmt.Errorf("%w: sparql endpoint returned 503", domain.ErrFetch)
		_, err = f.service.Run(ctx, domain.IndexOptions{Recreate: true})

		assert.ErrorIs(t, err, domain.ErrFetch)
		assert.Equal(t, 3, f.index.Count())
	})

	t.Run("nothing fetched", func(t *testing.T) {
		f := newIndexingFixture()
		_, err := f.service.Run(ctx, domain.IndexOptions{})
		require.NoError(t, err)

		f.fetcher.texts = nil
		_, err = f.service.Run(ctx, domain.IndexOptions{Recreate: true})

		require.NoError(t, err)
		assert.Equal(t, 3, f.index.Count())
	})
}

func TestIndexingService_Run_RecreateReplacesOtherSchema(t *testing.T) {
	ctx := context.Background()
	f := newIndexingFixture()
	old := testSpec
	old.EmbeddingModel = "old-embed"
	require.NoError(t, f.index.EnsureCollection(ctx, old, false))
	require.NoError(t, f.index.Upsert(ctx, []domain.IndexRecord{
		{ID: "stale", Vector: []float32{1, 1, 1}, Payload: domain.Payload{SiteName: "Stale", Country: "Nowhere"}},
	}, true))

	_, err := f.service.Run(ctx, domain.IndexOptions{})
	require.ErrorIs(t, err, domain.ErrSchemaMismatch)
	assert.Equal(t, 1, f.index.Count())

	_, err = f.service.Run(ctx, domain.IndexOptions{Recreate: true})
	require.NoError(t, err)
	assert.Equal(t, 3, f.index.Count())
}

func TestIndexingService_Run_RecordsRun(t *testing.T) {
	f := newIndexingFixture()

	_, err := f.service.Run(context.Background(), domain.IndexOptions{Recreate: true})
	require.NoError(t, err)

	run, err := f.runs.LastRun(context.Background(), testSpec.Name)
	require.NoError(t, err)
	assert.True(t, run.Success())
	assert.True(t, run.Recreated)
	assert.Equal(t, 4, run.SitesListed)
	assert.Equal(t, 2, run.SitesIndexed)
	assert.Equal(t, 1, run.Skipped)
	assert.Equal(t, 1, run.Failed)
	assert.Equal(t, 3, run.Chunks)
}

func TestIndexingService_Run_RejectsConcurrentRun(t *testing.T) {
	f := newIndexingFixture()
	entered := make(chan struct{})
	release := make(chan struct{})
	f.fetcher.onFetch = func(name string) {
		if name == "Great Wall" {
			close(entered)
			<-release
		}
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.service.Run(context.Background(), domain.IndexOptions{})
		done <- err
	}()

	<-entered
	assert.True(t, f.service.Status().Running)
	_, err := f.service.Run(context.Background(), domain.IndexOptions{})
	assert.ErrorIs(t, err, domain.ErrIndexingInProgress)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, f.service.Status().Running)
}

func TestIndexingService_Run_Cancelled(t *testing.T) {
	f := newIndexingFixture()
	f.service.SetFetchInterval(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	f.fetcher.onFetch = func(string) { cancel() }

	_, err := f.service.Run(ctx, domain.IndexOptions{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.fetcher.fetched, 1)
	assert.Zero(t, f.index.Count())
}

func TestIndexingService_Runs(t *testing.T) {
	f := newIndexingFixture()
	ctx := context.Background()

	_, err := f.service.Run(ctx, domain.IndexOptions{})
	require.NoError(t, err)
	_, err = f.service.Run(ctx, domain.IndexOptions{Recreate: true})
	require.NoError(t, err)

	runs, err := f.service.Runs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.True(t, runs[0].Recreated, "most recent first")
}

func TestIndexingService_Runs_WithoutRunStore(t *testing.T) {
	f := newIndexingFixture()
	f.service.SetRunStore(nil)

	runs, err := f.service.Runs(context.Background(), 10)

	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)
}
