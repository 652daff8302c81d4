package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/heritage-rag/internal/core/domain"
)

func newTestFetcher(t *testing.T, handler http.HandlerFunc) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL})
}

func TestNew_LanguageEdition(t *testing.T) {
	assert.Equal(t, "https://en.wikipedia.org/w/api.php", New(Config{}).apiURL)
	assert.Equal(t, "https://fr.wikipedia.org/w/api.php", New(Config{Language: "fr"}).apiURL)
}

func TestFetch_Exists(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/w/api.php", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Great Wall of China", q.Get("titles"))
		assert.Equal(t, "extracts|info", q.Get("prop"))
		assert.Equal(t, "1", q.Get("redirects"))
		assert.Equal(t, "2", q.Get("formatversion"))

		_, _ = w.Write([]byte(`{"batchcomplete":true,"query":{"pages":[{
			"pageid":5094570,"title":"Great Wall of China",
			"extract":"The Great Wall of China is a series of fortifications.",
			"fullurl":"https://en.wikipedia.org/wiki/Great_Wall_of_China"}]}}`))
	})

	doc, err := f.Fetch(context.Background(), "Great Wall of China")

	require.NoError(t, err)
	assert.True(t, doc.Exists)
	assert.Equal(t, "Great Wall of China", doc.Title)
	assert.Equal(t, "The Great Wall of China is a series of fortifications.", doc.Text)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Great_Wall_of_China", doc.CanonicalURL)
}

func TestFetch_Missing(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"pages":[{"ns":0,"title":"Qx123","missing":true}]}}`))
	})

	doc, err := f.Fetch(context.Background(), "Qx123")

	require.NoError(t, err)
	assert.False(t, doc.Exists)
	assert.Empty(t, doc.Text)
}

func TestFetch_Invalid(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"a|b","invalid":true}]}}`))
	})

	doc, err := f.Fetch(context.Background(), "a|b")

	require.NoError(t, err)
	assert.False(t, doc.Exists)
}

func TestFetch_EmptyTitle(t *testing.T) {
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	doc, err := f.Fetch(context.Background(), "  ")

	require.NoError(t, err)
	assert.False(t, doc.Exists)
}

func TestFetch_IllegalTitleIsNotRequested(t *testing.T) {
	requests := 0
	f := newTestFetcher(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		_, _ = w.Write([]byte(`{"query":{"pages":[{"title":"Historic Centre of Rome","extract":"Rome.","fullurl":"https://en.wikipedia.org/wiki/Rome"}]}}`))
	})

	for _, name := range []string{"Historic Centre of Rome|Vatican City", "Rome#History", "Site [extension]"} {
		doc, err := f.Fetch(context.Background(), name)

		require.NoError(t, err, name)
		assert.False(t, doc.Exists, name)
	}
	assert.Zero(t, requests)
}

func TestFetch_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "api error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"error":{"code":"maxlag","info":"Waiting for replicas"}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestFetcher(t, tt.handler).Fetch(context.Background(), "Petra")
			assert.ErrorIs(t, err, domain.ErrFetch)
		})
	}
}
