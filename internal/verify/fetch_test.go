package verify

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slidestudy/curator-cli/internal/store"
)

func newTestServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/chair", func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		fmt.Fprint(w, `<html><head>
			<title>  The Sussex
			chair  </title>
			<meta name="description" content="An ebonized beech armchair designed by Philip Webb.">
		</head><body></body></html>`)
	})
	mux.HandleFunc("/og", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Page</title>
			<meta property="og:description" content="Social description only.">
		</head></html>`)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/chair", http.StatusFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchParsesTitleAndDescription(t *testing.T) {
	srv := newTestServer(t, nil)
	f := NewFetcher(FetcherOptions{}, nil)

	res := f.Fetch(context.Background(), srv.URL+"/chair")
	assert.Equal(t, "http_200", res.Status)
	assert.Equal(t, "The Sussex chair", res.PageTitle)
	assert.Equal(t, "An ebonized beech armchair designed by Philip Webb.", res.MetaDescription)
	assert.Equal(t, srv.URL+"/chair", res.FinalURL)
}

func TestFetchOGDescriptionFallback(t *testing.T) {
	srv := newTestServer(t, nil)
	f := NewFetcher(FetcherOptions{}, nil)

	res := f.Fetch(context.Background(), srv.URL+"/og")
	assert.Equal(t, "Social description only.", res.MetaDescription)
}

func TestFetchFollowsRedirects(t *testing.T) {
	srv := newTestServer(t, nil)
	f := NewFetcher(FetcherOptions{}, nil)

	res := f.Fetch(context.Background(), srv.URL+"/moved")
	assert.Equal(t, "http_200", res.Status)
	assert.True(t, strings.HasSuffix(res.FinalURL, "/chair"))
	assert.Equal(t, "The Sussex chair", res.PageTitle)
}

func TestFetchNotFound(t *testing.T) {
	srv := newTestServer(t, nil)
	f := NewFetcher(FetcherOptions{}, nil)

	res := f.Fetch(context.Background(), srv.URL+"/nope")
	assert.Equal(t, "http_404", res.Status)
	assert.Empty(t, res.PageTitle)
}

func TestFetchTransportError(t *testing.T) {
	f := NewFetcher(FetcherOptions{}, nil)

	res := f.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	assert.True(t, strings.HasPrefix(res.Status, "url_error:"))
}

func TestFetchReadsThroughCache(t *testing.T) {
	var hits atomic.Int64
	srv := newTestServer(t, &hits)

	cache, err := store.NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer cache.Close()
	require.NoError(t, cache.Migrate(context.Background()))

	f := NewFetcher(FetcherOptions{}, cache)
	url := srv.URL + "/chair"

	first := f.Fetch(context.Background(), url)
	second := f.Fetch(context.Background(), url)

	assert.Equal(t, int64(1), hits.Load())
	assert.Equal(t, first, second)

	cached, err := cache.GetFetch(context.Background(), url)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "The Sussex chair", cached.PageTitle)
}

func TestFetchAll(t *testing.T) {
	srv := newTestServer(t, nil)
	f := NewFetcher(FetcherOptions{MaxWorkers: 2}, nil)

	urls := []string{srv.URL + "/chair", srv.URL + "/nope", "http://127.0.0.1:1/x"}
	results, err := f.FetchAll(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "http_200", results[urls[0]].Status)
	assert.Equal(t, "http_404", results[urls[1]].Status)
	assert.True(t, strings.HasPrefix(results[urls[2]].Status, "url_error:"))
}

func TestMetObjectID(t *testing.T) {
	assert.Equal(t, "2008", metObjectID("https://www.metmuseum.org/art/collection/search/2008"))
	assert.Equal(t, "", metObjectID("https://collections.vam.ac.uk/item/O7240/"))
}
