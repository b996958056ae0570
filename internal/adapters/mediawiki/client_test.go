package mediawiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamal-hamza/tmedia/internal/core/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL, SessionID: "s3cret", UserAgent: "tmedia-test"}, zerolog.Nop())
}

func lookupParams(title string) url.Values {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "imageinfo")
	params.Set("titles", title)
	return params
}

func TestListImages(t *testing.T) {
	var got *http.Request
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"continue": {"aicontinue": "20240101|B.jpg", "continue": "-||"},
			"query": {"allimages": [
				{
					"name": "A.jpg",
					"canonicaltitle": "File:A.jpg",
					"url": "https://upload.wikimedia.org/wikipedia/commons/a/ab/A.jpg",
					"descriptionurl": "https://commons.wikimedia.org/wiki/File:A.jpg",
					"timestamp": "2024-01-02T00:00:00Z",
					"width": 640,
					"height": 480,
					"extmetadata": {"Categories": {"value": "Animals|Prague", "source": "commons-categories"}}
				},
				{"name": "B.jpg", "canonicaltitle": "File:B.jpg", "url": "https://upload.wikimedia.org/wikipedia/commons/b/b1/B.jpg"}
			]}
		}`))
	})

	params := url.Values{}
	params.Set("list", "allimages")
	params.Set("aiuser", "Alice")

	list, err := client.ListImages(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, APIPath, got.URL.Path)
	assert.Equal(t, "Alice", got.URL.Query().Get("aiuser"))
	assert.Equal(t, "tmedia-test", got.Header.Get("User-Agent"))
	cookie, err := got.Cookie("sessionid")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cookie.Value)

	require.Len(t, list.Items, 2)
	assert.Equal(t, "20240101|B.jpg", list.Continue)
	assert.Nil(t, list.APIError)

	first := list.Items[0]
	assert.Equal(t, "File:A.jpg", first.CanonicalTitle)
	assert.Equal(t, 640, first.Width)
	assert.Equal(t, []string{"Animals", "Prague"}, first.Categories)
	assert.Empty(t, list.Items[1].Categories)
}

func TestListImages_ErrorPayload(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error": {"code": "aibaduser", "info": "Invalid user"}}`))
	})

	list, err := client.ListImages(context.Background(), url.Values{})
	require.NoError(t, err)
	require.NotNil(t, list.APIError)
	assert.Equal(t, "Invalid user", list.APIError.Info)
	assert.Empty(t, list.Items)
	assert.Empty(t, list.Continue)
}

func TestListImages_LastPage(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query": {"allimages": []}}`))
	})

	list, err := client.ListImages(context.Background(), url.Values{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Empty(t, list.Continue)
}

func TestListImages_StatusError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	_, err := client.ListImages(context.Background(), url.Values{})
	require.Error(t, err)

	var statusErr *domain.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestLookupImage(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "imageinfo", r.URL.Query().Get("prop"))
		assert.Equal(t, "File:A.jpg", r.URL.Query().Get("titles"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query": {"pages": {"123": {
			"title": "File:A.jpg",
			"imageinfo": [{"url": "https://upload.wikimedia.org/wikipedia/commons/a/ab/A.jpg", "user": "Alice"}]
		}}}}`))
	})

	info, err := client.LookupImage(context.Background(), lookupParams("File:A.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "File:A.jpg", info.Title)
	assert.Equal(t, "https://upload.wikimedia.org/wikipedia/commons/a/ab/A.jpg", info.URL)
}

func TestLookupImage_Missing(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"query": {"pages": {"-1": {"title": "File:Nope.jpg", "missing": ""}}}}`))
	})

	_, err := client.LookupImage(context.Background(), lookupParams("File:Nope.jpg"))
	assert.Error(t, err)
}

func TestSplitCategories(t *testing.T) {
	assert.Equal(t, []string{"A", "B C"}, splitCategories([]byte(`"A| B C |"`)))
	assert.Nil(t, splitCategories([]byte(`42`)))
	assert.Nil(t, splitCategories([]byte(`""`)))
}
