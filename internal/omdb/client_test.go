package omdb

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moviegrip/internal/domain"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(Config{
		BaseURL:    srv.URL + "/",
		APIKey:     "k3y",
		HTTPClient: srv.Client(),
		Logger:     quietLogger(),
	})
	require.NoError(t, err)
	return c, &hits
}

func writeJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(Config{APIKey: ""})
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "omdbapi.com", APIKey: "x"})
	assert.ErrorContains(t, err, "must be absolute")

	c, err := NewClient(Config{APIKey: "x"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMinTermLength, c.MinTermLength())
	assert.Equal(t, DefaultBaseURL, c.base.String())
}

func TestSearchSendsTermAndKey(t *testing.T) {
	var gotS, gotKey, gotMethod string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotS = r.URL.Query().Get("s")
		gotKey = r.URL.Query().Get("apikey")
		writeJSON(`{"Response":"True","Search":[],"totalResults":"0"}`)(w, r)
	})

	_, err := c.Search(context.Background(), "star wars & co")
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "star wars & co", gotS)
	assert.Equal(t, "k3y", gotKey)
}

func TestSearchResolvesWithRecords(t *testing.T) {
	c, _ := newTestClient(t, writeJSON(`{"Response":"True","Search":[{"Title":"Batman","Poster":"N/A","Year":"1989","imdbID":"tt1","Type":"movie"}],"totalResults":"1"}`))

	movies, err := c.Search(context.Background(), "batman")
	require.NoError(t, err)
	require.Len(t, movies, 1)

	m := movies[0]
	assert.Equal(t, "Batman", m.Title)
	assert.Equal(t, "1989", m.Year)
	assert.Equal(t, "tt1", m.IMDbID)
	assert.Equal(t, "movie", m.Type)
	assert.False(t, m.HasPoster())
	assert.Equal(t, domain.DefaultPlaceholderPoster, m.PosterURL(""))
}

func TestSearchAcceptsNumericTotal(t *testing.T) {
	c, _ := newTestClient(t, writeJSON(`{"Response":"True","Search":[{"Title":"Heat","Poster":"p.jpg","Year":"1995","imdbID":"tt2"}],"totalResults":12}`))

	movies, err := c.Search(context.Background(), "heat")
	require.NoError(t, err)
	assert.Len(t, movies, 1)
}

func TestSearchNilListBecomesEmpty(t *testing.T) {
	c, _ := newTestClient(t, writeJSON(`{"Response":"True"}`))

	movies, err := c.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, movies)
	assert.Empty(t, movies)
}

func TestSearchFalseResponse(t *testing.T) {
	c, _ := newTestClient(t, writeJSON(`{"Response":"False","Error":"Movie not found!"}`))

	_, err := c.Search(context.Background(), "zzzzzz")
	require.Error(t, err)
	assert.Equal(t, "Movie not found!", err.Error())

	var apiErr *APIError
	assert.True(t, errors.As(err, &apiErr))
}

func TestSearchFalseResponseFallback(t *testing.T) {
	c, _ := newTestClient(t, writeJSON(`{"Response":"False"}`))

	_, err := c.Search(context.Background(), "zzzzzz")
	assert.EqualError(t, err, FallbackMessage)
}

func TestSearchShortTermSkipsNetwork(t *testing.T) {
	c, hits := newTestClient(t, writeJSON(`{"Response":"True","Search":[]}`))

	for _, term := range []string{"", "b", "ba", "éé"} {
		_, err := c.Search(context.Background(), term)
		assert.ErrorIs(t, err, ErrTooManyResults, "term %q", term)
	}
	assert.Equal(t, int64(0), hits.Load())

	_, err := c.Search(context.Background(), "ééé")
	assert.NoError(t, err, "length is counted in runes")
	assert.Equal(t, int64(1), hits.Load())
}

func TestSearchInvalidTermSkipsNetwork(t *testing.T) {
	c, hits := newTestClient(t, writeJSON(`{"Response":"True","Search":[]}`))

	_, err := c.Search(context.Background(), "ab\xffcd")
	assert.ErrorIs(t, err, ErrInvalidTerm)
	assert.Equal(t, "Unexpected input provided", err.Error())
	assert.Equal(t, int64(0), hits.Load())
}

func TestSearchHTTPStatusError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	})

	_, err := c.Search(context.Background(), "batman")
	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "401")
}

func TestSearchDecodeError(t *testing.T) {
	c, _ := newTestClient(t, writeJSON(`{"Response":`))

	_, err := c.Search(context.Background(), "batman")
	assert.ErrorContains(t, err, "failed to decode search response")
}

func TestSearchTransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: url, APIKey: "s3cret", Logger: quietLogger()})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "batman")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search request failed")
	assert.NotContains(t, err.Error(), "s3cret")
}

func TestSearchMinTermLengthConfigurable(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(`{"Response":"True","Search":[]}`)(w, r)
	}))
	defer srv.Close()

	c, err := NewClient(Config{BaseURL: srv.URL, APIKey: "k", MinTermLength: 1, Logger: quietLogger()})
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "b")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), hits.Load())
}
