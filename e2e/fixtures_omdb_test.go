//go:build e2e && unix

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const testAPIKey = "e2e-key"

// fakeOMDb answers search requests from a fixed catalogue
type fakeOMDb struct {
	*httptest.Server

	mu    sync.Mutex
	terms []string
}

type omdbMovie struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

var catalogue = []omdbMovie{
	{Title: "Batman Begins", Year: "2005", IMDbID: "tt0372784", Type: "movie", Poster: "https://img.example/begins.jpg"},
	{Title: "Batman Returns", Year: "1992", IMDbID: "tt0103776", Type: "movie", Poster: "N/A"},
	{Title: "Heat", Year: "1995", IMDbID: "tt0113277", Type: "movie", Poster: "https://img.example/heat.jpg"},
}

func newFakeOMDb(t *testing.T) *fakeOMDb {
	t.Helper()
	f := &fakeOMDb{}
	f.Server = httptest.NewServer(http.HandlerFunc(f.handle))
	t.Cleanup(f.Close)
	return f
}

func (f *fakeOMDb) handle(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("s")
	f.mu.Lock()
	f.terms = append(f.terms, term)
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("apikey") != testAPIKey {
		_ = json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": "Invalid API key!"})
		return
	}

	var hits []omdbMovie
	for _, m := range catalogue {
		if strings.Contains(strings.ToLower(m.Title), strings.ToLower(term)) {
			hits = append(hits, m)
		}
	}
	if len(hits) == 0 {
		_ = json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": "Movie not found!"})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"Search":       hits,
		"totalResults": len(hits),
		"Response":     "True",
	})
}

// Terms returns every search term the server received
func (f *fakeOMDb) Terms() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.terms...)
}
