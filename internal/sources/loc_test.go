package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookden/pkg/models"
)

const locPayload = `{
	"results": [
		{
			"title": "Dune",
			"contributor": ["Herbert, Frank"],
			"publisher": "Chilton Books",
			"date": "1965",
			"subject_headings": ["Science fiction", "Deserts"],
			"description": ["First book", "of the cycle."],
			"image_url": ["https://loc.gov/img/dune.jpg"],
			"isbn": "0441172717"
		}
	]
}`

func TestLibraryOfCongressLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fo") != "json" {
			t.Errorf("fo=json missing from query: %v", r.URL.Query())
		}
		w.Write([]byte(locPayload))
	}))
	defer srv.Close()

	s := NewLibraryOfCongress(time.Second)
	s.BaseURL = srv.URL

	seed := models.NormalizedBook{Title: "Dune", ISBNs: []string{"0441172717"}}
	results := s.Lookup(context.Background(), seed)
	if len(results) != 1 {
		t.Fatalf("expected one result, got %d", len(results))
	}

	got := results[0]
	if got.Source != "loc" || got.Title != "Dune" {
		t.Errorf("mapping: %+v", got)
	}
	if len(got.Authors) != 1 || got.Authors[0] != "Herbert, Frank" {
		t.Errorf("authors: %v", got.Authors)
	}
	if got.Year != 1965 {
		t.Errorf("year: %d", got.Year)
	}
	if got.Description != "First book of the cycle." {
		t.Errorf("description should join list parts: %q", got.Description)
	}
	if got.CoverURL != "https://loc.gov/img/dune.jpg" {
		t.Errorf("cover: %q", got.CoverURL)
	}
	if len(got.ISBNs) != 1 || got.ISBNs[0] != "0441172717" {
		t.Errorf("isbns: %v", got.ISBNs)
	}
	if len(got.Subjects) != 2 {
		t.Errorf("subjects: %v", got.Subjects)
	}
}

func TestLibraryOfCongressAbsorbsMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	s := NewLibraryOfCongress(time.Second)
	s.BaseURL = srv.URL

	if results := s.Lookup(context.Background(), models.NormalizedBook{Title: "Dune"}); results != nil {
		t.Errorf("malformed responses must degrade to no results, got %v", results)
	}
}
