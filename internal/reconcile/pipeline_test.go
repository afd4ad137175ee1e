package reconcile

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"bookden/pkg/models"
)

// fakeSource returns canned records and counts how often it was queried.
type fakeSource struct {
	name    string
	results []models.NormalizedBook
	delay   time.Duration
	calls   atomic.Int64
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Lookup(ctx context.Context, seed models.NormalizedBook) []models.NormalizedBook {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.results
}

func seedDoc(title string, isbn string) map[string]any {
	doc := map[string]any{"title": title}
	if isbn != "" {
		doc["isbn"] = []any{isbn}
	}
	return doc
}

func TestReconcileMergesMatchingSources(t *testing.T) {
	loc := &fakeSource{name: "loc", results: []models.NormalizedBook{
		{Source: "loc", Title: "Dune", ISBNs: []string{"0441172717"}, Publisher: "Chilton", Year: 1965},
	}}
	google := &fakeSource{name: "google", results: []models.NormalizedBook{
		{Source: "google", Title: "Dune", ISBNs: []string{"0441172717", "9780441172719"}, CoverURL: "http://example/c.jpg"},
	}}

	r := NewReconciler(NewCache(8), loc, google)
	merged, err := r.Reconcile(context.Background(), seedDoc("Dune", "0441172717"))
	if err != nil {
		t.Fatal(err)
	}

	if merged.Source != models.SourceMerged {
		t.Errorf("source: got %q", merged.Source)
	}
	if merged.Publisher != "Chilton" || merged.Year != 1965 {
		t.Errorf("scalar backfill failed: %+v", merged)
	}
	if len(merged.ISBNs) != 2 {
		t.Errorf("isbn union: got %v", merged.ISBNs)
	}
	if merged.CoverURL != "http://example/c.jpg" {
		t.Errorf("cover backfill failed: %q", merged.CoverURL)
	}
	if len(merged.Provenance) != 3 {
		t.Errorf("provenance: got %d entries, want seed plus two sources", len(merged.Provenance))
	}
}

func TestReconcileFoldOrderIgnoresCompletionOrder(t *testing.T) {
	// The slower first source still contributes its publisher before the
	// faster second source.
	slow := &fakeSource{name: "slow", delay: 30 * time.Millisecond, results: []models.NormalizedBook{
		{Source: "slow", Title: "Dune", ISBNs: []string{"0441172717"}, Publisher: "First"},
	}}
	fast := &fakeSource{name: "fast", results: []models.NormalizedBook{
		{Source: "fast", Title: "Dune", ISBNs: []string{"0441172717"}, Publisher: "Second"},
	}}

	r := NewReconciler(NewCache(8), slow, fast)
	merged, err := r.Reconcile(context.Background(), seedDoc("Dune", "0441172717"))
	if err != nil {
		t.Fatal(err)
	}
	if merged.Publisher != "First" {
		t.Errorf("publisher: got %q, configured source order must decide the fold", merged.Publisher)
	}
}

func TestReconcileCacheHitSkipsSources(t *testing.T) {
	src := &fakeSource{name: "loc", results: []models.NormalizedBook{
		{Source: "loc", Title: "Dune", ISBNs: []string{"0441172717"}},
	}}

	r := NewReconciler(NewCache(8), src)
	doc := seedDoc("Dune", "0441172717")

	if _, err := r.Reconcile(context.Background(), doc); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Reconcile(context.Background(), doc); err != nil {
		t.Fatal(err)
	}

	if got := src.calls.Load(); got != 1 {
		t.Errorf("source queried %d times, cache hit should skip it", got)
	}
}

func TestReconcileUncacheableSeedAlwaysQueries(t *testing.T) {
	src := &fakeSource{name: "loc"}

	r := NewReconciler(NewCache(8), src)
	doc := map[string]any{"first_publish_year": float64(1965)} // no identity

	for i := 0; i < 3; i++ {
		if _, err := r.Reconcile(context.Background(), doc); err != nil {
			t.Fatal(err)
		}
	}
	if got := src.calls.Load(); got != 3 {
		t.Errorf("source queried %d times, identity-less seeds must not be cached", got)
	}
}

func TestReconcileUnrelatedResultsDoNotPollute(t *testing.T) {
	// A source returning a completely different work must not leak its
	// fields into the seed's record.
	src := &fakeSource{name: "loc", results: []models.NormalizedBook{
		{Source: "loc", Title: "Hyperion", ISBNs: []string{"9999999999"}, Publisher: "Doubleday"},
	}}

	r := NewReconciler(NewCache(8), src)
	merged, err := r.Reconcile(context.Background(), seedDoc("Dune", "0441172717"))
	if err != nil {
		t.Fatal(err)
	}

	if merged.Title != "Dune" {
		t.Errorf("title: got %q", merged.Title)
	}
	if merged.Publisher == "Doubleday" {
		t.Error("unrelated record's publisher leaked into the merge")
	}
	for _, isbn := range merged.ISBNs {
		if isbn == "9999999999" {
			t.Error("unrelated ISBN leaked into the merge")
		}
	}
}

func TestPickBestPrefersSeedSourceThenISBNsThenCover(t *testing.T) {
	seeded := models.NormalizedBook{
		Title:      "Dune",
		Provenance: []models.SourceRecord{{Source: SourceOpenLibrary}},
	}
	richer := models.NormalizedBook{
		Title:      "Other",
		ISBNs:      []string{"1111111111", "2222222222"},
		CoverURL:   "http://example/c.jpg",
		Provenance: []models.SourceRecord{{Source: "loc"}},
	}

	if got := pickBest([]models.NormalizedBook{richer, seeded}, SourceOpenLibrary); got.Title != "Dune" {
		t.Errorf("seed-source cluster must win, got %q", got.Title)
	}

	a := models.NormalizedBook{Title: "A", ISBNs: []string{"1111111111"}}
	b := models.NormalizedBook{Title: "B", ISBNs: []string{"1111111111", "2222222222"}}
	if got := pickBest([]models.NormalizedBook{a, b}, SourceOpenLibrary); got.Title != "B" {
		t.Errorf("more ISBNs must win, got %q", got.Title)
	}

	c := models.NormalizedBook{Title: "C"}
	d := models.NormalizedBook{Title: "D", CoverURL: "http://example/c.jpg"}
	if got := pickBest([]models.NormalizedBook{c, d}, SourceOpenLibrary); got.Title != "D" {
		t.Errorf("cover must break the tie, got %q", got.Title)
	}

	e := models.NormalizedBook{Title: "E"}
	f := models.NormalizedBook{Title: "F"}
	if got := pickBest([]models.NormalizedBook{e, f}, SourceOpenLibrary); got.Title != "E" {
		t.Errorf("full tie must keep discovery order, got %q", got.Title)
	}
}
