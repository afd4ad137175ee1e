package reconcile

import (
	"errors"
	"reflect"
	"testing"

	"bookden/pkg/models"
)

func TestMergeEmptyCluster(t *testing.T) {
	if _, err := Merge(nil); !errors.Is(err, ErrEmptyCluster) {
		t.Fatalf("expected ErrEmptyCluster, got %v", err)
	}
}

func TestMergeFirstNonEmptyWins(t *testing.T) {
	cluster := []models.NormalizedBook{
		{Source: "openlibrary", Title: "Dune", Year: 0, Publisher: ""},
		{Source: "loc", Title: "Dune: special edition", Year: 1965, Publisher: "Chilton"},
		{Source: "google", Title: "DUNE", Year: 1966, Publisher: "Ace", CoverURL: "http://example/cover.jpg"},
	}

	merged, err := Merge(cluster)
	if err != nil {
		t.Fatal(err)
	}
	if merged.Title != "Dune" {
		t.Errorf("title: got %q, want earliest non-empty", merged.Title)
	}
	if merged.Year != 1965 {
		t.Errorf("year: got %d, want 1965", merged.Year)
	}
	if merged.Publisher != "Chilton" {
		t.Errorf("publisher: got %q, want Chilton", merged.Publisher)
	}
	if merged.CoverURL != "http://example/cover.jpg" {
		t.Errorf("cover: got %q", merged.CoverURL)
	}
	if merged.Source != models.SourceMerged {
		t.Errorf("source: got %q, want %q", merged.Source, models.SourceMerged)
	}
}

func TestMergeUnionsCollections(t *testing.T) {
	cluster := []models.NormalizedBook{
		{Authors: []string{"Frank Herbert"}, Subjects: []string{"Science Fiction"}, ISBNs: []string{"0441172717"}},
		{Authors: []string{"frank herbert", "Brian Herbert"}, Subjects: []string{"science fiction", "Ecology"}, ISBNs: []string{"0441172717", "9780441172719"}},
	}

	merged, err := Merge(cluster)
	if err != nil {
		t.Fatal(err)
	}

	wantAuthors := []string{"Frank Herbert", "Brian Herbert"}
	if !reflect.DeepEqual(merged.Authors, wantAuthors) {
		t.Errorf("authors: got %v, want %v", merged.Authors, wantAuthors)
	}
	wantSubjects := []string{"Science Fiction", "Ecology"}
	if !reflect.DeepEqual(merged.Subjects, wantSubjects) {
		t.Errorf("subjects: got %v, want %v", merged.Subjects, wantSubjects)
	}
	wantISBNs := []string{"0441172717", "9780441172719"}
	if !reflect.DeepEqual(merged.ISBNs, wantISBNs) {
		t.Errorf("isbns: got %v, want %v", merged.ISBNs, wantISBNs)
	}
}

func TestMergeKeepsProvenancePerRecord(t *testing.T) {
	cluster := []models.NormalizedBook{
		{Source: "openlibrary", Title: "Dune"},
		{Source: "loc", Title: "Dune"},
		{Source: "google", Title: "Dune"},
	}

	merged, err := Merge(cluster)
	if err != nil {
		t.Fatal(err)
	}
	if len(merged.Provenance) != 3 {
		t.Fatalf("provenance: got %d entries, want 3", len(merged.Provenance))
	}
	for i, want := range []string{"openlibrary", "loc", "google"} {
		if merged.Provenance[i].Source != want {
			t.Errorf("provenance[%d]: got %q, want %q", i, merged.Provenance[i].Source, want)
		}
	}
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	a := models.NormalizedBook{Authors: []string{"One"}, ISBNs: []string{"1111111111"}}
	b := models.NormalizedBook{Authors: []string{"Two"}, ISBNs: []string{"2222222222"}}

	if _, err := Merge([]models.NormalizedBook{a, b}); err != nil {
		t.Fatal(err)
	}
	if len(a.Authors) != 1 || len(a.ISBNs) != 1 {
		t.Errorf("first input mutated: %v %v", a.Authors, a.ISBNs)
	}
}

func TestMergeStableUnderRepetition(t *testing.T) {
	cluster := []models.NormalizedBook{
		{Source: "openlibrary", Title: "Dune", Year: 1965, Authors: []string{"Frank Herbert"}, ISBNs: []string{"0441172717"}},
		{Source: "loc", Title: "Dune", Publisher: "Chilton", Authors: []string{"Frank Herbert"}},
	}

	first, err := Merge(cluster)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Merge([]models.NormalizedBook{first, first})
	if err != nil {
		t.Fatal(err)
	}

	if second.Title != first.Title || second.Year != first.Year || second.Publisher != first.Publisher {
		t.Errorf("re-merging a merged record changed scalars: %+v vs %+v", second, first)
	}
	if !reflect.DeepEqual(second.Authors, first.Authors) || !reflect.DeepEqual(second.ISBNs, first.ISBNs) {
		t.Errorf("re-merging a merged record changed collections")
	}
}
