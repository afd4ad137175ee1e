package inventory

import (
	"reflect"
	"testing"

	"bookden/pkg/models"
)

func TestSplitCSV(t *testing.T) {
	got := splitCSV(" Fiction , , Ecology,")
	want := []string{"Fiction", "Ecology"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitCSV = %v, want %v", got, want)
	}
	if got := splitCSV(""); got != nil {
		t.Errorf("empty input: %v", got)
	}
}

func TestScoreQuery(t *testing.T) {
	b := models.Book{Title: "Dune Messiah", Authors: "Frank Herbert", Publisher: "Ace"}

	if got := scoreQuery(b, nil, "all"); got != 1 {
		t.Errorf("no words should match everything, got %d", got)
	}
	if got := scoreQuery(b, []string{"dune", "herbert"}, "all"); got != 2 {
		t.Errorf("all-field score: got %d, want 2", got)
	}
	if got := scoreQuery(b, []string{"herbert"}, "title"); got != 0 {
		t.Errorf("title-only search must not see the author, got %d", got)
	}
	if got := scoreQuery(b, []string{"herbert"}, "author"); got != 1 {
		t.Errorf("author search: got %d, want 1", got)
	}
}

func TestMatchesSubjects(t *testing.T) {
	b := models.Book{Subjects: "Science Fiction, Ecology, Politics"}

	if !matchesSubjects(b, nil, "any") {
		t.Error("no filter should match")
	}
	if !matchesSubjects(b, []string{"ecology"}, "any") {
		t.Error("case-insensitive any match failed")
	}
	if !matchesSubjects(b, []string{"Ecology", "Politics"}, "all") {
		t.Error("all mode with both present failed")
	}
	if matchesSubjects(b, []string{"Ecology", "Romance"}, "all") {
		t.Error("all mode should require every subject")
	}
	if !matchesSubjects(b, []string{"Ecology", "Romance"}, "any") {
		t.Error("any mode should accept one hit")
	}
}

func TestMatchesAny(t *testing.T) {
	if !matchesAny("Frank Herbert, Brian Herbert", []string{"brian herbert"}) {
		t.Error("case-insensitive author match failed")
	}
	if matchesAny("Frank Herbert", []string{"Dan Simmons"}) {
		t.Error("non-matching filter should exclude")
	}
	if !matchesAny("", nil) {
		t.Error("no filter should match")
	}
}
