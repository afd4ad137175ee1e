package reconcile

import (
	"reflect"
	"testing"
)

func TestAsString(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"plain", "  Dune  ", "Dune"},
		{"list takes first non-empty", []any{"", "Dune", "Other"}, "Dune"},
		{"value object", map[string]any{"value": "Dune"}, "Dune"},
		{"brief fallback", map[string]any{"brief": "Dune"}, "Dune"},
		{"whole number", float64(1965), "1965"},
		{"bool ignored", true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AsString(tc.in); got != tc.want {
				t.Errorf("AsString(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestAsYear(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want int
	}{
		{"nil", nil, 0},
		{"number", float64(1965), 1965},
		{"list head", []any{float64(1965), float64(1972)}, 1965},
		{"embedded in text", "New York, 1965-08", 1965},
		{"no digits", "unknown", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AsYear(tc.in); got != tc.want {
				t.Errorf("AsYear(%v) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestJoinedString(t *testing.T) {
	got := JoinedString([]any{"part one.", "", "part two."})
	if got != "part one. part two." {
		t.Errorf("JoinedString = %q", got)
	}
	if got := JoinedString("single"); got != "single" {
		t.Errorf("JoinedString scalar = %q", got)
	}
}

func TestExtractISBNs(t *testing.T) {
	got := ExtractISBNs(
		[]any{"0441172717", "9780441172719"},
		"044156956x",
		"0441172717", // duplicate across values
		nil,
	)
	want := []string{"0441172717", "9780441172719", "044156956X"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractISBNs = %v, want %v", got, want)
	}
}

func TestExtractISBNsIgnoresShortRuns(t *testing.T) {
	if got := ExtractISBNs("123456789"); len(got) != 0 {
		t.Errorf("nine digits should not match, got %v", got)
	}
}
