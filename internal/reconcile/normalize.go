package reconcile

import (
	"encoding/json"
	"strings"

	"bookden/internal/openlibrary"
	"bookden/pkg/models"
)

// SourceOpenLibrary tags records normalized from Open Library search docs.
const SourceOpenLibrary = "openlibrary"

// Normalize converts one raw Open Library search doc into the canonical
// record shape. Every field tolerates being absent, a scalar or a list.
func Normalize(doc map[string]any) models.NormalizedBook {
	authors := AsStringList(doc["author_name"])
	if len(authors) == 0 {
		authors = AsStringList(doc["authors"])
	}

	coverURL := ""
	if id := AsInt(doc["cover_i"]); id > 0 {
		coverURL = openlibrary.CoverURL(id)
	} else {
		coverURL = AsString(doc["cover_url"])
	}

	year := AsYear(doc["first_publish_year"])
	if year == 0 {
		year = AsYear(doc["publish_year"])
	}

	stableKey := AsString(doc["key"])
	if stableKey == "" {
		stableKey = AsString(doc["openlibrary_key"])
	}

	raw, _ := json.Marshal(doc)

	return models.NormalizedBook{
		Source:      SourceOpenLibrary,
		Title:       AsString(doc["title"]),
		Authors:     dedupeFold(authors),
		Publisher:   AsString(doc["publisher"]),
		Year:        year,
		ISBNs:       ExtractISBNs(doc["isbn"], doc["isbn_10"], doc["isbn_13"]),
		CoverURL:    coverURL,
		Description: AsString(doc["description"]),
		Subjects:    dedupeFold(AsStringList(doc["subject"])),
		StableKey:   stableKey,
		Raw:         raw,
	}
}

// dedupeFold removes case-insensitive duplicates, keeping first-seen order.
func dedupeFold(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		k := strings.ToLower(v)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
