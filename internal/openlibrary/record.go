package openlibrary

import (
	"fmt"
	"strconv"
	"strings"

	"bookden/pkg/models"
)

const coverURLTemplate = "https://covers.openlibrary.org/b/id/%d-L.jpg"

// CoverURL builds the large cover image URL for an Open Library cover id.
func CoverURL(coverID int) string {
	return fmt.Sprintf(coverURLTemplate, coverID)
}

// BuildRecord flattens one raw search doc into a storage-ready inventory
// book: list fields collapse to first element or a comma-joined string.
func BuildRecord(doc map[string]any) models.Book {
	b := models.Book{
		Title:            docString(doc, "title"),
		Subtitle:         docString(doc, "subtitle"),
		Authors:          strings.Join(docStringList(doc, "author_name"), ", "),
		FirstPublishYear: docInt(doc, "first_publish_year"),
		EditionCount:     docInt(doc, "edition_count"),
		OpenLibraryKey:   docString(doc, "key"),
		Publisher:        firstOf(doc, "publisher"),
		ISBN:             firstOf(doc, "isbn"),
		PageCount:        docInt(doc, "number_of_pages_median"),
	}

	if id := docInt(doc, "cover_i"); id > 0 {
		b.CoverURL = CoverURL(id)
	}

	subjects := docStringList(doc, "subject")
	if len(subjects) > 6 {
		subjects = subjects[:6]
	}
	b.Subjects = strings.Join(subjects, ", ")

	return b
}

// ResolveCoverURL prefers an explicit cover_url over the cover_i template.
func ResolveCoverURL(doc map[string]any) string {
	if u := docString(doc, "cover_url"); u != "" {
		return u
	}
	if id := docInt(doc, "cover_i"); id > 0 {
		return CoverURL(id)
	}
	return ""
}

// BestIdentifier picks the stable identifier used for cover caching: the
// permanent key, then ISBN, then title.
func BestIdentifier(b models.Book, doc map[string]any) string {
	if b.OpenLibraryKey != "" {
		return b.OpenLibraryKey
	}
	if b.ISBN != "" {
		return b.ISBN
	}
	if id := docString(doc, "id"); id != "" {
		return id
	}
	return b.Title
}

func docString(doc map[string]any, field string) string {
	switch t := doc[field].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.Itoa(int(t))
	case []any:
		if len(t) > 0 {
			if s, ok := t[0].(string); ok {
				return strings.TrimSpace(s)
			}
		}
		return ""
	default:
		return ""
	}
}

func docStringList(doc map[string]any, field string) []string {
	switch t := doc[field].(type) {
	case nil:
		return nil
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
		return nil
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	default:
		return nil
	}
}

func docInt(doc map[string]any, field string) int {
	switch t := doc[field].(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	case []any:
		if len(t) > 0 {
			if f, ok := t[0].(float64); ok {
				return int(f)
			}
		}
		return 0
	default:
		return 0
	}
}

func firstOf(doc map[string]any, field string) string {
	values := docStringList(doc, field)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
