package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"bookden/internal/reconcile"
	"bookden/pkg/models"
)

const locBase = "https://www.loc.gov/books/"

// LibraryOfCongress queries the loc.gov books search API.
type LibraryOfCongress struct {
	Client  *http.Client
	BaseURL string
}

func NewLibraryOfCongress(timeout time.Duration) *LibraryOfCongress {
	return &LibraryOfCongress{
		Client:  newHTTPClient(timeout),
		BaseURL: locBase,
	}
}

func (s *LibraryOfCongress) Name() string { return "loc" }

func (s *LibraryOfCongress) Lookup(ctx context.Context, seed models.NormalizedBook) []models.NormalizedBook {
	var queries []string
	if len(seed.ISBNs) > 0 {
		queries = append(queries, "isbn:"+seed.ISBNs[0])
	}
	if seed.Title != "" {
		q := fmt.Sprintf("title:%q", seed.Title)
		if len(seed.Authors) > 0 {
			q += fmt.Sprintf(" AND author:%q", seed.Authors[0])
		}
		queries = append(queries, q)
	}

	for _, q := range queries {
		results, err := s.search(ctx, q)
		if err != nil {
			log.Printf("[loc] query failed: %v", err)
			continue
		}
		if len(results) > 0 {
			return results
		}
	}
	return nil
}

func (s *LibraryOfCongress) search(ctx context.Context, query string) ([]models.NormalizedBook, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("fo", "json")

	body, err := get(ctx, s.Client, s.BaseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	out := make([]models.NormalizedBook, 0, len(payload.Results))
	for _, raw := range payload.Results {
		var item map[string]any
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}

		authors := reconcile.AsStringList(item["contributor"])
		if len(authors) == 0 {
			authors = reconcile.AsStringList(item["creator"])
		}
		subjects := reconcile.AsStringList(item["subject_headings"])
		if len(subjects) == 0 {
			subjects = reconcile.AsStringList(item["subjects"])
		}
		year := reconcile.AsYear(item["date"])
		if year == 0 {
			year = reconcile.AsYear(item["published"])
		}

		out = append(out, models.NormalizedBook{
			Source:      s.Name(),
			Title:       reconcile.AsString(item["title"]),
			Authors:     authors,
			Publisher:   reconcile.AsString(item["publisher"]),
			Year:        year,
			ISBNs:       reconcile.ExtractISBNs(item["isbn"], item["isbn_10"], item["isbn_13"]),
			CoverURL:    reconcile.AsString(item["image_url"]),
			Description: reconcile.JoinedString(item["description"]),
			Subjects:    subjects,
			Raw:         raw,
		})
	}
	return out, nil
}
