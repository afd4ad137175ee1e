package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"bookden/internal/reconcile"
	"bookden/pkg/models"
)

const googleBase = "https://www.googleapis.com/books/v1/volumes"

// imageLinkPriority orders Google cover sizes best first.
var imageLinkPriority = []string{"extraLarge", "large", "medium", "small", "thumbnail", "smallThumbnail"}

// GoogleBooks queries the public Google Books volumes API (no key required).
type GoogleBooks struct {
	Client     *http.Client
	BaseURL    string
	MaxResults int
}

func NewGoogleBooks(timeout time.Duration) *GoogleBooks {
	return &GoogleBooks{
		Client:     newHTTPClient(timeout),
		BaseURL:    googleBase,
		MaxResults: 5,
	}
}

func (s *GoogleBooks) Name() string { return "google" }

type gbVolume struct {
	VolumeInfo struct {
		Title               string `json:"title"`
		Authors             []string
		Publisher           string `json:"publisher"`
		PublishedDate       string `json:"publishedDate"`
		Description         string `json:"description"`
		Categories          []string
		IndustryIdentifiers []struct {
			Type       string `json:"type"`
			Identifier string `json:"identifier"`
		} `json:"industryIdentifiers"`
		ImageLinks map[string]string `json:"imageLinks"`
	} `json:"volumeInfo"`
}

func (s *GoogleBooks) Lookup(ctx context.Context, seed models.NormalizedBook) []models.NormalizedBook {
	var queries []string
	for _, isbn := range seed.ISBNs {
		queries = append(queries, "isbn:"+isbn)
	}
	switch {
	case seed.Title != "" && len(seed.Authors) > 0:
		queries = append(queries, fmt.Sprintf("intitle:%q inauthor:%q", seed.Title, seed.Authors[0]))
	case seed.Title != "":
		queries = append(queries, fmt.Sprintf("intitle:%q", seed.Title))
	}
	if len(queries) == 0 {
		return nil
	}

	for _, q := range queries {
		results, err := s.search(ctx, q)
		if err != nil {
			log.Printf("[google] query failed: %v", err)
			continue
		}
		if len(results) > 0 {
			return results
		}
	}
	return nil
}

func (s *GoogleBooks) search(ctx context.Context, query string) ([]models.NormalizedBook, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", s.MaxResults))

	body, err := get(ctx, s.Client, s.BaseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var payload struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	out := make([]models.NormalizedBook, 0, len(payload.Items))
	for _, raw := range payload.Items {
		var vol gbVolume
		if err := json.Unmarshal(raw, &vol); err != nil {
			continue
		}
		info := vol.VolumeInfo

		var isbnValues []any
		for _, id := range info.IndustryIdentifiers {
			if id.Identifier != "" {
				isbnValues = append(isbnValues, id.Identifier)
			}
		}

		coverURL := ""
		for _, key := range imageLinkPriority {
			if candidate := info.ImageLinks[key]; candidate != "" {
				coverURL = strings.Replace(candidate, "http://", "https://", 1)
				break
			}
		}

		out = append(out, models.NormalizedBook{
			Source:      s.Name(),
			Title:       info.Title,
			Authors:     info.Authors,
			Publisher:   info.Publisher,
			Year:        reconcile.AsYear(info.PublishedDate),
			ISBNs:       reconcile.ExtractISBNs(isbnValues...),
			CoverURL:    coverURL,
			Description: info.Description,
			Subjects:    info.Categories,
			Raw:         raw,
		})
	}
	return out, nil
}
