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

const archiveBase = "https://archive.org/advancedsearch.php"

// InternetArchive queries the archive.org advanced search API. It rarely
// carries ISBNs, but contributes covers and publication metadata.
type InternetArchive struct {
	Client  *http.Client
	BaseURL string
	Rows    int
}

func NewInternetArchive(timeout time.Duration) *InternetArchive {
	return &InternetArchive{
		Client:  newHTTPClient(timeout),
		BaseURL: archiveBase,
		Rows:    5,
	}
}

func (s *InternetArchive) Name() string { return "ia" }

func (s *InternetArchive) Lookup(ctx context.Context, seed models.NormalizedBook) []models.NormalizedBook {
	var parts []string
	if seed.Title != "" {
		parts = append(parts, fmt.Sprintf("title:%q", seed.Title))
	}
	if len(seed.Authors) > 0 {
		parts = append(parts, fmt.Sprintf("creator:%q", seed.Authors[0]))
	}
	if len(parts) == 0 {
		return nil
	}

	params := url.Values{}
	params.Set("q", strings.Join(parts, " AND "))
	params.Set("fields", "identifier,title,creator,year,publisher")
	params.Set("rows", fmt.Sprintf("%d", s.Rows))
	params.Set("output", "json")

	body, err := get(ctx, s.Client, s.BaseURL+"?"+params.Encode())
	if err != nil {
		log.Printf("[ia] query failed: %v", err)
		return nil
	}

	var payload struct {
		Response struct {
			Docs []json.RawMessage `json:"docs"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		log.Printf("[ia] decode failed: %v", err)
		return nil
	}

	out := make([]models.NormalizedBook, 0, len(payload.Response.Docs))
	for _, raw := range payload.Response.Docs {
		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		identifier := reconcile.AsString(doc["identifier"])
		if identifier == "" {
			continue
		}

		var authors []string
		if creator, ok := doc["creator"].(string); ok {
			for _, part := range strings.Split(creator, ";") {
				if part = strings.TrimSpace(part); part != "" {
					authors = append(authors, part)
				}
			}
		}

		out = append(out, models.NormalizedBook{
			Source:    s.Name(),
			Title:     reconcile.AsString(doc["title"]),
			Authors:   authors,
			Publisher: reconcile.AsString(doc["publisher"]),
			Year:      reconcile.AsYear(doc["year"]),
			CoverURL:  "https://archive.org/services/img/" + identifier,
			StableKey: "",
			Raw:       raw,
		})
	}
	return out
}
