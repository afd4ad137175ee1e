package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://openlibrary.org"

// DefaultFields lists the search doc fields the catalog needs.
var DefaultFields = []string{
	"title",
	"subtitle",
	"author_name",
	"first_publish_year",
	"edition_count",
	"cover_i",
	"isbn",
	"subject",
	"publisher",
	"number_of_pages_median",
	"key",
}

// Query describes one Open Library search.
type Query struct {
	Title   string
	Author  string
	Year    int
	General string
	Limit   int
	Fields  []string
}

func (q Query) params() url.Values {
	params := url.Values{}
	if q.General != "" {
		params.Set("q", q.General)
	}
	if q.Title != "" {
		params.Set("title", q.Title)
	}
	if q.Author != "" {
		params.Set("author", q.Author)
	}
	if q.Year != 0 {
		params.Set("first_publish_year", strconv.Itoa(q.Year))
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 25
	}
	params.Set("limit", strconv.Itoa(limit))
	fields := q.Fields
	if len(fields) == 0 {
		fields = DefaultFields
	}
	params.Set("fields", strings.Join(fields, ","))
	return params
}

// Client talks to the Open Library search API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient() *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Search returns matching raw docs ranked by relevance, plus the provider's
// total match count.
func (c *Client) Search(ctx context.Context, q Query, offset int) ([]map[string]any, int, error) {
	params := q.params()
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	u := c.BaseURL + "/search.json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("openlibrary: build request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("openlibrary: request: %w", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("openlibrary: status %d", resp.StatusCode)
	}

	var payload struct {
		Docs     []map[string]any `json:"docs"`
		NumFound int              `json:"num_found"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, 0, fmt.Errorf("openlibrary: decode: %w", err)
	}

	ranked := Rank(q, payload.Docs)
	total := payload.NumFound
	if total == 0 {
		total = len(ranked)
	}
	return ranked, total, nil
}
