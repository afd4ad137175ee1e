package models

import "encoding/json"

// SourceMerged is the sentinel source tag carried by reconciled records.
const SourceMerged = "merged"

// NormalizedBook is the source-agnostic form of one bibliographic record
// candidate. Every external provider is mapped into this structure before
// clustering and merging.
//
// Optional text fields use the empty string for "absent"; collections keep
// discovery order with case-insensitive de-duplication. ISBNs are uppercase
// and already filtered to the 10-13 digit/X shape.
type NormalizedBook struct {
	Source      string          `json:"source"`
	Title       string          `json:"title,omitempty"`
	Authors     []string        `json:"authors,omitempty"`
	Publisher   string          `json:"publisher,omitempty"`
	Year        int             `json:"year,omitempty"`
	ISBNs       []string        `json:"isbns,omitempty"`
	CoverURL    string          `json:"cover_url,omitempty"`
	Description string          `json:"description,omitempty"`
	Subjects    []string        `json:"subjects,omitempty"`
	StableKey   string          `json:"stable_key,omitempty"` // provider-permanent id, e.g. an Open Library work key
	Raw         json.RawMessage `json:"raw,omitempty"`

	// Provenance is populated only on merged records: one entry per
	// contributing record, in fold order.
	Provenance []SourceRecord `json:"provenance,omitempty"`
}

// SourceRecord ties a contributing record's raw payload to its source tag.
type SourceRecord struct {
	Source string          `json:"source"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

// HasISBN reports whether the record carries the given (uppercase) ISBN.
func (b NormalizedBook) HasISBN(isbn string) bool {
	for _, v := range b.ISBNs {
		if v == isbn {
			return true
		}
	}
	return false
}
