package reconcile

import (
	"errors"
	"strings"

	"bookden/pkg/models"
)

// ErrEmptyCluster is a caller bug, not a runtime condition: the seed record
// is always part of its own cluster.
var ErrEmptyCluster = errors.New("merge requires at least one record")

// Merge collapses one cluster into a single reconciled record. Scalar fields
// follow "first non-empty wins" in cluster order; collections are unioned
// with case-insensitive de-duplication, keeping first-seen order. Inputs are
// never mutated.
func Merge(cluster []models.NormalizedBook) (models.NormalizedBook, error) {
	if len(cluster) == 0 {
		return models.NormalizedBook{}, ErrEmptyCluster
	}

	merged := models.NormalizedBook{
		Source:     models.SourceMerged,
		Provenance: make([]models.SourceRecord, 0, len(cluster)),
	}

	for _, record := range cluster {
		merged.Provenance = append(merged.Provenance, models.SourceRecord{
			Source: record.Source,
			Raw:    record.Raw,
		})

		if merged.Title == "" {
			merged.Title = record.Title
		}
		if merged.Publisher == "" {
			merged.Publisher = record.Publisher
		}
		if merged.Year == 0 {
			merged.Year = record.Year
		}
		if merged.CoverURL == "" {
			merged.CoverURL = record.CoverURL
		}
		if merged.Description == "" {
			merged.Description = record.Description
		}
		if merged.StableKey == "" {
			merged.StableKey = record.StableKey
		}

		merged.Authors = unionFold(merged.Authors, record.Authors)
		merged.Subjects = unionFold(merged.Subjects, record.Subjects)
		merged.ISBNs = unionFold(merged.ISBNs, record.ISBNs)
	}

	return merged, nil
}

// unionFold appends the values from add that are not already present in base,
// comparing case-insensitively.
func unionFold(base, add []string) []string {
	for _, v := range add {
		if v == "" {
			continue
		}
		found := false
		for _, existing := range base {
			if strings.EqualFold(existing, v) {
				found = true
				break
			}
		}
		if !found {
			base = append(base, v)
		}
	}
	return base
}
