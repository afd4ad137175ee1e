package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"bookden/pkg/models"
)

// titleKeyParts returns the lowercased title/publisher and year used by the
// composite grouping keys. Absent fields stay empty so they never produce a
// key.
func titleKeyParts(b models.NormalizedBook) (title, publisher string, year int) {
	return strings.ToLower(strings.TrimSpace(b.Title)),
		strings.ToLower(strings.TrimSpace(b.Publisher)),
		b.Year
}

// clusterKeys computes the grouping keys for one record, most specific first:
// one per ISBN, then title+publisher+year, title+year, bare title.
func clusterKeys(b models.NormalizedBook) []string {
	var keys []string
	for _, isbn := range b.ISBNs {
		keys = append(keys, "isbn:"+isbn)
	}
	title, publisher, year := titleKeyParts(b)
	if title != "" && publisher != "" && year != 0 {
		keys = append(keys, fmt.Sprintf("tp:%s|%s|%d", title, publisher, year))
	}
	if title != "" && year != 0 {
		keys = append(keys, fmt.Sprintf("ty:%s|%d", title, year))
	}
	if title != "" {
		keys = append(keys, "title:"+title)
	}
	return keys
}

// CacheKey derives the stable identity a reconciled result is memoized under.
// Empty means the record has no usable identity and must not be cached.
func CacheKey(b models.NormalizedBook) string {
	if b.StableKey != "" {
		return "ol:" + b.StableKey
	}
	if len(b.ISBNs) > 0 {
		sorted := make([]string, len(b.ISBNs))
		copy(sorted, b.ISBNs)
		sort.Strings(sorted)
		return "isbn:" + sorted[0]
	}
	title, publisher, year := titleKeyParts(b)
	if title != "" && publisher != "" && year != 0 {
		return fmt.Sprintf("tp:%s|%s|%d", title, publisher, year)
	}
	if title != "" && year != 0 {
		return fmt.Sprintf("ty:%s|%d", title, year)
	}
	if title != "" {
		return "title:" + title
	}
	return ""
}
