package inventory

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"

	"bookden/pkg/models"
)

// searchField names the metadata group a query term is matched against.
var searchFields = map[string]bool{
	"all":       true,
	"title":     true,
	"author":    true,
	"publisher": true,
	"subjects":  true,
	"isbn":      true,
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func fieldText(b models.Book, field string) string {
	switch field {
	case "title":
		return b.Title + " " + b.Subtitle
	case "author":
		return b.Authors
	case "publisher":
		return b.Publisher
	case "subjects":
		return b.Subjects
	case "isbn":
		return b.ISBN
	default:
		return strings.Join([]string{b.Title, b.Subtitle, b.Authors, b.Publisher, b.Subjects, b.ISBN}, " ")
	}
}

// scoreQuery counts the query words found in the chosen field group. A zero
// score excludes the book; ties keep catalog order.
func scoreQuery(b models.Book, words []string, field string) int {
	if len(words) == 0 {
		return 1
	}
	haystack := strings.ToLower(fieldText(b, field))
	score := 0
	for _, w := range words {
		if strings.Contains(haystack, w) {
			score++
		}
	}
	return score
}

func containsFold(list []string, target string) bool {
	for _, item := range list {
		if strings.EqualFold(strings.TrimSpace(item), target) {
			return true
		}
	}
	return false
}

func matchesSubjects(b models.Book, wanted []string, mode string) bool {
	if len(wanted) == 0 {
		return true
	}
	have := splitCSV(b.Subjects)
	if mode == "all" {
		for _, w := range wanted {
			if !containsFold(have, w) {
				return false
			}
		}
		return true
	}
	for _, w := range wanted {
		if containsFold(have, w) {
			return true
		}
	}
	return false
}

func matchesAny(raw string, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	have := splitCSV(raw)
	for _, w := range wanted {
		if containsFold(have, w) {
			return true
		}
	}
	return false
}

func (h *Handler) searchBooks(c *gin.Context) {
	field := c.DefaultQuery("field", "all")
	if !searchFields[field] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown search field: " + field})
		return
	}
	mode := c.DefaultQuery("subjects_mode", "any")
	if mode != "any" && mode != "all" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subjects_mode must be any or all"})
		return
	}

	words := strings.Fields(strings.ToLower(c.Query("q")))
	subjects := splitCSV(c.Query("subjects"))
	authors := splitCSV(c.Query("authors"))
	publishers := splitCSV(c.Query("publishers"))
	shelves := splitCSV(c.Query("shelves"))

	books, err := h.store.ListBooks(c.Request.Context(), "")
	if err != nil {
		h.fail(c, err)
		return
	}

	type scored struct {
		book  models.Book
		score int
	}
	var hits []scored
	for _, b := range books {
		if !matchesSubjects(b, subjects, mode) {
			continue
		}
		if !matchesAny(b.Authors, authors) || !matchesAny(b.Publisher, publishers) {
			continue
		}
		if len(shelves) > 0 {
			if b.Placement == nil || !containsFold(shelves, b.Placement.ShelfName) {
				continue
			}
		}
		score := scoreQuery(b, words, field)
		if score == 0 {
			continue
		}
		hits = append(hits, scored{book: b, score: score})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	out := make([]bookResponse, 0, len(hits))
	for _, hit := range hits {
		out = append(out, h.respBook(hit.book))
	}
	c.JSON(http.StatusOK, gin.H{"books": out, "total": len(out)})
}

func collectFacet(set map[string]struct{}, raw string) {
	for _, item := range splitCSV(raw) {
		set[item] = struct{}{}
	}
}

func facetList(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for item := range set {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

// bookFilters returns the distinct facet values present in the catalog so
// clients can build filter dropdowns without a second pass.
func (h *Handler) bookFilters(c *gin.Context) {
	books, err := h.store.ListBooks(c.Request.Context(), "")
	if err != nil {
		h.fail(c, err)
		return
	}

	subjects := map[string]struct{}{}
	authors := map[string]struct{}{}
	publishers := map[string]struct{}{}
	shelves := map[string]struct{}{}
	for _, b := range books {
		collectFacet(subjects, b.Subjects)
		collectFacet(authors, b.Authors)
		if b.Publisher != "" {
			publishers[strings.TrimSpace(b.Publisher)] = struct{}{}
		}
		if b.Placement != nil && b.Placement.ShelfName != "" {
			shelves[b.Placement.ShelfName] = struct{}{}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"subjects":   facetList(subjects),
		"authors":    facetList(authors),
		"publishers": facetList(publishers),
		"shelves":    facetList(shelves),
	})
}
