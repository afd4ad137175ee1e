package openlibrary

import (
	"sort"
	"strings"
)

// Rank orders search docs by a heuristic relevance score: title and author
// similarity with exact/substring bonuses, year proximity and a small nudge
// for well-known editions. Ties keep the provider's order.
func Rank(q Query, docs []map[string]any) []map[string]any {
	type scored struct {
		index int
		score float64
		doc   map[string]any
	}

	items := make([]scored, 0, len(docs))
	for i, doc := range docs {
		items = append(items, scored{index: i, score: scoreDoc(q, doc), doc: doc})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].index < items[j].index
	})

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, item.doc)
	}
	return out
}

func scoreDoc(q Query, doc map[string]any) float64 {
	score := 0.0

	title := strings.ToLower(docString(doc, "title"))
	authors := docStringList(doc, "author_name")
	for i := range authors {
		authors[i] = strings.ToLower(authors[i])
	}

	if q.Title != "" {
		target := strings.ToLower(q.Title)
		score += 5.0 * similarity(target, title)
		if target == title {
			score += 2.0
		} else if strings.Contains(title, target) {
			score += 1.0
		}
	}

	if q.Author != "" {
		target := strings.ToLower(q.Author)
		best := 0.0
		contains := false
		for _, author := range authors {
			if r := similarity(target, author); r > best {
				best = r
			}
			if strings.Contains(author, target) {
				contains = true
			}
		}
		score += 4.0 * best
		if contains {
			score += 2.0
		}
	}

	if q.General != "" {
		haystack := title + " " + strings.ToLower(strings.Join(docStringList(doc, "subject"), ", ")) + " " + strings.Join(authors, " ")
		if strings.Contains(haystack, strings.ToLower(q.General)) {
			score += 1.0
		}
	}

	if q.Year != 0 {
		if year := docInt(doc, "first_publish_year"); year != 0 {
			diff := q.Year - year
			if diff < 0 {
				diff = -diff
			}
			if diff == 0 {
				score += 2.0
			} else {
				if diff > 50 {
					diff = 50
				}
				score += 1.0 - float64(diff)/50.0
			}
		}
	}

	if editions := docInt(doc, "edition_count"); editions > 0 {
		if editions > 5 {
			editions = 5
		}
		score += float64(editions) * 0.1
	}

	return score
}

// similarity is a SequenceMatcher-style ratio: twice the length of the
// longest common subsequence over the combined length.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}
