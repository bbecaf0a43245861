// In-memory ranking over book titles and authors. The scoring is a plain
// literal substring/prefix scheme, not pattern matching, so queries with
// regex metacharacters or non-ASCII text match exactly what they say.

package search

import (
	"sort"
	"strings"

	"summarist/internal/models"
)

// Rank scores every book in corpus against query and returns the top matches,
// best first, capped at limit. The two call sites use different caps (the
// suggestion dropdown and the results page), so the cap is a parameter.
//
// Scoring per book:
//
//	+2 title contains the query
//	+1 author contains the query
//	+3 title starts with the query (stacks with contains)
//	+2 author starts with the query (stacks with contains)
//
// A trimmed, lowercased empty query returns an empty result: an inactive
// search is not the same as a search with no matches, but both look the same
// to the caller. Ties keep the corpus order; two equally ranked books must
// not reorder between identical calls.
func Rank(query string, corpus []models.Book, limit int) []models.Book {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return []models.Book{}
	}

	type scored struct {
		book  models.Book
		score int
	}

	var matches []scored
	for _, b := range corpus {
		title := strings.ToLower(b.Title)
		author := strings.ToLower(b.Author)
		score := 0
		if strings.Contains(title, normalized) {
			score += 2
		}
		if strings.Contains(author, normalized) {
			score += 1
		}
		if strings.HasPrefix(title, normalized) {
			score += 3
		}
		if strings.HasPrefix(author, normalized) {
			score += 2
		}
		if score > 0 {
			matches = append(matches, scored{book: b, score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if limit >= 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]models.Book, len(matches))
	for i, m := range matches {
		results[i] = m.book
	}
	return results
}

// Score returns the rank score a single book would receive for query. Mostly
// useful for debugging endpoints and tests.
func Score(query string, b models.Book) int {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return 0
	}
	title := strings.ToLower(b.Title)
	author := strings.ToLower(b.Author)
	score := 0
	if strings.Contains(title, normalized) {
		score += 2
	}
	if strings.Contains(author, normalized) {
		score += 1
	}
	if strings.HasPrefix(title, normalized) {
		score += 3
	}
	if strings.HasPrefix(author, normalized) {
		score += 2
	}
	return score
}
