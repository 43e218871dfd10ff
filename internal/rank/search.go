package rank

import (
	"sort"
	"strings"

	"github.com/markstash-cloud/markstash/internal/domain/bookmark"
	"github.com/markstash-cloud/markstash/internal/spell"
)

// suggestionThreshold: a spelling suggestion is only attempted when fewer
// results than this survive filtering.
const suggestionThreshold = 3

// Result is the outcome of one search pass.
type Result struct {
	// Hits are the surviving bookmarks with their scores, sorted by score
	// descending. Equal scores keep their input order. For an empty query
	// this is the input collection untouched, with zero scores.
	Hits []Scored
	// Suggestion is a "did you mean" phrase, or "" when none applies.
	Suggestion string
}

// Search scores every bookmark, drops those below MinScore, and sorts the
// rest by score descending. An empty query short-circuits: the input
// comes back unfiltered and unordered, bypassing scoring entirely.
//
// A suggestion is attempted only when vocab is non-nil and fewer than
// three results survive; passing a nil vocabulary skips the corrector
// cost entirely.
func Search(query string, bookmarks []bookmark.Bookmark, vocab *spell.Vocabulary) Result {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		hits := make([]Scored, len(bookmarks))
		for i, b := range bookmarks {
			hits[i] = Scored{Bookmark: b}
		}
		return Result{Hits: hits}
	}

	m := newMatcher(trimmed)
	hits := make([]Scored, 0, len(bookmarks))
	for _, b := range bookmarks {
		if s := m.score(b); s.Score >= MinScore {
			hits = append(hits, s)
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	var suggestion string
	if vocab != nil && len(hits) < suggestionThreshold {
		suggestion = spell.Suggest(trimmed, vocab)
	}

	return Result{Hits: hits, Suggestion: suggestion}
}

// QuickFilter is the cheap as-you-type pre-filter: substring containment
// or per-term word-prefix matching across the concatenated fields. No
// scoring, no threshold, no ordering beyond input order. It must never
// stand in for the full Search result set.
func QuickFilter(query string, bookmarks []bookmark.Bookmark) []bookmark.Bookmark {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return bookmarks
	}
	terms := strings.Fields(q)

	var out []bookmark.Bookmark
	for _, b := range bookmarks {
		haystack := strings.ToLower(
			b.Title() + " " + b.URL() + " " + b.Category() + " " + b.Description(),
		)
		if strings.Contains(haystack, q) || allTermsPrefixMatch(terms, haystack) {
			out = append(out, b)
		}
	}
	return out
}

// allTermsPrefixMatch reports whether every query term is a prefix of
// some word in the haystack.
func allTermsPrefixMatch(terms []string, haystack string) bool {
	if len(terms) == 0 {
		return false
	}
	words := strings.FieldsFunc(haystack, func(r rune) bool {
		return (r < 'a' || r > 'z') && (r < '0' || r > '9')
	})
	for _, t := range terms {
		found := false
		for _, w := range words {
			if strings.HasPrefix(w, t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
