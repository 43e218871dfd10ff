// Package recommend computes "related bookmarks" from local signals:
// shared category, shared domain, and token overlap between titles and
// descriptions. It is fully deterministic and makes no external calls.
package recommend

import (
	"math"
	"net/url"
	"sort"
	"strings"

	"github.com/markstash-cloud/markstash/internal/domain/bookmark"
)

// Signal weights for the composite score.
const (
	categoryWeight    = 5 // same category, case-sensitive as stored
	domainWeight      = 3 // same hostname after stripping www.
	titleWeight       = 4 // scaled title-token Jaccard, rounded
	descriptionWeight = 3 // scaled description-token Jaccard, rounded
)

// DefaultLimit is used when the caller passes a non-positive limit.
const DefaultLimit = 4

// Related returns up to limit bookmarks ranked by composite similarity to
// target. The target itself is excluded, as is anything scoring zero.
// Ties keep their input order, so identical input always yields identical
// output.
func Related(target bookmark.Bookmark, all []bookmark.Bookmark, limit int) []bookmark.Bookmark {
	if limit <= 0 {
		limit = DefaultLimit
	}

	targetDomain := Domain(target.URL())
	targetTitle := tokenSet(target.Title())
	var targetDesc map[string]struct{}
	if target.Description() != "" {
		targetDesc = tokenSet(target.Description())
	}

	type scored struct {
		b     bookmark.Bookmark
		score int
	}

	candidates := make([]scored, 0, len(all))
	for _, b := range all {
		if b.ID() == target.ID() {
			continue
		}

		score := 0
		if b.Category() == target.Category() && target.Category() != "" {
			score += categoryWeight
		}
		if d := Domain(b.URL()); d != "" && d == targetDomain {
			score += domainWeight
		}
		score += scaled(titleWeight, Jaccard(targetTitle, tokenSet(b.Title())))
		if targetDesc != nil {
			score += scaled(descriptionWeight, Jaccard(targetDesc, tokenSet(b.Description())))
		}

		if score > 0 {
			candidates = append(candidates, scored{b: b, score: score})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]bookmark.Bookmark, len(candidates))
	for i, c := range candidates {
		out[i] = c.b
	}
	return out
}

// Jaccard returns |A intersect B| / |A union B|, with 0 for two empty sets.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// Domain extracts the lowercase hostname with any leading "www." removed.
// Unparsable URLs mean "no domain", never an error.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}

func scaled(weight int, jaccard float64) int {
	return int(math.Round(float64(weight) * jaccard))
}

// tokenSet lowercases, strips non-alphanumerics, and keeps words longer
// than two characters.
func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(text)) {
		var b strings.Builder
		for _, r := range w {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			}
		}
		tok := b.String()
		if len(tok) > 2 {
			set[tok] = struct{}{}
		}
	}
	return set
}
