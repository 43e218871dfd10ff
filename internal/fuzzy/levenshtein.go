// Package fuzzy provides bounded edit-distance computation, the derived
// string-similarity primitives, and the phonetic hashing used to boost
// spelling-suggestion candidates.
package fuzzy

import (
	"math"
	"strings"
)

// Inf is the sentinel returned by Levenshtein when the distance provably
// exceeds the requested bound.
const Inf = math.MaxInt32

// Similarity thresholds used across the search core. These are literal
// contract values: changing them changes which records clear the scoring
// tiers.
const (
	// DefaultThreshold is the general fuzzy-match cutoff.
	DefaultThreshold = 0.7
	// TitleTermThreshold is the stricter cutoff for per-term title matches.
	TitleTermThreshold = 0.75
)

// Levenshtein computes the unit-cost edit distance between a and b,
// aborting with Inf as soon as the distance provably exceeds maxDist.
// The DP keeps a single row (O(min-length) memory); each outer iteration
// tracks the row minimum, which only grows, so a row minimum above
// maxDist makes the final distance unreachable.
func Levenshtein(a, b string, maxDist int) int {
	if a == b {
		return 0
	}

	ra := []rune(a)
	rb := []rune(b)
	la, lb := len(ra), len(rb)

	if la == 0 {
		return boundedResult(lb, maxDist)
	}
	if lb == 0 {
		return boundedResult(la, maxDist)
	}

	// Length-difference pruning: each missing character costs at least one edit.
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff > maxDist {
		return Inf
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			d := prev[j] + 1 // deletion
			if ins := curr[j-1] + 1; ins < d {
				d = ins // insertion
			}
			if sub := prev[j-1] + cost; sub < d {
				d = sub // substitution
			}
			curr[j] = d
			if d < rowMin {
				rowMin = d
			}
		}
		if rowMin > maxDist {
			return Inf
		}
		prev, curr = curr, prev
	}

	return boundedResult(prev[lb], maxDist)
}

func boundedResult(d, maxDist int) int {
	if d > maxDist {
		return Inf
	}
	return d
}

// Similarity returns 1 - distance/maxLen in [0,1], case-insensitive.
// Equal strings score 1.0; an empty side scores 0.0. The bound is maxLen,
// so pruning never suppresses a valid score.
func Similarity(a, b string) float64 {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	la := len([]rune(a))
	lb := len([]rune(b))
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}

	d := Levenshtein(a, b, maxLen)
	return 1.0 - float64(d)/float64(maxLen)
}

// IsFuzzyMatch reports whether a and b are similar above the threshold.
func IsFuzzyMatch(a, b string, threshold float64) bool {
	return Similarity(a, b) >= threshold
}
