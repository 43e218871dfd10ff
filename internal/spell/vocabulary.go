// Package spell builds per-collection term vocabularies and suggests
// corrections for misspelled queries. A Vocabulary is a snapshot: callers
// rebuild it whenever the bookmark collection changes.
package spell

import (
	"github.com/markstash-cloud/markstash/internal/domain/bookmark"
	"github.com/markstash-cloud/markstash/internal/textutil"
)

// MinTermLength is the shortest token kept in the vocabulary. Shorter
// tokens produce too many accidental matches to be useful corrections.
const MinTermLength = 3

// Vocabulary is a snapshot set of normalized terms. Terms keep their
// first-seen order so candidate scans are deterministic for a given
// bookmark ordering.
type Vocabulary struct {
	terms   map[string]struct{}
	ordered []string
}

// Build extracts the vocabulary from the title, description, category and
// URL of every bookmark, keeping tokens of length >= MinTermLength.
func Build(bookmarks []bookmark.Bookmark) *Vocabulary {
	v := &Vocabulary{terms: make(map[string]struct{})}
	for i := range bookmarks {
		b := &bookmarks[i]
		v.add(b.Title())
		v.add(b.Description())
		v.add(b.Category())
		v.add(b.URL())
	}
	return v
}

func (v *Vocabulary) add(text string) {
	for _, w := range textutil.ExtractWords(text) {
		if len(w) < MinTermLength {
			continue
		}
		if _, ok := v.terms[w]; ok {
			continue
		}
		v.terms[w] = struct{}{}
		v.ordered = append(v.ordered, w)
	}
}

// Contains reports whether the term is in the vocabulary.
func (v *Vocabulary) Contains(term string) bool {
	if v == nil {
		return false
	}
	_, ok := v.terms[term]
	return ok
}

// Len returns the number of distinct terms.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Terms returns the vocabulary terms in first-seen order. The returned
// slice is shared; callers must not mutate it.
func (v *Vocabulary) Terms() []string {
	if v == nil {
		return nil
	}
	return v.ordered
}
