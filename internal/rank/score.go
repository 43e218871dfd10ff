// Package rank implements the deterministic relevance scorer and the
// search pass over a bookmark collection. Scoring is a pure function of
// the query and the bookmark: no I/O, no randomness, no shared state.
package rank

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/markstash-cloud/markstash/internal/domain/bookmark"
	"github.com/markstash-cloud/markstash/internal/fuzzy"
	"github.com/markstash-cloud/markstash/internal/textutil"
)

// Scoring weights. These are contract values: the MinScore cutoff below
// assumes these exact magnitudes.
const (
	phraseTitleWord       = 1000 // full query as exact word in title
	phraseTitlePrefix     = 400  // full query at a word start in title
	phraseDescriptionWord = 200  // full query as exact word in description
	categoryExact         = 400  // full query equals category or a category word
	categorySubstring     = 200  // category merely contains the query
	urlSegmentExact       = 250  // a URL segment equals the query
	urlSegmentPrefix      = 100  // a URL segment starts with the query (len >= 3)
	acronymMatch          = 350  // title acronym matches/starts with the query
	termTitleWord         = 500  // per-term: exact word in title
	termTitlePrefix       = 300  // per-term: title word starts with term
	termTitleFuzzy        = 150  // per-term: fuzzy title-word match (len >= 4)
	termDescriptionWord   = 150  // per-term: word-boundary match in description
	termURLSegment        = 100  // per-term: URL segment equals/starts with term
	allTermsBonus         = 200  // every term matched somewhere (multi-term only)
	pinnedBonus           = 50   // pinned bookmark, applied only to scored hits
)

// MinScore is the hard inclusion cutoff: bookmarks scoring below it are
// filtered out of search results, not merely ranked last.
const MinScore = 150

// minFuzzyTermLength gates per-term fuzzy matching; shorter terms are too
// noisy for edit-distance comparison.
const minFuzzyTermLength = 4

// Acronym queries are only meaningful in a narrow length band.
const (
	minAcronymLength = 2
	maxAcronymLength = 4
)

// Scored pairs a bookmark with its relevance score and the tags of the
// matches that produced it. It lives only within a single search pass.
type Scored struct {
	Bookmark bookmark.Bookmark
	Score    int
	Matches  []string
}

// Score rates a single bookmark against the query. An empty (or
// whitespace) query yields a zero score with no matches.
func Score(query string, b bookmark.Bookmark) Scored {
	return newMatcher(query).score(b)
}

// matcher holds the per-query precompiled state so a search pass compiles
// each regex once, not once per bookmark.
type matcher struct {
	raw        string
	terms      []string
	phraseWord *regexp.Regexp
	phrasePre  *regexp.Regexp
	termWord   []*regexp.Regexp
	termPre    []*regexp.Regexp
}

func newMatcher(query string) *matcher {
	raw := strings.ToLower(strings.TrimSpace(query))
	m := &matcher{raw: raw}
	if raw == "" {
		return m
	}

	m.phraseWord = wordRegex(raw)
	m.phrasePre = prefixRegex(raw)
	m.terms = textutil.ExtractWords(raw)
	m.termWord = make([]*regexp.Regexp, len(m.terms))
	m.termPre = make([]*regexp.Regexp, len(m.terms))
	for i, t := range m.terms {
		m.termWord[i] = wordRegex(t)
		m.termPre[i] = prefixRegex(t)
	}
	return m
}

// wordRegex anchors the term at both word boundaries: this is what
// separates the exact-word tiers from plain substring containment.
func wordRegex(term string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
}

func prefixRegex(term string) *regexp.Regexp {
	return regexp.MustCompile(`\b` + regexp.QuoteMeta(term))
}

func (m *matcher) score(b bookmark.Bookmark) Scored {
	s := Scored{Bookmark: b}
	if m.raw == "" {
		return s
	}

	title := strings.ToLower(b.Title())
	description := strings.ToLower(b.Description())
	category := strings.ToLower(b.Category())
	segments := urlSegments(b.URL())
	titleWords := textutil.ExtractWords(b.Title())

	// Full-phrase paths. The title word and per-term word matches are
	// intentionally additive for single-word queries: both tiers fire,
	// and downstream thresholds rely on the combined magnitude.
	if m.phraseWord.MatchString(title) {
		s.add(phraseTitleWord, "title:phrase")
	} else if m.phrasePre.MatchString(title) {
		s.add(phraseTitlePrefix, "title:phrase-prefix")
	}

	if description != "" && m.phraseWord.MatchString(description) {
		s.add(phraseDescriptionWord, "description:phrase")
	}

	if category != "" {
		if category == m.raw || m.phraseWord.MatchString(category) {
			s.add(categoryExact, "category:exact")
		} else if strings.Contains(category, m.raw) {
			s.add(categorySubstring, "category:substring")
		}
	}

	if seg, ok := matchSegment(segments, m.raw); ok {
		if seg == m.raw {
			s.add(urlSegmentExact, "url:segment")
		} else if len(m.raw) >= 3 {
			s.add(urlSegmentPrefix, "url:segment-prefix")
		}
	}

	if len(m.raw) >= minAcronymLength && len(m.raw) <= maxAcronymLength {
		acr := textutil.Acronym(b.Title())
		if acr != "" && (acr == m.raw || strings.HasPrefix(acr, m.raw)) {
			s.add(acronymMatch, "acronym")
		}
	}

	// Per-term paths.
	allMatched := len(m.terms) > 0
	for i, term := range m.terms {
		matched := false

		switch {
		case m.termWord[i].MatchString(title):
			s.add(termTitleWord, "title:"+term)
			matched = true
		case m.termPre[i].MatchString(title):
			s.add(termTitlePrefix, "title-prefix:"+term)
			matched = true
		case len(term) >= minFuzzyTermLength && fuzzyTitleMatch(term, titleWords):
			s.add(termTitleFuzzy, "title-fuzzy:"+term)
			matched = true
		}

		if description != "" && m.termWord[i].MatchString(description) {
			s.add(termDescriptionWord, "description:"+term)
			matched = true
		}

		if _, ok := matchSegment(segments, term); ok {
			s.add(termURLSegment, "url:"+term)
			matched = true
		}

		if !matched {
			allMatched = false
		}
	}

	if allMatched && len(m.terms) > 1 {
		s.add(allTermsBonus, "all-terms")
	}

	if s.Score > 0 && b.Pinned() {
		s.add(pinnedBonus, "pinned")
	}

	return s
}

func (s *Scored) add(points int, tag string) {
	s.Score += points
	s.Matches = append(s.Matches, tag)
}

func fuzzyTitleMatch(term string, titleWords []string) bool {
	for _, w := range titleWords {
		if fuzzy.IsFuzzyMatch(term, w, fuzzy.TitleTermThreshold) {
			return true
		}
	}
	return false
}

// urlSegments splits a URL into lowercase host and path segments. A URL
// that yields no segments simply contributes no URL signal; nothing here
// can fail.
func urlSegments(raw string) []string {
	return strings.FieldsFunc(strings.ToLower(raw), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// matchSegment returns the first segment equal to term, or failing that
// the first segment with term as a prefix.
func matchSegment(segments []string, term string) (string, bool) {
	if term == "" {
		return "", false
	}
	var prefixed string
	for _, seg := range segments {
		if seg == term {
			return seg, true
		}
		if prefixed == "" && strings.HasPrefix(seg, term) {
			prefixed = seg
		}
	}
	if prefixed != "" {
		return prefixed, true
	}
	return "", false
}
