// Package textutil provides the tokenization and normalization primitives
// shared by the scorer, the spelling corrector, and the recommender.
// Every function is pure.
package textutil

import (
	"regexp"
	"strings"
)

var nonWordRegex = regexp.MustCompile(`[^a-z0-9_]+`)

// suffixes is the ordered strip list for Stem. Order matters: the first
// matching suffix wins.
var suffixes = []string{
	"ing", "ed", "es", "s", "tion", "ment", "ness",
	"able", "ible", "ful", "less", "ly", "er", "or", "ist", "ism",
}

// Normalize lowercases, replaces non-word characters with spaces,
// collapses whitespace and trims.
func Normalize(text string) string {
	s := strings.ToLower(text)
	s = nonWordRegex.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// ExtractWords normalizes then splits on spaces, dropping tokens of
// length <= 1.
func ExtractWords(text string) []string {
	var words []string
	for _, w := range strings.Fields(Normalize(text)) {
		if len(w) > 1 {
			words = append(words, w)
		}
	}
	return words
}

// Stem strips the first matching suffix from the ordered list, but only
// when the word is long enough that a meaningful stem remains
// (len(word) > len(suffix)+2). Otherwise the lowercased word is returned
// unchanged.
func Stem(word string) string {
	w := strings.ToLower(word)
	for _, suf := range suffixes {
		if strings.HasSuffix(w, suf) && len(w) > len(suf)+2 {
			return strings.TrimSuffix(w, suf)
		}
	}
	return w
}

// Acronym returns the lowercase concatenation of the first character of
// each extracted word.
func Acronym(text string) string {
	var b strings.Builder
	for _, w := range ExtractWords(text) {
		b.WriteByte(w[0])
	}
	return b.String()
}

// NGrams returns all contiguous substrings of length n. Words shorter
// than n yield the whole word.
func NGrams(word string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(word) < n {
		return []string{word}
	}
	grams := make([]string, 0, len(word)-n+1)
	for i := 0; i+n <= len(word); i++ {
		grams = append(grams, word[i:i+n])
	}
	return grams
}
