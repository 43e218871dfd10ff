package spell

import (
	"strings"

	"github.com/markstash-cloud/markstash/internal/fuzzy"
	"github.com/markstash-cloud/markstash/internal/textutil"
)

const (
	// matchThreshold is the similarity a candidate must strictly exceed.
	matchThreshold = 0.6
	// phoneticBonus is added to a candidate's similarity when its phonetic
	// hash matches the misspelled word (ranking only, never reported).
	phoneticBonus = 0.1
	// lengthWindow bounds the candidate scan: corrections more than two
	// characters longer or shorter are never plausible typos.
	lengthWindow = 2
)

// FindBestMatch returns the vocabulary term most similar to word, or ""
// when word is already in the vocabulary or nothing clears the threshold.
func FindBestMatch(word string, vocab *Vocabulary) string {
	if vocab.Contains(word) {
		return ""
	}

	best := ""
	bestScore := matchThreshold

	wordHash := fuzzy.PhoneticHash(word)
	for _, candidate := range vocab.Terms() {
		diff := len(candidate) - len(word)
		if diff < -lengthWindow || diff > lengthWindow {
			continue
		}

		score := fuzzy.Similarity(word, candidate)
		if fuzzy.PhoneticHash(candidate) == wordHash {
			score += phoneticBonus
		}
		if score > bestScore {
			bestScore = score
			best = candidate
		}
	}

	return best
}

// Suggest corrects each query token against the vocabulary and returns
// the corrected phrase, or "" when no token changed or the correction
// normalizes identically to the original query.
func Suggest(query string, vocab *Vocabulary) string {
	words := textutil.ExtractWords(query)
	if len(words) == 0 {
		return ""
	}

	corrected := make([]string, len(words))
	changed := false
	for i, w := range words {
		if match := FindBestMatch(w, vocab); match != "" {
			corrected[i] = match
			changed = true
		} else {
			corrected[i] = w
		}
	}

	if !changed {
		return ""
	}

	phrase := strings.Join(corrected, " ")
	if textutil.Normalize(phrase) == textutil.Normalize(query) {
		return ""
	}
	return phrase
}
