package fuzzy

import "strings"

// phoneticCodes is the classic Soundex digit table. Vowels and anything
// not listed map to '0' and are never appended.
var phoneticCodes = map[rune]byte{
	'b': '1', 'f': '1', 'p': '1', 'v': '1',
	'c': '2', 'g': '2', 'j': '2', 'k': '2', 'q': '2', 's': '2', 'x': '2', 'z': '2',
	'd': '3', 't': '3',
	'l': '4',
	'm': '5', 'n': '5',
	'r': '6',
}

// PhoneticHash returns a 4-character Soundex-like grouping key: the first
// letter verbatim (lowercased, unmapped) followed by the digit codes of
// the remaining letters, skipping zeros and runs of the same digit, padded
// with trailing zeros. It is an approximate grouping key, not a
// correctness-critical hash.
func PhoneticHash(word string) string {
	runes := []rune(strings.ToLower(word))
	if len(runes) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteRune(runes[0])
	prev := digitOf(runes[0])

	for _, r := range runes[1:] {
		if b.Len() >= 4 {
			break
		}
		d := digitOf(r)
		if d != '0' && d != prev {
			b.WriteByte(d)
		}
		prev = d
	}

	code := b.String()
	for len(code) < 4 {
		code += "0"
	}
	return code
}

func digitOf(r rune) byte {
	if d, ok := phoneticCodes[r]; ok {
		return d
	}
	return '0'
}
