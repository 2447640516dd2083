package matcher

import (
	"strings"
	"unicode/utf8"
)

// Similarity computes a confidence score in [0,100] expressing how closely
// two normalized names resemble each other.
//
// The dominant path is substring containment: when the shorter string is
// embedded in the longer one (a brand name inside a campaign name), the
// score is the length ratio shorter/longer scaled to 100. Two empty
// strings score 100 by definition.
//
// When containment fails, a word-level fallback splits both inputs on
// whitespace and counts, for each word of the first list, the first word
// of the second list it equals, contains, or is contained by. The score is
// matches over the larger word count, scaled to 100. Note that inputs
// processed by Normalize carry no whitespace, so for those the fallback
// degenerates to a single-word comparison that containment has already
// ruled out; the two-path shape is kept to match the upstream behavior
// exactly rather than being folded into one.
func Similarity(a, b string) float64 {
	longer, shorter := a, b
	if utf8.RuneCountInString(b) > utf8.RuneCountInString(a) {
		longer, shorter = b, a
	}

	longerLen := utf8.RuneCountInString(longer)
	if longerLen == 0 {
		return 100
	}

	if strings.Contains(longer, shorter) {
		return float64(utf8.RuneCountInString(shorter)) / float64(longerLen) * 100
	}

	words1 := strings.Fields(a)
	words2 := strings.Fields(b)
	matches := 0
	for _, w1 := range words1 {
		for _, w2 := range words2 {
			if w1 == w2 || strings.Contains(w1, w2) || strings.Contains(w2, w1) {
				matches++
				break
			}
		}
	}

	denom := len(words1)
	if len(words2) > denom {
		denom = len(words2)
	}
	if denom == 0 {
		return 0
	}

	return float64(matches) / float64(denom) * 100
}
