package matcher

import "strings"

// turkishFold maps the Turkish diacritic letters to their base Latin
// equivalents. Folding runs after the strip so the diacritic letters are
// retained by the character class and then rewritten, never deleted.
var turkishFold = strings.NewReplacer(
	"ı", "i",
	"ğ", "g",
	"ü", "u",
	"ş", "s",
	"ö", "o",
	"ç", "c",
)

// Normalize canonicalizes a free-text name for comparison: lower-cases,
// removes every character outside [a-z0-9çğıöşü], then folds the Turkish
// letters to ASCII. Pure and deterministic; an empty string normalizes to
// an empty string.
func Normalize(text string) string {
	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'ç', r == 'ğ', r == 'ı', r == 'ö', r == 'ş', r == 'ü':
			b.WriteRune(r)
		}
	}

	return turkishFold.Replace(b.String())
}
