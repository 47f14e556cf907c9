// Package normalize cleans identifiers typed by students before they are sent to the backend.
//
// Students commonly type on Persian keyboards, so digits may arrive as Extended
// Arabic-Indic (۰-۹), Arabic-Indic (٠-٩) or full width (０-９) characters, mixed with
// zero width joiners and direction marks.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var asciiDigits = runes.Map(func(r rune) rune {
	switch {
	case r >= '۰' && r <= '۹':
		return '0' + (r - '۰')
	case r >= '٠' && r <= '٩':
		return '0' + (r - '٠')
	}
	return r
})

// removes spaces, format characters (ZWNJ, LRM/RLM) and dashes used as separators
var separators = runes.Remove(runes.Predicate(func(r rune) bool {
	return unicode.IsSpace(r) || unicode.In(r, unicode.Cf) || r == '-'
}))

func clean(s string) string {
	// NFKC folds full width digits and letters to ASCII
	t := transform.Chain(norm.NFKC, asciiDigits, separators)
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return out
}

// Digits converts any Persian, Arabic-Indic or full width digits in s to ASCII and drops separators
func Digits(s string) string {
	return clean(s)
}

// StudentNumber normalises a student number as typed by a user, e.g. "s۰۰۱ " becomes "S001"
func StudentNumber(s string) string {
	return strings.ToUpper(clean(s))
}

// NationalCode normalises a national code for the student-by-national-code login.
// Leading zeros are dropped: the backend stores codes without them.
func NationalCode(s string) string {
	return strings.TrimLeft(clean(s), "0")
}
