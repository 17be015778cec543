// Package util provides common string helpers used across the battle engine.
package util

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var upper = cases.Upper(language.Und)

// ToID converts a display name into a Showdown id: accents folded, lower-cased,
// everything outside [a-z0-9] removed. "Flabébé" becomes "flabebe".
func ToID(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FirstUpper upper-cases the first rune of s and leaves the rest untouched.
func FirstUpper(s string) string {
	for i, r := range s {
		return upper.String(string(r)) + s[i+len(string(r)):]
	}
	return s
}

// SubstringAfter returns the part of s after the first sep, or s if sep is absent.
func SubstringAfter(s, sep string) string {
	if i := strings.Index(s, sep); i >= 0 {
		return s[i+len(sep):]
	}
	return s
}

// SignedString formats n with an explicit sign ("+2", "-1").
func SignedString(n int) string {
	if n < 0 {
		return strconv.Itoa(n)
	}
	return "+" + strconv.Itoa(n)
}
