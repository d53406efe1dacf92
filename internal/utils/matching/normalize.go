// Package matching provides text normalization and token helpers used to
// match bank statement rows against members.
package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the input and strips diacritics so that
// "Müller" and "Mueller"-style bank text can be compared byte-wise.
// German umlauts are expanded before decomposition to match the
// common transliteration found in statement exports.
func Normalize(s string) string {
	s = strings.ToLower(s)
	replacer := strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")
	s = replacer.Replace(s)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// ContainsToken reports whether token appears as a whole word inside text.
// Both arguments are expected to be normalized already.
func ContainsToken(text, token string) bool {
	if token == "" {
		return false
	}
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, f := range fields {
		if f == token {
			return true
		}
	}
	return false
}

// ContainsAllTokens reports whether every token appears as a whole word in text.
func ContainsAllTokens(text string, tokens ...string) bool {
	for _, t := range tokens {
		if !ContainsToken(text, t) {
			return false
		}
	}
	return len(tokens) > 0
}
