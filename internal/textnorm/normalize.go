// Package textnorm folds free text into the canonical form used for keyword matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize case-folds s, strips diacritics, turns every character that is not a
// letter or digit into a space, collapses whitespace runs and trims the result.
//
//	Normalize("Á é Ñ!") == "a e n"
func Normalize(s string) string {
	folded := cases.Fold().String(s)

	// Transformers carry state, so the chain is built per call.
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(stripMarks, folded); err == nil {
		folded = stripped
	}

	var b strings.Builder
	b.Grow(len(folded))
	prevSpace := true
	for _, r := range folded {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevSpace = false
			continue
		}
		if !prevSpace {
			b.WriteByte(' ')
			prevSpace = true
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Tokens returns the space-separated words of the normalized form of s.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// ContainsPhrase reports whether the normalized text contains phrase as a run of
// whole words. Both arguments must already be normalized.
func ContainsPhrase(normalized, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+normalized+" ", " "+phrase+" ")
}

// ContainsAnyPhrase reports whether any of the phrases occurs in the normalized text.
func ContainsAnyPhrase(normalized string, phrases []string) bool {
	for _, p := range phrases {
		if ContainsPhrase(normalized, p) {
			return true
		}
	}
	return false
}
