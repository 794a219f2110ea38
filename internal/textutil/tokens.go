package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Tokenize splits a title into case-folded words with diacritics removed.
// Letters and digits from any script count; every other rune separates
// words. Short words are kept, so "Up" and "M" still tokenize.
func Tokenize(title string) []string {
	folded := FoldTitle(title)
	if folded == "" {
		return nil
	}
	if plain, _, err := transform.String(stripMarks(), folded); err == nil {
		folded = plain
	}
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// stripMarks decomposes, drops combining marks and recomposes. A transformer
// carries state, so each call gets a fresh chain.
func stripMarks() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}
