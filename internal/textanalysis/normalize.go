// Package textanalysis holds the lexical analysis of interview transcripts:
// filler-word counting and polarity/subjectivity scoring.
package textanalysis

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases a transcript, folds accents and unifies apostrophes.
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		folded = text
	}
	folded = strings.NewReplacer("’", "'", "‘", "'").Replace(folded)
	// Casers keep state between calls and cannot be shared.
	return cases.Lower(language.English).String(folded)
}

// WordCount counts whitespace separated words
func WordCount(text string) int {
	return len(strings.Fields(text))
}
