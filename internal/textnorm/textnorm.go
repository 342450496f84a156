// Package textnorm provides the text cleaning pass applied to every corpus page
// at index time and to every query at search time, plus the word tokenizer
// used by the lexical index.
package textnorm

import (
	"strings"
	"unicode"
)

// Normalizer lower-cases text, replaces punctuation and digit runs with
// spaces, and collapses whitespace. Each replacement stage can be disabled;
// whitespace collapsing always runs.
type Normalizer struct {
	Lowercase         bool
	RemovePunctuation bool
	RemoveNumbers     bool
}

// Default returns a Normalizer with every stage enabled.
func Default() Normalizer {
	return Normalizer{
		Lowercase:         true,
		RemovePunctuation: true,
		RemoveNumbers:     true,
	}
}

// Normalize returns the cleaned form of text. The result may be empty.
func (n Normalizer) Normalize(text string) string {
	if n.Lowercase {
		text = strings.ToLower(text)
	}
	var b strings.Builder
	b.Grow(len(text))
	pendingSpace := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		case n.RemoveNumbers && unicode.IsDigit(r):
			pendingSpace = true
			continue
		case n.RemovePunctuation && !unicode.IsLetter(r) && !unicode.IsDigit(r):
			pendingSpace = true
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Tokenize splits text into word tokens of at least two runes. A word is a
// run of letters, digits and underscores.
func Tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !isWordRune(r)
	})
	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if runeCount(word) < 2 {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func runeCount(s string) int {
	n := 0
	for range s {
		n++
		if n >= 2 {
			return n
		}
	}
	return n
}
