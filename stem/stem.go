// Package stem wraps the snowball English stemmer behind the interface
// the safety classifier consumes.
package stem

import (
	"strings"

	"github.com/kljensen/snowball/english"
)

type Stemmer struct{}

func New() Stemmer {
	return Stemmer{}
}

// Stem reduces a word to its canonical English root. Pure and
// deterministic; punctuation around the word is ignored.
func (Stemmer) Stem(word string) string {
	word = strings.Trim(strings.ToLower(word), ".,;:!?\"'()[]{}")
	if word == "" {
		return ""
	}
	return english.Stem(word, true)
}
