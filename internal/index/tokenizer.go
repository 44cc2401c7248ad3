// Package index implements spec.md §4.5's SearchIndex: a hand-rolled
// inverted-postings full-text engine (no bleve/tantivy-go/zincsearch
// import exists anywhere in the example pack — confirmed by dependency
// search), grounded on the teacher's internal/core.PostingsIndex (same
// token -> locations shape, swapped from a flat ASCII word index to a
// per-field stemmed-token index with term frequencies for BM25).
package index

import (
	"strings"
	"unicode"

	"github.com/surgebase/porter2"
)

// splitIdentifier breaks a symbol name into constituent words on
// camelCase/PascalCase transitions, explicit separators (_, -, ., /), and
// letter-digit boundaries. Adapted from the teacher's
// internal/semantic.NameSplitter two-pass algorithm (detect separator
// classes, then split), trimmed of its LRU cache: every call splits from
// scratch, both for chunk fields at index time and for query terms at
// search time.
func splitIdentifier(name string) []string {
	if name == "" {
		return nil
	}
	runes := []rune(name)
	var words []string
	var buf []rune

	flush := func() {
		if len(buf) > 0 {
			words = append(words, strings.ToLower(string(buf)))
			buf = buf[:0]
		}
	}

	for i, ch := range runes {
		switch ch {
		case '_', '-', '.', '/', ' ':
			flush()
			continue
		}

		if i > 0 {
			prev := runes[i-1]
			switch {
			case unicode.IsLower(prev) && unicode.IsUpper(ch):
				// fooBar -> foo | Bar
				flush()
			case i > 1 && unicode.IsUpper(prev) && unicode.IsLower(ch) && unicode.IsUpper(runes[i-2]):
				// HTTPServer -> HTTP | Server: peel the last uppercase
				// letter of the acronym off into the new word.
				if len(buf) > 0 {
					last := buf[len(buf)-1]
					buf = buf[:len(buf)-1]
					flush()
					buf = append(buf, last)
				}
			case (unicode.IsLetter(prev) && unicode.IsDigit(ch)) || (unicode.IsDigit(prev) && unicode.IsLetter(ch)):
				flush()
			}
		}
		buf = append(buf, ch)
	}
	flush()
	return words
}

// tokenizeText lowercases and splits free text on non-alphanumeric
// boundaries, then runs each resulting token through splitIdentifier so
// identifiers embedded in prose ("call fooBar here") still decompose.
func tokenizeText(text string) []string {
	var tokens []string
	var word []rune
	flushWord := func() {
		if len(word) > 0 {
			tokens = append(tokens, splitIdentifier(string(word))...)
			word = word[:0]
		}
	}
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.' || r == '/' {
			word = append(word, r)
		} else {
			flushWord()
		}
	}
	flushWord()
	return tokens
}

// Stemmer applies optional language-specific stemming to already-split
// tokens, per spec.md §4.5's "optional language-specific stemming from
// configuration." Only English has a real stemmer wired
// (surgebase/porter2, already a teacher dependency via
// internal/semantic.Stemmer); any other configured language passes
// through unchanged (see DESIGN.md's Open Question ii resolution).
type Stemmer struct {
	Enabled  bool
	Language string
}

// Stem applies the stemmer to a single already-lowercased token.
func (s Stemmer) Stem(token string) string {
	if !s.Enabled {
		return token
	}
	if s.Language != "en" && s.Language != "english" && s.Language != "" {
		return token
	}
	return porter2.Stem(token)
}

// StemAll stems a slice of tokens in place and returns it.
func (s Stemmer) StemAll(tokens []string) []string {
	if !s.Enabled {
		return tokens
	}
	for i, t := range tokens {
		tokens[i] = s.Stem(t)
	}
	return tokens
}
