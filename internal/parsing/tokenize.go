// Package parsing turns free text into normalized keyword sets for matching.
package parsing

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// MinKeywordLength is the shortest token kept as a keyword. Shorter tokens are noise.
const MinKeywordLength = 4

// wordPattern matches runs of letters, digits and underscores.
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// stopwords are conjunctions, prepositions, auxiliaries and pronouns that carry no skill signal.
var stopwords = map[string]struct{}{
	"and": {}, "the": {}, "to": {}, "of": {}, "in": {}, "a": {}, "for": {}, "with": {},
	"on": {}, "is": {}, "at": {}, "an": {}, "or": {}, "be": {}, "as": {}, "are": {},
	"will": {}, "this": {}, "that": {}, "from": {}, "have": {}, "has": {}, "had": {},
	"but": {}, "they": {}, "their": {}, "what": {}, "which": {}, "who": {}, "when": {},
	"where": {}, "how": {}, "all": {}, "each": {}, "other": {}, "some": {}, "such": {},
	"into": {}, "than": {}, "them": {}, "these": {}, "those": {}, "would": {},
	"should": {}, "could": {}, "been": {}, "being": {}, "were": {}, "was": {},
	"can": {}, "may": {}, "must": {}, "shall": {}, "years": {},
}

// Words returns every word token of text, lowercased, in order of appearance.
// Duplicates are kept.
func Words(text string) []string {
	if text == "" {
		return []string{}
	}
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	if words == nil {
		return []string{}
	}
	return words
}

// WordSet returns the distinct word tokens of text with no filtering applied.
func WordSet(text string) map[string]struct{} {
	words := Words(text)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopword reports whether word is in the fixed stopword list.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}

// IsKeyword reports whether a lowercase token survives stopword and length filtering.
func IsKeyword(word string) bool {
	return utf8.RuneCountInString(word) >= MinKeywordLength && !IsStopword(word)
}

// Tokenize extracts the keyword set of text: lowercase word tokens with
// stopwords and tokens of three characters or fewer removed.
// The result is deduplicated and sorted alphabetically.
func Tokenize(text string) []string {
	seen := make(map[string]struct{})
	keywords := make([]string, 0)
	for _, w := range Words(text) {
		if !IsKeyword(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		keywords = append(keywords, w)
	}
	sort.Strings(keywords)
	return keywords
}
