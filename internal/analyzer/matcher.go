// Package analyzer finds known terms in free text.
package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Term is a canonical name plus the spellings that count as a mention of it.
type Term struct {
	Name    string
	Aliases []string
}

// TermMatch is the number of mentions of one Term in a text.
type TermMatch struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// FindTermMatches counts whole-word, case-insensitive mentions of each term
// (its name or any alias) in content. Terms with no mention are omitted and
// the result keeps the order of terms.
func FindTermMatches(content string, terms []Term) []TermMatch {
	if content == "" || len(terms) == 0 {
		return nil
	}

	// Lower-case the content once, not per term.
	lower := strings.ToLower(content)

	results := make([]TermMatch, 0, len(terms))
	for _, t := range terms {
		count := CountWord(lower, strings.ToLower(t.Name))
		for _, alias := range t.Aliases {
			count += CountWord(lower, strings.ToLower(alias))
		}
		if count > 0 {
			results = append(results, TermMatch{Term: t.Name, Count: count})
		}
	}
	return results
}

// CountWord counts occurrences of word in text that are not embedded in a
// longer word. Both arguments must already be lower-cased.
func CountWord(text, word string) int {
	if word == "" {
		return 0
	}
	count := 0
	for i := 0; i <= len(text)-len(word); {
		j := strings.Index(text[i:], word)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(word)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
		}
		i = start + 1
	}
	return count
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}
