package textutil

import (
	"regexp"
	"strings"
)

// tokenSplitPattern matches non-alphanumeric character sequences for tokenization.
var tokenSplitPattern = regexp.MustCompile(`[^a-z0-9]+`)

// stopwords are common terms that carry no relevance signal in book queries.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "about": {},
	"book": {}, "books": {}, "novel": {}, "story": {},
}

// Tokenize splits text into lowercase tokens, filtering short tokens.
func Tokenize(text string) []string {
	lowered := strings.ToLower(text)
	raw := tokenSplitPattern.Split(lowered, -1)
	terms := make([]string, 0, len(raw))
	for _, token := range raw {
		token = strings.TrimSpace(token)
		if len(token) < 3 {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// SignificantTerms tokenizes text and drops stopwords. Used for query term
// matching so that "the great gatsby" requires "great" and "gatsby" but not
// "the".
func SignificantTerms(text string) []string {
	tokens := Tokenize(text)
	terms := tokens[:0]
	for _, token := range tokens {
		if _, skip := stopwords[token]; skip {
			continue
		}
		terms = append(terms, token)
	}
	return terms
}

// CollapseWhitespace replaces runs of whitespace with single spaces and trims.
func CollapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
