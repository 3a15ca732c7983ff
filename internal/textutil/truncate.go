package textutil

import (
	"strings"
	"unicode/utf8"
)

// TruncateChars bounds text to at most max bytes without splitting a word
// or a multi-byte rune. The cut happens at the last whitespace before the
// limit when one exists within the final quarter of the budget.
func TruncateChars(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	cut := text[:max]
	if idx := strings.LastIndexFunc(cut, func(r rune) bool { return r == ' ' || r == '\n' || r == '\t' }); idx > max*3/4 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " \n\t")
}

// TruncateWords bounds text to at most max whitespace-separated words,
// appending an ellipsis when truncation occurred.
func TruncateWords(text string, max int) string {
	if max <= 0 {
		return ""
	}
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}
	return strings.Join(words[:max], " ") + "..."
}

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
