package books

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// IdentityKey derives the duplicate-grouping key for a book: the case-folded,
// punctuation-stripped, whitespace-collapsed concatenation of title and
// primary author. Books from different catalogs describing the same work
// produce the same key. The key is never shown to users or persisted.
func (b Book) IdentityKey() string {
	return NormalizeIdentity(b.Title) + "|" + NormalizeIdentity(b.PrimaryAuthor())
}

// NormalizeIdentity lowercases via Unicode case folding, replaces every
// non-letter non-digit rune with a space, and collapses whitespace runs.
func NormalizeIdentity(value string) string {
	folded := foldCaser.String(value)
	var b strings.Builder
	b.Grow(len(folded))
	prevSpace := true
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevSpace = false
		default:
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
