package books

import (
	"strings"

	"libris/internal/textutil"
)

// Interpretation is the best-effort parse of a free-text query, echoed on
// search results so callers can show what was understood.
type Interpretation struct {
	Query    string   `json:"query"`
	Author   string   `json:"author,omitempty"`
	Genre    string   `json:"genre,omitempty"`
	Keywords []string `json:"keywords,omitempty"`
}

// knownGenres are matched as whole phrases, longest first.
var knownGenres = []string{
	"science fiction",
	"historical fiction",
	"adventure",
	"biography",
	"fantasy",
	"history",
	"horror",
	"mystery",
	"philosophy",
	"poetry",
	"romance",
	"thriller",
	"western",
}

// InterpretQuery extracts author, genre, and keyword terms from a raw query
// string. Pure string parsing: "by Jane Austen" and "author:austen" forms
// mark the author; genres come from a fixed phrase list; everything else
// significant becomes a keyword.
func InterpretQuery(query string) Interpretation {
	interp := Interpretation{Query: textutil.CollapseWhitespace(query)}
	working := strings.ToLower(interp.Query)

	if idx := strings.Index(working, "author:"); idx >= 0 {
		rest := working[idx+len("author:"):]
		if cut := strings.IndexByte(rest, ' '); cut >= 0 {
			interp.Author = rest[:cut]
			working = working[:idx] + rest[cut+1:]
		} else {
			interp.Author = rest
			working = working[:idx]
		}
	} else if idx := strings.LastIndex(working, " by "); idx >= 0 {
		candidate := strings.TrimSpace(working[idx+4:])
		// Author tails are short; a long tail is part of the title.
		if candidate != "" && len(strings.Fields(candidate)) <= 3 {
			interp.Author = candidate
			working = working[:idx]
		}
	}
	interp.Author = strings.TrimSpace(interp.Author)

	for _, genre := range knownGenres {
		if strings.Contains(working, genre) {
			interp.Genre = genre
			working = strings.Replace(working, genre, " ", 1)
			break
		}
	}

	interp.Keywords = textutil.SignificantTerms(working)
	return interp
}

// AuthorTerms returns the significant tokens of the extracted author, or nil.
func (i Interpretation) AuthorTerms() []string {
	if i.Author == "" {
		return nil
	}
	return textutil.SignificantTerms(i.Author)
}
