package relevance

import (
	"strings"

	"libris/internal/books"
	"libris/internal/config"
	"libris/internal/textutil"
)

// Scorer computes relevance scores using configured weights.
type Scorer struct {
	weights config.Weights
}

// New builds a Scorer from scoring weights.
func New(weights config.Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score rates one book against an interpreted query. Components: title
// containment/equality/prefix, author match, description containment, a
// per-source preference bonus, and small quality increments for complete
// records.
func (s *Scorer) Score(book books.Book, interp books.Interpretation) float64 {
	var score float64

	title := books.NormalizeIdentity(book.Title)
	query := books.NormalizeIdentity(interp.Query)
	terms := queryTerms(interp)

	if len(terms) > 0 && containsAll(title, terms) {
		score += s.weights.TitleContains
	}
	if title != "" && title == query {
		score += s.weights.TitleExact
	}
	if query != "" && strings.HasPrefix(title, query) && title != query {
		score += s.weights.TitlePrefix
	}

	score += s.authorScore(book, interp)

	if book.Description != "" && len(terms) > 0 {
		desc := strings.ToLower(book.Description)
		if containsAll(desc, terms) {
			score += s.weights.Description
		}
	}

	score += s.sourceBonus(book.Source)

	if book.CoverURL != "" {
		score += s.weights.Quality
	}
	if book.Description != "" {
		score += s.weights.Quality
	}
	if book.ISBN != "" {
		score += s.weights.Quality
	}

	return score
}

func (s *Scorer) authorScore(book books.Book, interp books.Interpretation) float64 {
	authorTerms := interp.AuthorTerms()
	if len(authorTerms) == 0 {
		return 0
	}
	wantedFull := books.NormalizeIdentity(interp.Author)
	var score float64
	for _, author := range book.Authors {
		normalized := books.NormalizeIdentity(author)
		if containsAny(normalized, authorTerms) {
			score += s.weights.AuthorMatch
			if normalized == wantedFull {
				score += s.weights.AuthorExact
			}
			break
		}
	}
	return score
}

func (s *Scorer) sourceBonus(source books.Source) float64 {
	switch source {
	case books.SourceGutenberg:
		return s.weights.SourceFullText
	case books.SourceOpenLibrary:
		return s.weights.SourceOpen
	case books.SourceGoogleBooks:
		return s.weights.SourceCommercial
	default:
		return 0
	}
}

// queryTerms are the significant terms relevance matching runs against:
// keywords plus the genre phrase, excluding author terms.
func queryTerms(interp books.Interpretation) []string {
	terms := append([]string{}, interp.Keywords...)
	if interp.Genre != "" {
		terms = append(terms, textutil.SignificantTerms(interp.Genre)...)
	}
	return terms
}

func containsAll(haystack string, terms []string) bool {
	for _, term := range terms {
		if !strings.Contains(haystack, term) {
			return false
		}
	}
	return len(terms) > 0
}

func containsAny(haystack string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}
