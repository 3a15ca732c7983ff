package dedupe

import "libris/internal/books"

// Collapse groups scored books by identity key and picks one winner per
// group. Winner precedence within a group: lowest source priority rank
// (full-text sources beat metadata-only ones), then highest completeness,
// then highest relevance. Output order is unspecified; callers re-sort.
func Collapse(scored []books.Scored) []books.Scored {
	if len(scored) <= 1 {
		return scored
	}

	groups := make(map[string]books.Scored, len(scored))
	order := make([]string, 0, len(scored))
	for _, candidate := range scored {
		key := candidate.Book.IdentityKey()
		current, seen := groups[key]
		if !seen {
			groups[key] = candidate
			order = append(order, key)
			continue
		}
		if wins(candidate, current) {
			groups[key] = candidate
		}
	}

	winners := make([]books.Scored, 0, len(order))
	for _, key := range order {
		winners = append(winners, groups[key])
	}
	return winners
}

// wins reports whether a should replace b as its group's winner.
func wins(a, b books.Scored) bool {
	ar, br := a.Book.Source.PriorityRank(), b.Book.Source.PriorityRank()
	if ar != br {
		return ar < br
	}
	if a.Completeness != b.Completeness {
		return a.Completeness > b.Completeness
	}
	return a.Relevance > b.Relevance
}
