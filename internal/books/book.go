package books

import (
	"fmt"
	"strings"
)

// Source identifies one external book catalog. The set is closed: new
// catalogs are added as new variants with an implementation, never as ad
// hoc string tags.
type Source int

const (
	// SourceGutenberg is the free full-text archive (Project Gutenberg).
	SourceGutenberg Source = iota
	// SourceOpenLibrary is the open metadata catalog.
	SourceOpenLibrary
	// SourceGoogleBooks is the commercial catalog with preview links.
	SourceGoogleBooks
)

// String returns the lowercase source tag used in composite book IDs.
func (s Source) String() string {
	switch s {
	case SourceGutenberg:
		return "gutenberg"
	case SourceOpenLibrary:
		return "openlibrary"
	case SourceGoogleBooks:
		return "google"
	default:
		return "unknown"
	}
}

// PriorityRank orders sources by preference when duplicates collide:
// unrestricted full text first, then open metadata, then commercial
// preview. Lower rank wins.
func (s Source) PriorityRank() int {
	switch s {
	case SourceGutenberg:
		return 0
	case SourceOpenLibrary:
		return 1
	case SourceGoogleBooks:
		return 2
	default:
		return 3
	}
}

// ParseSource maps a source tag back to its variant.
func ParseSource(tag string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "gutenberg":
		return SourceGutenberg, nil
	case "openlibrary":
		return SourceOpenLibrary, nil
	case "google":
		return SourceGoogleBooks, nil
	default:
		return 0, fmt.Errorf("unknown book source %q", tag)
	}
}

// Book is one raw catalog record. Immutable once fetched.
type Book struct {
	ID            string   `json:"id"` // composite "source:external_id"
	Source        Source   `json:"-"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	Description   string   `json:"description,omitempty"`
	ISBN          string   `json:"isbn,omitempty"`
	Publisher     string   `json:"publisher,omitempty"`
	PublishedDate string   `json:"published_date,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Language      string   `json:"language,omitempty"`
	CoverURL      string   `json:"cover_url,omitempty"`
	PreviewURL    string   `json:"preview_url,omitempty"`
	FullTextURL   string   `json:"full_text_url,omitempty"`
}

// CompositeID builds the "source:external_id" identifier.
func CompositeID(source Source, externalID string) string {
	return source.String() + ":" + externalID
}

// SplitID separates a composite book ID into source and external ID.
func SplitID(id string) (Source, string, error) {
	tag, rest, found := strings.Cut(strings.TrimSpace(id), ":")
	if !found || rest == "" {
		return 0, "", fmt.Errorf("invalid book ID format %q", id)
	}
	source, err := ParseSource(tag)
	if err != nil {
		return 0, "", err
	}
	return source, rest, nil
}

// AuthorNames joins the ordered author list for display.
func (b Book) AuthorNames() string {
	return strings.Join(b.Authors, ", ")
}

// PrimaryAuthor returns the first author, or empty.
func (b Book) PrimaryAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// Completeness scores how many optional metadata fields are populated.
// Description and ISBN weigh double: they matter most downstream (summary
// fallback input and edition identification).
func (b Book) Completeness() int {
	score := 0
	if strings.TrimSpace(b.Description) != "" {
		score += 2
	}
	if strings.TrimSpace(b.ISBN) != "" {
		score += 2
	}
	for _, present := range []bool{
		b.Publisher != "",
		b.PublishedDate != "",
		b.PageCount > 0,
		b.Language != "",
		b.CoverURL != "",
		b.PreviewURL != "",
		b.FullTextURL != "",
	} {
		if present {
			score++
		}
	}
	return score
}

// Scored pairs a book with its per-search relevance score. Ephemeral,
// never persisted.
type Scored struct {
	Book         Book
	Relevance    float64
	Completeness int
}
