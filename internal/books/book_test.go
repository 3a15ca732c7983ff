package books

import "testing"

func TestSourcePriorityOrdering(t *testing.T) {
	if !(SourceGutenberg.PriorityRank() < SourceOpenLibrary.PriorityRank()) {
		t.Error("full-text source must outrank open metadata")
	}
	if !(SourceOpenLibrary.PriorityRank() < SourceGoogleBooks.PriorityRank()) {
		t.Error("open metadata must outrank commercial")
	}
}

func TestParseSourceRoundTrip(t *testing.T) {
	for _, s := range []Source{SourceGutenberg, SourceOpenLibrary, SourceGoogleBooks} {
		got, err := ParseSource(s.String())
		if err != nil {
			t.Fatalf("ParseSource(%q): %v", s.String(), err)
		}
		if got != s {
			t.Errorf("ParseSource(%q) = %v, want %v", s.String(), got, s)
		}
	}
	if _, err := ParseSource("annas-archive"); err == nil {
		t.Error("unknown tag should error")
	}
}

func TestSplitID(t *testing.T) {
	source, ext, err := SplitID("gutenberg:1342")
	if err != nil {
		t.Fatalf("SplitID: %v", err)
	}
	if source != SourceGutenberg || ext != "1342" {
		t.Errorf("SplitID = %v, %q", source, ext)
	}

	for _, bad := range []string{"", "gutenberg", "gutenberg:", "weird:1"} {
		if _, _, err := SplitID(bad); err == nil {
			t.Errorf("SplitID(%q) should fail", bad)
		}
	}
}

func TestCompletenessWeighting(t *testing.T) {
	bare := Book{Title: "T", Authors: []string{"A"}}
	if got := bare.Completeness(); got != 0 {
		t.Errorf("bare record completeness = %d, want 0", got)
	}

	rich := Book{
		Title:         "T",
		Authors:       []string{"A"},
		Description:   "desc",
		ISBN:          "978",
		Publisher:     "P",
		PublishedDate: "1930",
		PageCount:     200,
		Language:      "en",
		CoverURL:      "http://c",
		PreviewURL:    "http://p",
		FullTextURL:   "http://f",
	}
	if got := rich.Completeness(); got != 11 {
		t.Errorf("rich record completeness = %d, want 11", got)
	}

	// Description and ISBN weigh double.
	withDesc := Book{Description: "d"}
	withCover := Book{CoverURL: "c"}
	if withDesc.Completeness() <= withCover.Completeness() {
		t.Error("description should outweigh cover url")
	}
}

func TestIdentityKeyCollapsesVariants(t *testing.T) {
	a := Book{Title: "Pride and Prejudice", Authors: []string{"Jane Austen"}}
	b := Book{Title: "  PRIDE & PREJUDICE!  ", Authors: []string{"Jane  Austen"}}
	if a.IdentityKey() != b.IdentityKey() {
		t.Errorf("keys differ: %q vs %q", a.IdentityKey(), b.IdentityKey())
	}

	c := Book{Title: "Pride and Prejudice", Authors: []string{"Other Author"}}
	if a.IdentityKey() == c.IdentityKey() {
		t.Error("different authors must produce different keys")
	}
}

func TestNormalizeIdentityUnicode(t *testing.T) {
	if got := NormalizeIdentity("Crime  and\tPunishment"); got != "crime and punishment" {
		t.Errorf("NormalizeIdentity = %q", got)
	}
	if got := NormalizeIdentity("ÉMILE Zola"); got != "émile zola" {
		t.Errorf("case folding failed: %q", got)
	}
	if got := NormalizeIdentity("!!!"); got != "" {
		t.Errorf("punctuation-only input = %q, want empty", got)
	}
}
