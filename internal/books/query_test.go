package books

import "testing"

func TestInterpretQueryAuthorSuffix(t *testing.T) {
	interp := InterpretQuery("pride and prejudice by jane austen")
	if interp.Author != "jane austen" {
		t.Errorf("author = %q, want %q", interp.Author, "jane austen")
	}
	if len(interp.Keywords) == 0 {
		t.Error("expected title keywords")
	}
	for _, kw := range interp.Keywords {
		if kw == "austen" {
			t.Error("author terms should not leak into keywords")
		}
	}
}

func TestInterpretQueryAuthorPrefixForm(t *testing.T) {
	interp := InterpretQuery("dracula author:stoker")
	if interp.Author != "stoker" {
		t.Errorf("author = %q, want %q", interp.Author, "stoker")
	}
}

func TestInterpretQueryGenre(t *testing.T) {
	interp := InterpretQuery("classic science fiction space travel")
	if interp.Genre != "science fiction" {
		t.Errorf("genre = %q", interp.Genre)
	}
	for _, kw := range interp.Keywords {
		if kw == "science" || kw == "fiction" {
			t.Errorf("genre terms leaked into keywords: %v", interp.Keywords)
		}
	}
}

func TestInterpretQueryLongByTailIsNotAuthor(t *testing.T) {
	interp := InterpretQuery("a walk by the river on a summer night in june")
	if interp.Author != "" {
		t.Errorf("long tail misread as author: %q", interp.Author)
	}
}

func TestAuthorTerms(t *testing.T) {
	interp := Interpretation{Author: "jane austen"}
	terms := interp.AuthorTerms()
	if len(terms) != 2 || terms[0] != "jane" || terms[1] != "austen" {
		t.Errorf("AuthorTerms = %v", terms)
	}
	if (Interpretation{}).AuthorTerms() != nil {
		t.Error("empty author should yield nil terms")
	}
}
