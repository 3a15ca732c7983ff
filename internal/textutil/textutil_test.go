package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTokenizeFiltersShortTokens(t *testing.T) {
	got := Tokenize("To Kill a Mockingbird (1960)")
	want := []string{"kill", "mockingbird", "1960"}
	if len(got) != len(want) {
		t.Fatalf("Tokenize returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSignificantTermsDropsStopwords(t *testing.T) {
	got := SignificantTerms("the great gatsby book")
	if len(got) != 2 || got[0] != "great" || got[1] != "gatsby" {
		t.Fatalf("SignificantTerms = %v, want [great gatsby]", got)
	}
}

func TestTruncateCharsKeepsShortText(t *testing.T) {
	if got := TruncateChars("short", 100); got != "short" {
		t.Errorf("TruncateChars altered short text: %q", got)
	}
}

func TestTruncateCharsCutsAtWordBoundary(t *testing.T) {
	text := strings.Repeat("word ", 100)
	got := TruncateChars(text, 57)
	if len(got) > 57 {
		t.Fatalf("truncated text is %d bytes, budget 57", len(got))
	}
	if strings.HasSuffix(got, "wor") {
		t.Errorf("truncation split a word: %q", got)
	}
}

func TestTruncateCharsKeepsRunesIntact(t *testing.T) {
	text := strings.Repeat("héroïne", 20)
	for max := 1; max < 30; max++ {
		got := TruncateChars(text, max)
		if !utf8.ValidString(got) {
			t.Fatalf("TruncateChars(%d) split a rune: %q", max, got)
		}
		if len(got) > max {
			t.Fatalf("TruncateChars(%d) returned %d bytes", max, len(got))
		}
	}
}

func TestTruncateWords(t *testing.T) {
	got := TruncateWords("one two three four", 2)
	if got != "one two..." {
		t.Errorf("TruncateWords = %q, want %q", got, "one two...")
	}
	if got := TruncateWords("one two", 5); got != "one two" {
		t.Errorf("TruncateWords altered short text: %q", got)
	}
}

func TestWordCount(t *testing.T) {
	if got := WordCount("  alpha   beta\ngamma "); got != 3 {
		t.Errorf("WordCount = %d, want 3", got)
	}
	if got := WordCount(""); got != 0 {
		t.Errorf("WordCount of empty = %d, want 0", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("  a \t b\n\nc "); got != "a b c" {
		t.Errorf("CollapseWhitespace = %q", got)
	}
}
