package summary

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"libris/internal/books"
	"libris/internal/config"
	"libris/internal/resultcache"
	"libris/internal/services"
	"libris/internal/services/hf"
	"libris/internal/testsupport"
)

type stubResolver struct {
	text string
	err  error
	hang bool
}

func (s *stubResolver) FetchText(ctx context.Context, externalID string) (string, error) {
	if s.hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.text, s.err
}

type stubCatalog struct {
	book  books.Book
	err   error
	calls int
}

func (s *stubCatalog) GetByID(ctx context.Context, externalID string) (books.Book, error) {
	s.calls++
	return s.book, s.err
}

type stubGenerator struct {
	output string
	err    error
	hang   bool

	calls   int
	prompts []string
}

func (s *stubGenerator) Generate(ctx context.Context, model, prompt string, params hf.GenerationParams) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return s.output, s.err
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	cfg.Summary.ResolveTimeoutSeconds = 1
	cfg.Summary.GenerateTimeoutSeconds = 1
	cfg.Summary.MinSourceChars = 20
	return cfg
}

func newOrchestrator(t *testing.T, cfg *config.Config, resolver ContentResolver, generator TextGenerator) *Orchestrator {
	t.Helper()
	resolvers := map[string]ContentResolver{}
	if resolver != nil {
		resolvers["gutenberg"] = resolver
	}
	cache := resultcache.New[Result](16, time.Minute, nil)
	return New(cfg, resolvers, nil, generator, nil, cache, nil, nil)
}

func request() Request {
	return Request{
		BookID:   "gutenberg:345",
		Title:    "Dracula",
		Authors:  []string{"Bram Stoker"},
		Language: "en",
		Style:    "concise",
	}
}

func TestSummarizeRejectsUnsupportedLanguage(t *testing.T) {
	orch := newOrchestrator(t, testConfig(t), nil, &stubGenerator{})
	req := request()
	req.Language = "xx"
	_, err := orch.Summarize(context.Background(), req)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSummarizeRejectsUnsupportedStyle(t *testing.T) {
	orch := newOrchestrator(t, testConfig(t), nil, &stubGenerator{})
	req := request()
	req.Style = "florid"
	_, err := orch.Summarize(context.Background(), req)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSummarizeUsesResolvedText(t *testing.T) {
	generator := &stubGenerator{output: "A vampire moves to England."}
	resolver := &stubResolver{text: strings.Repeat("Jonathan Harker's journal. ", 10)}
	orch := newOrchestrator(t, testConfig(t), resolver, generator)

	result, err := orch.Summarize(context.Background(), request())
	if err != nil {
		t.Fatal(err)
	}
	if result.FromMetadata {
		t.Error("resolved text should not be flagged as metadata fallback")
	}
	if result.WordCount != 5 {
		t.Errorf("word count = %d, want recount of generated text", result.WordCount)
	}
	if result.SourceHash == "" {
		t.Error("source hash missing")
	}
	if !strings.Contains(generator.prompts[0], "Harker") {
		t.Error("prompt should carry the resolved text")
	}
}

func TestSummarizeFallsBackToMetadataOnThinText(t *testing.T) {
	generator := &stubGenerator{output: "A classic novel."}
	resolver := &stubResolver{text: "too short"}
	orch := newOrchestrator(t, testConfig(t), resolver, generator)

	result, err := orch.Summarize(context.Background(), request())
	if err != nil {
		t.Fatal(err)
	}
	if !result.FromMetadata {
		t.Error("thin source text should trigger metadata fallback")
	}
	if !strings.Contains(generator.prompts[0], "Book: Dracula by Bram Stoker.") {
		t.Errorf("prompt = %q, want metadata sentence", generator.prompts[0])
	}
}

func TestSummarizeFallsBackToMetadataOnResolverError(t *testing.T) {
	generator := &stubGenerator{output: "A classic novel."}
	resolver := &stubResolver{err: errors.New("gutendex down")}
	orch := newOrchestrator(t, testConfig(t), resolver, generator)

	result, err := orch.Summarize(context.Background(), request())
	if err != nil {
		t.Fatal(err)
	}
	if !result.FromMetadata {
		t.Error("resolver failure should trigger metadata fallback")
	}
}

func TestSummarizeBoundsHangingResolver(t *testing.T) {
	generator := &stubGenerator{output: "A classic novel."}
	orch := newOrchestrator(t, testConfig(t), &stubResolver{hang: true}, generator)

	started := time.Now()
	result, err := orch.Summarize(context.Background(), request())
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(started); elapsed > 3*time.Second {
		t.Errorf("summarize took %v, hanging resolver not bounded", elapsed)
	}
	if !result.FromMetadata {
		t.Error("timed-out resolver should fall back to metadata")
	}
}

func TestSummarizeHangingGeneratorIsTimeout(t *testing.T) {
	orch := newOrchestrator(t, testConfig(t), &stubResolver{text: strings.Repeat("x ", 50)}, &stubGenerator{hang: true})

	_, err := orch.Summarize(context.Background(), request())
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
}

func TestSummarizeTruncatesOversizedInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Summary.MaxInputChars = 500
	generator := &stubGenerator{output: "Short."}
	resolver := &stubResolver{text: strings.Repeat("word ", 1000)}
	orch := newOrchestrator(t, cfg, resolver, generator)

	if _, err := orch.Summarize(context.Background(), request()); err != nil {
		t.Fatal(err)
	}
	// Prompt adds instruction framing on top of the truncated text.
	if len(generator.prompts[0]) > 1000 {
		t.Errorf("prompt length %d, input not truncated", len(generator.prompts[0]))
	}
}

func TestSummarizeServesRepeatFromCache(t *testing.T) {
	generator := &stubGenerator{output: "A vampire moves to England."}
	resolver := &stubResolver{text: strings.Repeat("text ", 20)}
	orch := newOrchestrator(t, testConfig(t), resolver, generator)

	first, err := orch.Summarize(context.Background(), request())
	if err != nil {
		t.Fatal(err)
	}
	second, err := orch.Summarize(context.Background(), request())
	if err != nil {
		t.Fatal(err)
	}
	if generator.calls != 1 {
		t.Errorf("generator called %d times, want 1", generator.calls)
	}
	if second.ID != first.ID {
		t.Error("cached result should be identical")
	}
}

func TestSummarizeReusesStoredSummaryForSameHash(t *testing.T) {
	cfg := testConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	generator := &stubGenerator{output: "A vampire moves to England."}
	resolver := &stubResolver{text: strings.Repeat("text ", 20)}
	orch := New(cfg, map[string]ContentResolver{"gutenberg": resolver}, nil, generator, st, nil, nil, nil)

	first, err := orch.Summarize(context.Background(), request())
	if err != nil {
		t.Fatal(err)
	}
	second, err := orch.Summarize(context.Background(), request())
	if err != nil {
		t.Fatal(err)
	}
	if generator.calls != 1 {
		t.Errorf("generator called %d times, want store reuse", generator.calls)
	}
	if !second.FromStore || second.ID != first.ID {
		t.Errorf("second result not served from store: %+v", second)
	}
}

func TestSummarizeRegeneratesWhenSourceChanges(t *testing.T) {
	cfg := testConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	generator := &stubGenerator{output: "Summary."}
	resolver := &stubResolver{text: strings.Repeat("first ", 20)}
	orch := New(cfg, map[string]ContentResolver{"gutenberg": resolver}, nil, generator, st, nil, nil, nil)

	if _, err := orch.Summarize(context.Background(), request()); err != nil {
		t.Fatal(err)
	}
	resolver.text = strings.Repeat("second ", 20)
	if _, err := orch.Summarize(context.Background(), request()); err != nil {
		t.Fatal(err)
	}
	if generator.calls != 2 {
		t.Errorf("generator called %d times, changed source should regenerate", generator.calls)
	}
}

func TestSummarizeResolvesDetailsByID(t *testing.T) {
	cfg := testConfig(t)
	generator := &stubGenerator{output: "A study of revenge."}
	catalog := &stubCatalog{book: books.Book{
		Title:       "The Count of Monte Cristo",
		Authors:     []string{"Alexandre Dumas"},
		Description: "Edmond Dantès escapes prison and exacts revenge.",
	}}
	cache := resultcache.New[Result](16, time.Minute, nil)
	orch := New(cfg, nil, map[string]Catalog{"openlibrary": catalog}, generator, nil, cache, nil, nil)

	result, err := orch.Summarize(context.Background(), Request{
		BookID:   "openlibrary:OL123W",
		Language: "en",
		Style:    "concise",
	})
	if err != nil {
		t.Fatal(err)
	}
	if catalog.calls != 1 {
		t.Errorf("catalog called %d times, want 1", catalog.calls)
	}
	if !result.FromMetadata {
		t.Error("catalog-resolved details should be flagged as metadata fallback")
	}
	if result.Title != "The Count of Monte Cristo" {
		t.Errorf("title = %q, want the catalog title", result.Title)
	}
	prompt := generator.prompts[0]
	if !strings.Contains(prompt, "Book: The Count of Monte Cristo by Alexandre Dumas.") {
		t.Errorf("prompt = %q, want resolved title and author", prompt)
	}
	if !strings.Contains(prompt, "Edmond Dantès escapes prison") {
		t.Errorf("prompt = %q, want the catalog description", prompt)
	}
}

func TestSummarizeFallbackCarriesDescription(t *testing.T) {
	cfg := testConfig(t)
	generator := &stubGenerator{output: "A classic novel."}
	resolver := &stubResolver{err: errors.New("gutendex down")}
	catalog := &stubCatalog{book: books.Book{
		Title:       "Dracula",
		Authors:     []string{"Bram Stoker"},
		Description: "Horror, Vampires -- Fiction",
	}}
	cache := resultcache.New[Result](16, time.Minute, nil)
	orch := New(cfg, map[string]ContentResolver{"gutenberg": resolver}, map[string]Catalog{"gutenberg": catalog},
		generator, nil, cache, nil, nil)

	result, err := orch.Summarize(context.Background(), request())
	if err != nil {
		t.Fatal(err)
	}
	if !result.FromMetadata {
		t.Error("resolver failure should trigger metadata fallback")
	}
	if !strings.Contains(generator.prompts[0], "Vampires -- Fiction") {
		t.Errorf("prompt = %q, want the catalog description", generator.prompts[0])
	}
}

func TestSummarizeNoContentNoMetadata(t *testing.T) {
	orch := newOrchestrator(t, testConfig(t), nil, &stubGenerator{output: "x"})
	req := request()
	req.Title = ""
	_, err := orch.Summarize(context.Background(), req)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMetadataTextShape(t *testing.T) {
	got := metadataText("Dracula", nil, "")
	want := "Book: Dracula by Unknown. No additional content available for summarization."
	if got != want {
		t.Errorf("metadataText = %q", got)
	}
	got = metadataText("Dracula", []string{"Bram Stoker"}, "A solicitor visits Transylvania.")
	want = "Book: Dracula by Bram Stoker. A solicitor visits Transylvania."
	if got != want {
		t.Errorf("metadataText = %q", got)
	}
}
