package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"libris/internal/books"
	"libris/internal/config"
	"libris/internal/resultcache"
	"libris/internal/services"
)

type stubCatalog struct {
	kind  books.Source
	found []books.Book
	err   error
	hang  bool

	calls int
}

func (s *stubCatalog) Kind() books.Source { return s.kind }

func (s *stubCatalog) Search(ctx context.Context, query string, limit int) ([]books.Book, error) {
	s.calls++
	if s.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	if len(s.found) > limit {
		return s.found[:limit], nil
	}
	return s.found, nil
}

func catalogBooks(source books.Source, count int) []books.Book {
	out := make([]books.Book, 0, count)
	for i := 0; i < count; i++ {
		externalID := fmt.Sprintf("%s-%d", source, i)
		out = append(out, books.Book{
			ID:      books.CompositeID(source, externalID),
			Source:  source,
			Title:   fmt.Sprintf("%s title %d", source, i),
			Authors: []string{"Author " + externalID},
		})
	}
	return out
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Search.SourceTimeoutSeconds = 1
	return &cfg
}

func newAggregator(t *testing.T, cfg *config.Config, catalogs ...Catalog) *Aggregator {
	t.Helper()
	cache := resultcache.New[Result](cfg.Search.CacheCapacity, cfg.CacheTTL(), nil)
	return New(cfg, catalogs, cache, nil, nil)
}

func TestSearchRejectsEmptyQuery(t *testing.T) {
	agg := newAggregator(t, testConfig(), &stubCatalog{kind: books.SourceGutenberg})
	_, err := agg.Search(context.Background(), "   ", 10)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSearchRejectsOversizedLimit(t *testing.T) {
	cfg := testConfig()
	agg := newAggregator(t, cfg, &stubCatalog{kind: books.SourceGutenberg})
	_, err := agg.Search(context.Background(), "dracula", cfg.Search.LimitCeiling+1)
	if !errors.Is(err, services.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestSearchMergesDisjointCatalogs(t *testing.T) {
	agg := newAggregator(t, testConfig(),
		&stubCatalog{kind: books.SourceGutenberg, found: catalogBooks(books.SourceGutenberg, 5)},
		&stubCatalog{kind: books.SourceOpenLibrary, found: catalogBooks(books.SourceOpenLibrary, 5)},
		&stubCatalog{kind: books.SourceGoogleBooks, found: catalogBooks(books.SourceGoogleBooks, 5)},
	)

	result, err := agg.Search(context.Background(), "some query", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Books) != 10 {
		t.Errorf("got %d books, want 10", len(result.Books))
	}
	if result.Partial {
		t.Error("all sources succeeded, result should not be partial")
	}
	for i := 1; i < len(result.Books); i++ {
		if result.Books[i].Relevance > result.Books[i-1].Relevance {
			t.Fatalf("books not sorted by relevance at %d", i)
		}
	}
}

func TestSearchAbsorbsSingleCatalogFailure(t *testing.T) {
	agg := newAggregator(t, testConfig(),
		&stubCatalog{kind: books.SourceGutenberg, found: catalogBooks(books.SourceGutenberg, 3)},
		&stubCatalog{kind: books.SourceOpenLibrary, err: errors.New("boom")},
	)

	result, err := agg.Search(context.Background(), "dracula", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Partial {
		t.Error("result should be marked partial")
	}
	if len(result.Books) != 3 {
		t.Errorf("got %d books, want the healthy catalog's 3", len(result.Books))
	}
	var failed int
	for _, status := range result.Sources {
		if status.Error != "" {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("failed source statuses = %d, want 1", failed)
	}
}

func TestSearchFailsWhenEveryCatalogFails(t *testing.T) {
	agg := newAggregator(t, testConfig(),
		&stubCatalog{kind: books.SourceGutenberg, err: errors.New("down")},
		&stubCatalog{kind: books.SourceOpenLibrary, err: errors.New("down")},
	)
	_, err := agg.Search(context.Background(), "dracula", 10)
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
}

func TestSearchBoundsHangingCatalog(t *testing.T) {
	cfg := testConfig()
	agg := newAggregator(t, cfg,
		&stubCatalog{kind: books.SourceGutenberg, found: catalogBooks(books.SourceGutenberg, 2)},
		&stubCatalog{kind: books.SourceOpenLibrary, hang: true},
	)

	started := time.Now()
	result, err := agg.Search(context.Background(), "dracula", 10)
	if err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(started); elapsed > 3*time.Second {
		t.Errorf("search took %v, hanging catalog not bounded", elapsed)
	}
	if !result.Partial {
		t.Error("timed-out catalog should mark the result partial")
	}
	if len(result.Books) != 2 {
		t.Errorf("got %d books from the healthy catalog, want 2", len(result.Books))
	}
}

func TestSearchDeduplicatesAcrossCatalogs(t *testing.T) {
	shared := books.Book{
		Title:   "Pride and Prejudice",
		Authors: []string{"Jane Austen"},
	}
	gutenberg := shared
	gutenberg.ID = books.CompositeID(books.SourceGutenberg, "1342")
	gutenberg.Source = books.SourceGutenberg
	google := shared
	google.ID = books.CompositeID(books.SourceGoogleBooks, "abc")
	google.Source = books.SourceGoogleBooks
	google.Description = "A classic novel of manners."
	google.ISBN = "9780141439518"

	agg := newAggregator(t, testConfig(),
		&stubCatalog{kind: books.SourceGutenberg, found: []books.Book{gutenberg}},
		&stubCatalog{kind: books.SourceGoogleBooks, found: []books.Book{google}},
	)

	result, err := agg.Search(context.Background(), "pride and prejudice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Books) != 1 {
		t.Fatalf("got %d books, want 1 after dedup", len(result.Books))
	}
	if result.Books[0].Book.Source != books.SourceGutenberg {
		t.Errorf("winner source = %s, want gutenberg (higher priority beats completeness)",
			result.Books[0].Book.Source)
	}
}

func TestSearchServesRepeatFromCache(t *testing.T) {
	catalog := &stubCatalog{kind: books.SourceGutenberg, found: catalogBooks(books.SourceGutenberg, 2)}
	agg := newAggregator(t, testConfig(), catalog)

	first, err := agg.Search(context.Background(), "dracula", 10)
	if err != nil {
		t.Fatal(err)
	}
	if first.FromCache {
		t.Error("first search should not come from cache")
	}

	second, err := agg.Search(context.Background(), "dracula", 10)
	if err != nil {
		t.Fatal(err)
	}
	if !second.FromCache {
		t.Error("repeat search should come from cache")
	}
	if catalog.calls != 1 {
		t.Errorf("catalog called %d times, want 1", catalog.calls)
	}

	agg.InvalidateCache()
	if stats := agg.CacheStats(); stats.Entries != 0 {
		t.Errorf("entries = %d after invalidation, want 0", stats.Entries)
	}
	if _, err := agg.Search(context.Background(), "dracula", 10); err != nil {
		t.Fatal(err)
	}
	if catalog.calls != 2 {
		t.Errorf("catalog called %d times after invalidation, want 2", catalog.calls)
	}
}

func TestSearchAttachesInterpretation(t *testing.T) {
	agg := newAggregator(t, testConfig(),
		&stubCatalog{kind: books.SourceGutenberg, found: catalogBooks(books.SourceGutenberg, 1)})

	result, err := agg.Search(context.Background(), "mystery novels by Agatha Christie", 5)
	if err != nil {
		t.Fatal(err)
	}
	if result.Interpretation.Author != "agatha christie" {
		t.Errorf("author = %q, want agatha christie", result.Interpretation.Author)
	}
	if result.Interpretation.Genre != "mystery" {
		t.Errorf("genre = %q, want mystery", result.Interpretation.Genre)
	}
}

func TestPerSourceAskFloorsAtMinimum(t *testing.T) {
	cfg := testConfig()
	agg := newAggregator(t, cfg,
		&stubCatalog{kind: books.SourceGutenberg},
		&stubCatalog{kind: books.SourceOpenLibrary},
		&stubCatalog{kind: books.SourceGoogleBooks},
	)
	if got := agg.perSourceAsk(30); got != 10 {
		t.Errorf("perSourceAsk(30) = %d, want 10", got)
	}
	if got := agg.perSourceAsk(3); got != cfg.Search.MinPerSource {
		t.Errorf("perSourceAsk(3) = %d, want floor %d", got, cfg.Search.MinPerSource)
	}
}
