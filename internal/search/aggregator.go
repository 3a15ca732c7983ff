package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"libris/internal/background"
	"libris/internal/books"
	"libris/internal/config"
	"libris/internal/dedupe"
	"libris/internal/logging"
	"libris/internal/relevance"
	"libris/internal/resultcache"
	"libris/internal/services"
)

// Catalog is a searchable book source. Implementations live under
// internal/services and must honor the context deadline.
type Catalog interface {
	Kind() books.Source
	Search(ctx context.Context, query string, limit int) ([]books.Book, error)
}

// SourceStatus records the outcome of one catalog's contribution to a search.
type SourceStatus struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
}

// Result is a ranked, deduplicated search response.
type Result struct {
	Interpretation books.Interpretation `json:"interpretation"`
	Books          []books.Scored       `json:"books"`
	Sources        []SourceStatus       `json:"sources"`
	Partial        bool                 `json:"partial"`
	FromCache      bool                 `json:"from_cache"`
	Elapsed        time.Duration        `json:"elapsed"`
}

// Aggregator fans a query out to every configured catalog, scores and
// deduplicates the union, and serves repeat queries from a TTL cache.
type Aggregator struct {
	catalogs         []Catalog
	scorer           *relevance.Scorer
	cache            *resultcache.Cache[Result]
	queue            *background.Queue
	logger           *slog.Logger
	limitCeiling     int
	minPerSource     int
	sourceTimeout    time.Duration
	cacheReadTimeout time.Duration
}

// New builds an aggregator over the given catalogs. The cache and queue may
// be nil, in which case results are recomputed on every call and writes
// happen inline.
func New(cfg *config.Config, catalogs []Catalog, cache *resultcache.Cache[Result], queue *background.Queue, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Aggregator{
		catalogs:         catalogs,
		scorer:           relevance.New(cfg.Search.Weights),
		cache:            cache,
		queue:            queue,
		logger:           logger,
		limitCeiling:     cfg.Search.LimitCeiling,
		minPerSource:     cfg.Search.MinPerSource,
		sourceTimeout:    cfg.SourceTimeout(),
		cacheReadTimeout: cfg.CacheReadTimeout(),
	}
}

type catalogOutcome struct {
	source books.Source
	found  []books.Book
	err    error
}

// Search runs the query against every catalog concurrently and returns up to
// limit ranked books. Individual catalog failures degrade the result to
// partial; only the loss of every catalog is an error.
func (a *Aggregator) Search(ctx context.Context, query string, limit int) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Result{}, services.Wrap(services.ErrInvalidInput, "search", "search", "query must not be empty", nil)
	}
	if limit <= 0 {
		return Result{}, services.Wrap(services.ErrInvalidInput, "search", "search", "limit must be positive", nil)
	}
	if limit > a.limitCeiling {
		return Result{}, services.Wrap(services.ErrInvalidInput, "search", "search",
			fmt.Sprintf("limit %d exceeds maximum %d", limit, a.limitCeiling), nil)
	}
	if len(a.catalogs) == 0 {
		return Result{}, services.Wrap(services.ErrUpstream, "search", "search", "no catalogs configured", nil)
	}

	key := resultcache.Key("search", query, strconv.Itoa(limit))
	if a.cache != nil {
		if cached, ok := a.cache.GetWithTimeout(ctx, key, a.cacheReadTimeout); ok {
			cached.FromCache = true
			a.logger.Debug("serving search from cache",
				logging.String(logging.FieldComponent, "search"),
				logging.String(logging.FieldQuery, query))
			return cached, nil
		}
	}

	started := time.Now()
	perSource := a.perSourceAsk(limit)
	outcomes := a.fanOut(ctx, query, perSource)

	interp := books.InterpretQuery(query)
	var scored []books.Scored
	statuses := make([]SourceStatus, 0, len(outcomes))
	failures := 0
	for _, outcome := range outcomes {
		status := SourceStatus{Source: outcome.source.String(), Count: len(outcome.found)}
		if outcome.err != nil {
			failures++
			status.Error = outcome.err.Error()
			a.logger.Warn("catalog search failed",
				logging.String(logging.FieldComponent, "search"),
				logging.String(logging.FieldSource, outcome.source.String()),
				logging.String(logging.FieldQuery, query),
				logging.Error(outcome.err))
		}
		statuses = append(statuses, status)
		for _, book := range outcome.found {
			scored = append(scored, books.Scored{
				Book:         book,
				Relevance:    a.scorer.Score(book, interp),
				Completeness: book.Completeness(),
			})
		}
	}
	if failures == len(a.catalogs) {
		return Result{}, services.Wrap(services.ErrUpstream, "search", "search", "all catalogs failed", nil)
	}

	scored = dedupe.Collapse(scored)
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Relevance != scored[j].Relevance {
			return scored[i].Relevance > scored[j].Relevance
		}
		if scored[i].Completeness != scored[j].Completeness {
			return scored[i].Completeness > scored[j].Completeness
		}
		return scored[i].Book.Source.PriorityRank() < scored[j].Book.Source.PriorityRank()
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}

	result := Result{
		Interpretation: interp,
		Books:          scored,
		Sources:        statuses,
		Partial:        failures > 0,
		Elapsed:        time.Since(started),
	}
	a.storeResult(key, result)

	a.logger.Info("search complete",
		logging.String(logging.FieldComponent, "search"),
		logging.String(logging.FieldQuery, query),
		logging.Int("results", len(result.Books)),
		logging.Int("failed_sources", failures),
		logging.Duration("elapsed", result.Elapsed))
	return result, nil
}

// InvalidateCache clears every cached search result.
func (a *Aggregator) InvalidateCache() {
	if a.cache != nil {
		a.cache.InvalidateAll()
	}
}

// CacheStats reports the live cache counters, or zeros when caching is off.
func (a *Aggregator) CacheStats() resultcache.Stats {
	if a.cache == nil {
		return resultcache.Stats{}
	}
	return a.cache.Stats()
}

// perSourceAsk over-fetches so deduplication and ranking have slack: each
// catalog is asked for an even share of the limit, floored at the configured
// minimum.
func (a *Aggregator) perSourceAsk(limit int) int {
	ask := (limit + len(a.catalogs) - 1) / len(a.catalogs)
	if ask < a.minPerSource {
		ask = a.minPerSource
	}
	return ask
}

func (a *Aggregator) fanOut(ctx context.Context, query string, perSource int) []catalogOutcome {
	outcomes := make([]catalogOutcome, len(a.catalogs))
	var wg sync.WaitGroup
	for i, catalog := range a.catalogs {
		wg.Add(1)
		go func(i int, catalog Catalog) {
			defer wg.Done()
			sourceCtx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
			defer cancel()
			found, err := catalog.Search(sourceCtx, query, perSource)
			if err != nil {
				err = services.Wrap(services.Classify(err), "search", "search",
					catalog.Kind().String()+" catalog failed", err)
			}
			outcomes[i] = catalogOutcome{source: catalog.Kind(), found: found, err: err}
		}(i, catalog)
	}
	wg.Wait()
	return outcomes
}

func (a *Aggregator) storeResult(key string, result Result) {
	if a.cache == nil {
		return
	}
	if a.queue == nil {
		a.cache.Set(key, result)
		return
	}
	submitted := a.queue.Submit(func(context.Context) {
		a.cache.Set(key, result)
	})
	if !submitted {
		a.cache.Set(key, result)
	}
}
