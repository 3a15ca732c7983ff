package summary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"libris/internal/background"
	"libris/internal/books"
	"libris/internal/config"
	"libris/internal/logging"
	"libris/internal/resultcache"
	"libris/internal/services"
	"libris/internal/services/hf"
	"libris/internal/store"
	"libris/internal/textutil"
)

// ContentResolver fetches the source text for a book. The Gutenberg client
// is the real implementation; metadata fallback covers the rest.
type ContentResolver interface {
	FetchText(ctx context.Context, externalID string) (string, error)
}

// Catalog resolves a book's details by its source-local ID. It fills in the
// title, authors, and description when the caller supplies none.
type Catalog interface {
	GetByID(ctx context.Context, externalID string) (books.Book, error)
}

// TextGenerator produces a completion for a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, model, prompt string, params hf.GenerationParams) (string, error)
}

// Result is a completed summarization.
type Result struct {
	ID           string  `json:"id"`
	BookID       string  `json:"book_id"`
	Title        string  `json:"title"`
	Language     string  `json:"language"`
	Style        string  `json:"style"`
	Text         string  `json:"text"`
	WordCount    int     `json:"word_count"`
	SourceHash   string  `json:"source_hash"`
	Model        string  `json:"model"`
	FromMetadata bool    `json:"from_metadata"`
	FromStore    bool    `json:"from_store,omitempty"`
	Elapsed      float64 `json:"elapsed_seconds"`
}

// Request identifies the book and the desired summary shape. Title and
// Authors feed the metadata fallback when no source text is available.
type Request struct {
	BookID   string
	Title    string
	Authors  []string
	Language string
	Style    string
}

// Orchestrator drives summarization: resolve source text under a deadline,
// fall back to metadata when the text is too thin, generate under its own
// deadline, and persist off the caller's path.
type Orchestrator struct {
	cfg       *config.Config
	resolvers map[string]ContentResolver
	catalogs  map[string]Catalog
	generator TextGenerator
	store     *store.Store
	cache     *resultcache.Cache[Result]
	queue     *background.Queue
	logger    *slog.Logger
}

// New builds an orchestrator. The store, cache, and queue may each be nil:
// without a store nothing is persisted, without a cache every request
// regenerates, and without a queue persistence happens inline.
func New(cfg *config.Config, resolvers map[string]ContentResolver, catalogs map[string]Catalog,
	generator TextGenerator, st *store.Store, cache *resultcache.Cache[Result],
	queue *background.Queue, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:       cfg,
		resolvers: resolvers,
		catalogs:  catalogs,
		generator: generator,
		store:     st,
		cache:     cache,
		queue:     queue,
		logger:    logger,
	}
}

// Summarize produces a summary for the requested book, serving repeats from
// the cache or the store when the source content is unchanged.
func (o *Orchestrator) Summarize(ctx context.Context, req Request) (Result, error) {
	req.Language = strings.ToLower(strings.TrimSpace(req.Language))
	req.Style = strings.ToLower(strings.TrimSpace(req.Style))
	if req.BookID == "" {
		return Result{}, services.Wrap(services.ErrInvalidInput, "summary", "summarize", "book id required", nil)
	}
	if !o.supportedLanguage(req.Language) {
		return Result{}, services.Wrap(services.ErrInvalidInput, "summary", "summarize",
			fmt.Sprintf("unsupported language %q (supported: %s)", req.Language, strings.Join(o.cfg.Summary.Languages, ", ")), nil)
	}
	if !o.supportedStyle(req.Style) {
		return Result{}, services.Wrap(services.ErrInvalidInput, "summary", "summarize",
			fmt.Sprintf("unsupported style %q (supported: %s)", req.Style, strings.Join(o.cfg.Summary.Styles, ", ")), nil)
	}

	cacheKey := resultcache.Key("summary", req.BookID, req.Language, req.Style)
	if o.cache != nil {
		if cached, ok := o.cache.GetWithTimeout(ctx, cacheKey, o.cfg.CacheReadTimeout()); ok {
			return cached, nil
		}
	}

	started := time.Now()
	text, req, fromMetadata := o.resolveText(ctx, req)
	if strings.TrimSpace(text) == "" {
		return Result{}, services.Wrap(services.ErrNotFound, "summary", "summarize",
			"no content or metadata available for "+req.BookID, nil)
	}
	sourceHash := hashText(text)

	if o.store != nil {
		stored, found, err := o.store.FindSummary(ctx, req.BookID, req.Language, req.Style, sourceHash)
		if err != nil {
			o.logger.Warn("summary store lookup failed",
				logging.String(logging.FieldComponent, "summary"),
				logging.String(logging.FieldBookID, req.BookID),
				logging.Error(err))
		} else if found {
			result := resultFromRecord(stored)
			result.Title = req.Title
			o.cacheResult(cacheKey, result)
			return result, nil
		}
	}

	text = textutil.TruncateChars(text, o.cfg.Summary.MaxInputChars)
	prompt := hf.SummaryPrompt(req.Title, text, req.Style, req.Language)

	generateCtx, cancel := context.WithTimeout(ctx, o.cfg.GenerateTimeout())
	defer cancel()
	generated, err := o.generator.Generate(generateCtx, o.cfg.HuggingFace.SummaryModel, prompt, hf.GenerationParams{
		MaxNewTokens: maxNewTokens(req.Style),
		Temperature:  0.7,
		TopP:         0.95,
	})
	if err != nil {
		return Result{}, services.Wrap(services.Classify(err), "summary", "summarize",
			"text generation failed", err)
	}
	generated = strings.TrimSpace(generated)
	if generated == "" {
		return Result{}, services.Wrap(services.ErrUpstream, "summary", "summarize",
			"model returned an empty summary", nil)
	}

	result := Result{
		ID:           uuid.NewString(),
		BookID:       req.BookID,
		Title:        req.Title,
		Language:     req.Language,
		Style:        req.Style,
		Text:         generated,
		WordCount:    textutil.WordCount(generated),
		SourceHash:   sourceHash,
		Model:        o.cfg.HuggingFace.SummaryModel,
		FromMetadata: fromMetadata,
		Elapsed:      time.Since(started).Seconds(),
	}

	o.cacheResult(cacheKey, result)
	o.persist(result)

	o.logger.Info("summary generated",
		logging.String(logging.FieldComponent, "summary"),
		logging.String(logging.FieldBookID, req.BookID),
		logging.String(logging.FieldSummaryID, result.ID),
		logging.String("style", req.Style),
		logging.String("language", req.Language),
		logging.Int("word_count", result.WordCount),
		logging.Bool("from_metadata", fromMetadata))
	return result, nil
}

// resolveText fetches the book's source text under the resolve deadline,
// falling back to a metadata sentence when the text is missing or too thin
// to summarize meaningfully. The fallback looks the book up in its source
// catalog so that title, authors, and description are available even when
// the caller supplied none; the returned Request carries the filled fields.
func (o *Orchestrator) resolveText(ctx context.Context, req Request) (string, Request, bool) {
	source, externalID, err := books.SplitID(req.BookID)
	if err != nil {
		return metadataText(req.Title, req.Authors, ""), req, true
	}

	if resolver, ok := o.resolvers[source.String()]; ok {
		resolveCtx, cancel := context.WithTimeout(ctx, o.cfg.ResolveTimeout())
		text, fetchErr := resolver.FetchText(resolveCtx, externalID)
		cancel()
		if fetchErr != nil {
			o.logger.Warn("content resolution failed, using metadata",
				logging.String(logging.FieldComponent, "summary"),
				logging.String(logging.FieldBookID, req.BookID),
				logging.String(logging.FieldImpact, "summary quality reduced"),
				logging.Error(fetchErr))
		} else if len(text) >= o.cfg.Summary.MinSourceChars {
			return text, req, false
		}
	}

	description := ""
	if catalog, ok := o.catalogs[source.String()]; ok {
		lookupCtx, cancel := context.WithTimeout(ctx, o.cfg.ResolveTimeout())
		book, lookupErr := catalog.GetByID(lookupCtx, externalID)
		cancel()
		if lookupErr != nil {
			o.logger.Warn("book detail lookup failed",
				logging.String(logging.FieldComponent, "summary"),
				logging.String(logging.FieldBookID, req.BookID),
				logging.Error(lookupErr))
		} else {
			if strings.TrimSpace(req.Title) == "" {
				req.Title = book.Title
			}
			if len(req.Authors) == 0 {
				req.Authors = book.Authors
			}
			description = book.Description
		}
	}
	return metadataText(req.Title, req.Authors, description), req, true
}

func (o *Orchestrator) cacheResult(key string, result Result) {
	if o.cache != nil {
		o.cache.Set(key, result)
	}
}

// persist writes the summary off the request path. A failed write costs a
// regeneration later, never the current response.
func (o *Orchestrator) persist(result Result) {
	if o.store == nil {
		return
	}
	record := recordFromResult(result)
	write := func(ctx context.Context) {
		if err := o.store.SaveSummary(ctx, record); err != nil {
			o.logger.Warn("summary persist failed",
				logging.String(logging.FieldComponent, "summary"),
				logging.String(logging.FieldSummaryID, record.ID),
				logging.Error(err))
		}
	}
	if o.queue == nil || !o.queue.Submit(write) {
		write(context.Background())
	}
}

func (o *Orchestrator) supportedLanguage(code string) bool {
	for _, lang := range o.cfg.Summary.Languages {
		if code == lang {
			return true
		}
	}
	return false
}

func (o *Orchestrator) supportedStyle(style string) bool {
	for _, s := range o.cfg.Summary.Styles {
		if style == s {
			return true
		}
	}
	return false
}

// maxNewTokens sizes the completion budget per style.
func maxNewTokens(style string) int {
	switch style {
	case "detailed", "academic":
		return 512
	default:
		return 256
	}
}

// metadataText is the fallback input when no source content is available.
// The description substitutes for the source text when the catalog has one.
func metadataText(title string, authors []string, description string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	author := "Unknown"
	if len(authors) > 0 && strings.TrimSpace(authors[0]) != "" {
		author = strings.Join(authors, ", ")
	}
	if description = strings.TrimSpace(description); description != "" {
		return fmt.Sprintf("Book: %s by %s. %s", title, author, description)
	}
	return fmt.Sprintf("Book: %s by %s. No additional content available for summarization.", title, author)
}

func hashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

func resultFromRecord(record store.SummaryRecord) Result {
	return Result{
		ID:           record.ID,
		BookID:       record.BookID,
		Language:     record.Language,
		Style:        record.Style,
		Text:         record.SummaryText,
		WordCount:    record.WordCount,
		SourceHash:   record.SourceHash,
		Model:        record.Model,
		FromMetadata: record.FromMetadata,
		FromStore:    true,
	}
}

func recordFromResult(result Result) store.SummaryRecord {
	return store.SummaryRecord{
		ID:           result.ID,
		BookID:       result.BookID,
		Language:     result.Language,
		Style:        result.Style,
		SummaryText:  result.Text,
		WordCount:    result.WordCount,
		SourceHash:   result.SourceHash,
		Model:        result.Model,
		FromMetadata: result.FromMetadata,
		CreatedAt:    time.Now(),
	}
}
