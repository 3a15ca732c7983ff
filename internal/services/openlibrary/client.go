package openlibrary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"libris/internal/books"
)

// doc is a single Open Library search document.
type doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	ISBN             []string `json:"isbn"`
	Publisher        []string `json:"publisher"`
	Language         []string `json:"language"`
	CoverID          int64    `json:"cover_i"`
	MedianPages      int      `json:"number_of_pages_median"`
	FirstSentence    []string `json:"first_sentence"`
}

// searchResponse models the Open Library search payload.
type searchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []doc `json:"docs"`
}

// Client provides access to the Open Library search API.
type Client struct {
	baseURL    string
	coversURL  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithCoversURL overrides the cover image host.
func WithCoversURL(coversURL string) Option {
	return func(c *Client) {
		if coversURL = strings.TrimSpace(coversURL); coversURL != "" {
			c.coversURL = strings.TrimRight(coversURL, "/")
		}
	}
}

// New creates an Open Library client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("openlibrary base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		coversURL:  "https://covers.openlibrary.org",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Kind reports the catalog identity used in composite book IDs.
func (c *Client) Kind() books.Source { return books.SourceOpenLibrary }

// Search queries Open Library works and returns up to limit books.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]books.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search.json")
	if err != nil {
		return nil, fmt.Errorf("parse openlibrary url: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", "key,title,author_name,first_publish_year,isbn,publisher,language,cover_i,number_of_pages_median,first_sentence")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openlibrary search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode openlibrary response: %w", err)
	}

	found := make([]books.Book, 0, limit)
	for _, record := range payload.Docs {
		if len(found) == limit {
			break
		}
		found = append(found, c.toBook(record))
	}
	return found, nil
}

// GetByID resolves a single work by its Open Library work ID. The search
// endpoint is queried by key so the response carries the same fields as a
// regular search, author names included.
func (c *Client) GetByID(ctx context.Context, externalID string) (books.Book, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return books.Book{}, errors.New("work id must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search.json")
	if err != nil {
		return books.Book{}, fmt.Errorf("parse openlibrary url: %w", err)
	}
	params := url.Values{}
	params.Set("q", fmt.Sprintf("key:%q", "/works/"+externalID))
	params.Set("limit", "1")
	params.Set("fields", "key,title,author_name,first_publish_year,isbn,publisher,language,cover_i,number_of_pages_median,first_sentence")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return books.Book{}, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return books.Book{}, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return books.Book{}, fmt.Errorf("openlibrary lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return books.Book{}, fmt.Errorf("decode openlibrary response: %w", err)
	}
	if len(payload.Docs) == 0 {
		return books.Book{}, fmt.Errorf("openlibrary work %s not found", externalID)
	}
	return c.toBook(payload.Docs[0]), nil
}

func (c *Client) toBook(record doc) books.Book {
	externalID := strings.TrimPrefix(record.Key, "/works/")
	book := books.Book{
		ID:        books.CompositeID(books.SourceOpenLibrary, externalID),
		Source:    books.SourceOpenLibrary,
		Title:     record.Title,
		Authors:   record.AuthorName,
		PageCount: record.MedianPages,
	}
	if len(record.FirstSentence) > 0 {
		book.Description = record.FirstSentence[0]
	}
	if len(record.ISBN) > 0 {
		book.ISBN = record.ISBN[0]
	}
	if len(record.Publisher) > 0 {
		book.Publisher = record.Publisher[0]
	}
	if record.FirstPublishYear > 0 {
		book.PublishedDate = strconv.Itoa(record.FirstPublishYear)
	}
	if len(record.Language) > 0 {
		book.Language = record.Language[0]
	}
	if record.CoverID > 0 {
		book.CoverURL = fmt.Sprintf("%s/b/id/%d-M.jpg", c.coversURL, record.CoverID)
	}
	if externalID != "" {
		book.PreviewURL = "https://openlibrary.org" + record.Key
	}
	return book
}
