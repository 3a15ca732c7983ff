package gutenberg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"libris/internal/books"
)

// maxTextBytes caps a full-text download. Gutenberg plain-text files run to
// a few megabytes; anything past this is truncated, not failed.
const maxTextBytes = 8 << 20

// bookRecord is a single Gutendex catalog entry.
type bookRecord struct {
	ID            int64             `json:"id"`
	Title         string            `json:"title"`
	Authors       []authorRecord    `json:"authors"`
	Subjects      []string          `json:"subjects"`
	Languages     []string          `json:"languages"`
	Formats       map[string]string `json:"formats"`
	DownloadCount int64             `json:"download_count"`
}

type authorRecord struct {
	Name string `json:"name"`
}

// searchResponse models the paginated Gutendex search payload.
type searchResponse struct {
	Count   int64        `json:"count"`
	Results []bookRecord `json:"results"`
}

// Client provides access to the Gutendex API for Project Gutenberg's
// catalog and full texts.
type Client struct {
	baseURL    string
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

// New creates a Gutendex client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("gutenberg base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Kind reports the catalog identity used in composite book IDs.
func (c *Client) Kind() books.Source { return books.SourceGutenberg }

// Search queries the Gutendex catalog and returns up to limit books.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]books.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/books")
	if err != nil {
		return nil, fmt.Errorf("parse gutendex url: %w", err)
	}
	params := url.Values{}
	params.Set("search", query)
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
		return nil, fmt.Errorf("gutendex search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode gutendex response: %w", err)
	}

	found := make([]books.Book, 0, limit)
	for _, record := range payload.Results {
		if len(found) == limit {
			break
		}
		found = append(found, record.toBook())
	}
	return found, nil
}

// GetByID fetches a single catalog record by its Gutenberg book number.
func (c *Client) GetByID(ctx context.Context, externalID string) (books.Book, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(externalID), 10, 64)
	if err != nil {
		return books.Book{}, fmt.Errorf("parse gutenberg id %q: %w", externalID, err)
	}
	record, err := c.fetchRecord(ctx, id)
	if err != nil {
		return books.Book{}, err
	}
	return record.toBook(), nil
}

// FetchText downloads the plain-text body of a Gutenberg book, for
// summarization. The download is capped at maxTextBytes.
func (c *Client) FetchText(ctx context.Context, externalID string) (string, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(externalID), 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse gutenberg id %q: %w", externalID, err)
	}

	record, err := c.fetchRecord(ctx, id)
	if err != nil {
		return "", err
	}
	textURL := plainTextURL(record.Formats)
	if textURL == "" {
		return "", fmt.Errorf("gutenberg book %d has no plain-text format", id)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, textURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gutenberg text fetch returned %d (latency=%v)", resp.StatusCode, latency)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTextBytes))
	if err != nil {
		return "", fmt.Errorf("read gutenberg text: %w", err)
	}
	return string(body), nil
}

func (c *Client) fetchRecord(ctx context.Context, id int64) (*bookRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/books/%d", c.baseURL, id), nil)
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

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("gutenberg book %d not found", id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gutendex lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var record bookRecord
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		return nil, fmt.Errorf("decode gutendex record: %w", err)
	}
	return &record, nil
}

func (r bookRecord) toBook() books.Book {
	externalID := strconv.FormatInt(r.ID, 10)
	book := books.Book{
		ID:          books.CompositeID(books.SourceGutenberg, externalID),
		Source:      books.SourceGutenberg,
		Title:       r.Title,
		Description: strings.Join(r.Subjects, "; "),
		FullTextURL: plainTextURL(r.Formats),
	}
	for _, author := range r.Authors {
		book.Authors = append(book.Authors, flipName(author.Name))
	}
	if len(r.Languages) > 0 {
		book.Language = r.Languages[0]
	}
	if cover, ok := r.Formats["image/jpeg"]; ok {
		book.CoverURL = cover
	}
	return book
}

// plainTextURL picks the best readable format: UTF-8 plain text first, then
// any other text/plain variant that is not a zip archive.
func plainTextURL(formats map[string]string) string {
	if u, ok := formats["text/plain; charset=utf-8"]; ok {
		return u
	}
	for mime, u := range formats {
		if strings.HasPrefix(mime, "text/plain") && !strings.HasSuffix(u, ".zip") {
			return u
		}
	}
	return ""
}

// flipName converts Gutenberg's "Last, First" author form to "First Last".
func flipName(name string) string {
	last, first, found := strings.Cut(name, ", ")
	if !found {
		return name
	}
	return strings.TrimSpace(first) + " " + strings.TrimSpace(last)
}
