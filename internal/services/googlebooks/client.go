package googlebooks

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

// volume is a single Google Books API volume.
type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Authors             []string             `json:"authors"`
	Description         string               `json:"description"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	PageCount           int                  `json:"pageCount"`
	Language            string               `json:"language"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	ImageLinks          imageLinks           `json:"imageLinks"`
	PreviewLink         string               `json:"previewLink"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	Thumbnail      string `json:"thumbnail"`
	SmallThumbnail string `json:"smallThumbnail"`
}

// searchResponse models the Google Books volume list payload.
type searchResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

// Client provides access to the Google Books volumes API.
type Client struct {
	apiKey     string
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

// New creates a Google Books client. The API key is optional; Google serves
// anonymous volume searches at a lower rate limit.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("googlebooks base url required")
	}
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Kind reports the catalog identity used in composite book IDs.
func (c *Client) Kind() books.Source { return books.SourceGoogleBooks }

// Search queries Google Books volumes and returns up to limit books.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]books.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/volumes")
	if err != nil {
		return nil, fmt.Errorf("parse googlebooks url: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(min(limit, 40)))
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
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
		return nil, fmt.Errorf("googlebooks search returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode googlebooks response: %w", err)
	}

	found := make([]books.Book, 0, limit)
	for _, item := range payload.Items {
		if len(found) == limit {
			break
		}
		found = append(found, toBook(item))
	}
	return found, nil
}

// GetByID fetches a single volume by its Google Books volume ID.
func (c *Client) GetByID(ctx context.Context, externalID string) (books.Book, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return books.Book{}, errors.New("volume id must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/volumes/" + url.PathEscape(externalID))
	if err != nil {
		return books.Book{}, fmt.Errorf("parse googlebooks url: %w", err)
	}
	if c.apiKey != "" {
		params := url.Values{}
		params.Set("key", c.apiKey)
		endpoint.RawQuery = params.Encode()
	}

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

	if resp.StatusCode == http.StatusNotFound {
		return books.Book{}, fmt.Errorf("googlebooks volume %s not found", externalID)
	}
	if resp.StatusCode != http.StatusOK {
		return books.Book{}, fmt.Errorf("googlebooks lookup returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var item volume
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return books.Book{}, fmt.Errorf("decode googlebooks response: %w", err)
	}
	return toBook(item), nil
}

func toBook(item volume) books.Book {
	info := item.VolumeInfo
	book := books.Book{
		ID:            books.CompositeID(books.SourceGoogleBooks, item.ID),
		Source:        books.SourceGoogleBooks,
		Title:         info.Title,
		Authors:       info.Authors,
		Description:   info.Description,
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		PageCount:     info.PageCount,
		Language:      info.Language,
		PreviewURL:    info.PreviewLink,
	}
	book.ISBN = pickISBN(info.IndustryIdentifiers)
	if info.ImageLinks.Thumbnail != "" {
		book.CoverURL = info.ImageLinks.Thumbnail
	} else {
		book.CoverURL = info.ImageLinks.SmallThumbnail
	}
	return book
}

// pickISBN prefers ISBN_13 over ISBN_10.
func pickISBN(identifiers []industryIdentifier) string {
	var isbn10 string
	for _, id := range identifiers {
		switch id.Type {
		case "ISBN_13":
			return id.Identifier
		case "ISBN_10":
			isbn10 = id.Identifier
		}
	}
	return isbn10
}
