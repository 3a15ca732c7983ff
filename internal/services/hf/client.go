package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL     = "https://api-inference.huggingface.co"
	defaultHTTPTimeout = 120 * time.Second

	// maxAudioBytes caps a synthesized audio download.
	maxAudioBytes = 32 << 20
)

// Client wraps the Hugging Face serverless inference API for text
// generation and text-to-speech.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// Option customizes the inference client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a Hugging Face inference client.
func NewClient(token string, opts ...Option) *Client {
	client := &Client{
		token:      strings.TrimSpace(token),
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return client
}

// GenerationParams shape the sampling of a text generation call.
type GenerationParams struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	TopP           float64 `json:"top_p,omitempty"`
	ReturnFullText *bool   `json:"return_full_text,omitempty"`
}

type generationRequest struct {
	Inputs     string           `json:"inputs"`
	Parameters GenerationParams `json:"parameters"`
	Options    requestOptions   `json:"options"`
}

type requestOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type generationResult struct {
	GeneratedText string `json:"generated_text"`
}

type apiError struct {
	Error string `json:"error"`
}

// Generate runs a text generation model and returns the completion with any
// echoed prompt stripped.
func (c *Client) Generate(ctx context.Context, model, prompt string, params GenerationParams) (string, error) {
	if strings.TrimSpace(model) == "" {
		return "", errors.New("hf generate: model required")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("hf generate: prompt required")
	}
	if c.token == "" {
		return "", errors.New("hf generate: api token required")
	}

	encoded, err := json.Marshal(generationRequest{
		Inputs:     prompt,
		Parameters: params,
		Options:    requestOptions{WaitForModel: true},
	})
	if err != nil {
		return "", fmt.Errorf("hf generate: encode request: %w", err)
	}

	body, _, err := c.post(ctx, model, "application/json", encoded)
	if err != nil {
		return "", fmt.Errorf("hf generate: %w", err)
	}

	var results []generationResult
	if err := json.Unmarshal(body, &results); err != nil {
		return "", fmt.Errorf("hf generate: decode response: %w", err)
	}
	if len(results) == 0 {
		return "", errors.New("hf generate: empty response")
	}
	text := results[0].GeneratedText
	// Instruct models echo the prompt unless return_full_text is off; strip
	// it either way.
	text = strings.TrimPrefix(text, prompt)
	return strings.TrimSpace(text), nil
}

// Synthesize runs a text-to-speech model and returns the raw audio bytes
// plus the response content type.
func (c *Client) Synthesize(ctx context.Context, model, text string) ([]byte, string, error) {
	if strings.TrimSpace(model) == "" {
		return nil, "", errors.New("hf synthesize: model required")
	}
	if strings.TrimSpace(text) == "" {
		return nil, "", errors.New("hf synthesize: text required")
	}
	if c.token == "" {
		return nil, "", errors.New("hf synthesize: api token required")
	}

	encoded, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, "", fmt.Errorf("hf synthesize: encode request: %w", err)
	}

	body, contentType, err := c.post(ctx, model, "application/json", encoded)
	if err != nil {
		return nil, "", fmt.Errorf("hf synthesize: %w", err)
	}
	if len(body) == 0 {
		return nil, "", errors.New("hf synthesize: empty audio payload")
	}
	return body, contentType, nil
}

func (c *Client) post(ctx context.Context, model, contentType string, payload []byte) ([]byte, string, error) {
	endpoint := c.baseURL + "/models/" + model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, "", fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, "", fmt.Errorf("request failed (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr apiError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, "", fmt.Errorf("http %d (latency=%v): %s", resp.StatusCode, latency, apiErr.Error)
		}
		return nil, "", fmt.Errorf("http %d (latency=%v)", resp.StatusCode, latency)
	}
	return body, resp.Header.Get("Content-Type"), nil
}
