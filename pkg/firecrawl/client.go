// Package firecrawl talks to the hosted Firecrawl extraction API and adapts
// its responses into price records.
package firecrawl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://api.firecrawl.dev"
	RequestTimeout = 30 * time.Second
)

var errUnexpectedShape = errors.New("unexpected response shape")

// Result is one search hit. Every field is optional.
type Result struct {
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

// Document is a scraped page.
type Document struct {
	Markdown string         `json:"markdown"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// Text returns the markdown body, or the plain content for older API versions.
func (d *Document) Text() string {
	if d.Markdown != "" {
		return d.Markdown
	}
	return d.Content
}

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: RequestTimeout},
	}
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type scrapeRequest struct {
	URL             string   `json:"url"`
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"onlyMainContent"`
}

// Search runs a web search through the API.
func (c *Client) Search(query string, limit int) ([]Result, error) {
	raw, err := c.post("/v1/search", searchRequest{Query: query, Limit: limit})
	if err != nil {
		return nil, err
	}
	return decodeResults(raw)
}

// Scrape fetches the main content of a single page.
func (c *Client) Scrape(rawURL string) (*Document, error) {
	raw, err := c.post("/v1/scrape", scrapeRequest{
		URL:             rawURL,
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeDocument(raw)
}

func (c *Client) post(path string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("firecrawl %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("firecrawl %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return json.RawMessage(data), nil
}
