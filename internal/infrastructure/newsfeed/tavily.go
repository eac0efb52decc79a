package newsfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"MarketScanner/internal/domain"
	"MarketScanner/internal/ports"
)

// TavilyClient sources articles through the Tavily news search API.
type TavilyClient struct {
	baseURL    string
	apiKey     string
	maxResults int
	client     *http.Client
}

var _ ports.NewsProvider = (*TavilyClient)(nil)

// NewTavilyClient wires an HTTP client; maxResults defaults to 10.
func NewTavilyClient(baseURL, apiKey string, maxResults int, client *http.Client) *TavilyClient {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if maxResults <= 0 {
		maxResults = 10
	}
	return &TavilyClient{baseURL: baseURL, apiKey: apiKey, maxResults: maxResults, client: client}
}

// Name identifies the provider inside the registry.
func (c *TavilyClient) Name() string {
	return "tavily"
}

// Fetch runs a news-topic search and maps results into raw articles. The
// search snippet becomes the description; the page body is left for the
// content fetcher to fill in.
func (c *TavilyClient) Fetch(ctx context.Context, query string) ([]domain.RawArticle, error) {
	payload, err := json.Marshal(tavilyRequest{
		Query:       query,
		SearchDepth: "basic",
		Topic:       "news",
		MaxResults:  c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("tavily marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("tavily request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("tavily returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var raw tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("tavily decode: %w", err)
	}

	articles := make([]domain.RawArticle, 0, len(raw.Results))
	for _, item := range raw.Results {
		articles = append(articles, domain.RawArticle{
			Title:       item.Title,
			Description: item.Content,
			Content:     item.RawContent,
			URL:         item.URL,
			Source:      "Tavily",
			Author:      domain.UnknownAuthor,
			PublishedAt: parseTavilyDate(item.PublishedDate),
			Category:    domain.DefaultCategory,
		})
	}

	return articles, nil
}

var tavilyDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	time.RFC1123,
	"Mon, 02 Jan 2006 15:04:05 GMT",
}

func parseTavilyDate(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range tavilyDateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

type tavilyRequest struct {
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth,omitempty"`
	Topic       string `json:"topic,omitempty"`
	MaxResults  int    `json:"max_results,omitempty"`
}

type tavilyResponse struct {
	Query   string         `json:"query"`
	Results []tavilyResult `json:"results"`
}

type tavilyResult struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Content       string `json:"content"`
	RawContent    string `json:"raw_content"`
	PublishedDate string `json:"published_date"`
}
