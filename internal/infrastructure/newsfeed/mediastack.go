package newsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"MarketScanner/internal/domain"
	"MarketScanner/internal/ports"
)

// MediaStackClient fetches articles from the MediaStack live news endpoint.
type MediaStackClient struct {
	baseURL string
	apiKey  string
	limit   int
	client  *http.Client
}

var _ ports.NewsProvider = (*MediaStackClient)(nil)

// NewMediaStackClient wires an HTTP client; limit defaults to 10.
func NewMediaStackClient(baseURL, apiKey string, limit int, client *http.Client) *MediaStackClient {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if limit <= 0 {
		limit = 10
	}
	return &MediaStackClient{baseURL: baseURL, apiKey: apiKey, limit: limit, client: client}
}

// Name identifies the provider inside the registry.
func (c *MediaStackClient) Name() string {
	return "mediastack"
}

// Fetch queries MediaStack and maps the response into raw articles.
func (c *MediaStackClient) Fetch(ctx context.Context, query string) ([]domain.RawArticle, error) {
	params := url.Values{}
	params.Set("access_key", c.apiKey)
	params.Set("keywords", query)
	params.Set("languages", "en")
	params.Set("limit", strconv.Itoa(c.limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("mediastack request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mediastack fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mediastack returned %s", resp.Status)
	}

	var raw mediaStackResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("mediastack decode: %w", err)
	}

	articles := make([]domain.RawArticle, 0, len(raw.Data))
	for _, item := range raw.Data {
		publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}

		sourceName := item.Source
		if sourceName == "" {
			sourceName = domain.UnknownAuthor
		}

		author := item.Author
		if author == "" {
			author = domain.UnknownAuthor
		}

		category := item.Category
		if category == "" {
			category = domain.DefaultCategory
		}

		articles = append(articles, domain.RawArticle{
			Title:       item.Title,
			Description: item.Description,
			Content:     item.Description,
			URL:         item.URL,
			Source:      "MediaStack - " + sourceName,
			Author:      author,
			PublishedAt: publishedAt,
			Category:    category,
		})
	}

	return articles, nil
}

type mediaStackResponse struct {
	Data []mediaStackArticle `json:"data"`
}

type mediaStackArticle struct {
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Source      string `json:"source"`
	Category    string `json:"category"`
	PublishedAt string `json:"published_at"`
}
