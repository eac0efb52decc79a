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

// NewsAPIClient fetches articles from the NewsAPI "everything" endpoint.
type NewsAPIClient struct {
	baseURL  string
	apiKey   string
	pageSize int
	client   *http.Client
}

var _ ports.NewsProvider = (*NewsAPIClient)(nil)

// NewNewsAPIClient wires an HTTP client; pageSize defaults to 10.
func NewNewsAPIClient(baseURL, apiKey string, pageSize int, client *http.Client) *NewsAPIClient {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &NewsAPIClient{baseURL: baseURL, apiKey: apiKey, pageSize: pageSize, client: client}
}

// Name identifies the provider inside the registry.
func (c *NewsAPIClient) Name() string {
	return "newsapi"
}

// Fetch queries NewsAPI and maps the response into raw articles.
func (c *NewsAPIClient) Fetch(ctx context.Context, query string) ([]domain.RawArticle, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("language", "en")
	params.Set("sortBy", "relevancy")
	params.Set("pageSize", strconv.Itoa(c.pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("newsapi request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsapi fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned %s", resp.Status)
	}

	var raw newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("newsapi decode: %w", err)
	}

	articles := make([]domain.RawArticle, 0, len(raw.Articles))
	for _, item := range raw.Articles {
		publishedAt, err := time.Parse(time.RFC3339, item.PublishedAt)
		if err != nil {
			publishedAt = time.Time{}
		}

		sourceName := item.Source.Name
		if sourceName == "" {
			sourceName = domain.UnknownAuthor
		}

		author := item.Author
		if author == "" {
			author = domain.UnknownAuthor
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}

		articles = append(articles, domain.RawArticle{
			Title:       item.Title,
			Description: item.Description,
			Content:     content,
			URL:         item.URL,
			Source:      "NewsAPI - " + sourceName,
			Author:      author,
			PublishedAt: publishedAt,
			Category:    domain.DefaultCategory,
		})
	}

	return articles, nil
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source      newsAPISource `json:"source"`
	Author      string        `json:"author"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	URL         string        `json:"url"`
	PublishedAt string        `json:"publishedAt"`
	Content     string        `json:"content"`
}

type newsAPISource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
