package newsfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"MarketScanner/internal/domain"
	"MarketScanner/internal/ports"
)

var tickerExpr = regexp.MustCompile(`\b[A-Z]{1,5}\b`)

// AlphaVantageClient pulls articles from the Alpha Vantage news-sentiment
// feed. The feed is ticker-oriented, so an uppercase symbol found in the
// query narrows the fetch; otherwise the latest market-wide feed is used.
type AlphaVantageClient struct {
	baseURL string
	apiKey  string
	limit   int
	client  *http.Client
}

var _ ports.NewsProvider = (*AlphaVantageClient)(nil)

// NewAlphaVantageClient wires an HTTP client; limit defaults to 10.
func NewAlphaVantageClient(baseURL, apiKey string, limit int, client *http.Client) *AlphaVantageClient {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if limit <= 0 {
		limit = 10
	}
	return &AlphaVantageClient{baseURL: baseURL, apiKey: apiKey, limit: limit, client: client}
}

// Name identifies the provider inside the registry.
func (c *AlphaVantageClient) Name() string {
	return "alphavantage"
}

// Fetch queries the news-sentiment feed and maps entries into raw articles.
func (c *AlphaVantageClient) Fetch(ctx context.Context, query string) ([]domain.RawArticle, error) {
	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("sort", "LATEST")
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("apikey", c.apiKey)
	if ticker := tickerExpr.FindString(query); ticker != "" {
		params.Set("tickers", ticker)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphavantage returned %s", resp.Status)
	}

	var raw alphaVantageResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("alphavantage decode: %w", err)
	}

	articles := make([]domain.RawArticle, 0, len(raw.Feed))
	for _, item := range raw.Feed {
		publishedAt, err := time.Parse("20060102T150405", item.TimePublished)
		if err != nil {
			publishedAt = time.Time{}
		}

		author := strings.Join(item.Authors, ", ")
		if author == "" {
			author = domain.UnknownAuthor
		}

		category := item.CategoryWithinSource
		if category == "" || category == "n/a" {
			category = domain.DefaultCategory
		}

		sourceName := item.Source
		if sourceName == "" {
			sourceName = domain.UnknownAuthor
		}

		articles = append(articles, domain.RawArticle{
			Title:       item.Title,
			Description: item.Summary,
			Content:     item.Summary,
			URL:         item.URL,
			Source:      "AlphaVantage - " + sourceName,
			Author:      author,
			PublishedAt: publishedAt,
			Category:    category,
		})
	}

	return articles, nil
}

type alphaVantageResponse struct {
	Feed []alphaVantageItem `json:"feed"`
}

type alphaVantageItem struct {
	Title                string   `json:"title"`
	URL                  string   `json:"url"`
	TimePublished        string   `json:"time_published"`
	Authors              []string `json:"authors"`
	Summary              string   `json:"summary"`
	Source               string   `json:"source"`
	CategoryWithinSource string   `json:"category_within_source"`
}
