package content

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"MarketScanner/internal/ports"
)

var blankLines = regexp.MustCompile(`\n\s*\n`)

// Fetcher loads an article page and extracts its title and visible text.
// Used to backfill content for providers that return only a snippet.
type Fetcher struct {
	client   *http.Client
	maxChars int
}

var _ ports.ContentFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; maxChars caps the extracted text and
// defaults to 5000.
func NewFetcher(client *http.Client, maxChars int) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if maxChars <= 0 {
		maxChars = 5000
	}
	return &Fetcher{client: client, maxChars: maxChars}
}

// FetchContent downloads the page and returns its title and cleaned body
// text, truncated to the configured cap.
func (f *Fetcher) FetchContent(ctx context.Context, url string) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "MarketScanner/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("parse page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript, nav, header, footer").Remove()
	text := doc.Find("body").Text()
	text = blankLines.ReplaceAllString(text, "\n\n")
	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > f.maxChars {
		text = string(runes[:f.maxChars])
	}

	return title, text, nil
}
