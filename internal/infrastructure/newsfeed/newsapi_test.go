package newsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MarketScanner/internal/domain"
)

func TestNewsAPIFetch(t *testing.T) {
	t.Parallel()

	payload := `{
		"status": "ok",
		"articles": [
			{
				"source": {"id": "reuters", "name": "Reuters"},
				"author": "Jane Doe",
				"title": "Markets rally on rate decision",
				"description": "Stocks rose after the decision.",
				"url": "https://example.com/rally",
				"publishedAt": "2026-02-26T12:00:00Z",
				"content": "Full body text."
			},
			{
				"source": {"name": ""},
				"author": "",
				"title": "Untitled wire item",
				"description": "",
				"url": "https://example.com/wire",
				"publishedAt": "not-a-date",
				"content": ""
			}
		]
	}`

	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	client := NewNewsAPIClient(srv.URL, "test-key", 10, srv.Client())
	articles, err := client.Fetch(context.Background(), "markets")
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}

	if gotQuery != "markets" {
		t.Fatalf("expected q=markets, got %s", gotQuery)
	}
	if gotKey != "test-key" {
		t.Fatalf("expected api key header, got %s", gotKey)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Source != "NewsAPI - Reuters" {
		t.Fatalf("unexpected source: %s", first.Source)
	}
	if first.Author != "Jane Doe" {
		t.Fatalf("unexpected author: %s", first.Author)
	}
	if first.Category != domain.DefaultCategory {
		t.Fatalf("expected default category, got %s", first.Category)
	}
	want := time.Date(2026, 2, 26, 12, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Fatalf("unexpected publishedAt: %v", first.PublishedAt)
	}

	second := articles[1]
	if second.Author != domain.UnknownAuthor {
		t.Fatalf("expected Unknown author, got %s", second.Author)
	}
	if second.Source != "NewsAPI - Unknown" {
		t.Fatalf("expected Unknown source name, got %s", second.Source)
	}
	if !second.PublishedAt.IsZero() {
		t.Fatalf("expected zero publishedAt for bad date, got %v", second.PublishedAt)
	}
}

func TestNewsAPIFetchServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewNewsAPIClient(srv.URL, "test-key", 10, srv.Client())
	if _, err := client.Fetch(context.Background(), "markets"); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}

func TestNewsAPIFetchMalformedPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	client := NewNewsAPIClient(srv.URL, "test-key", 10, srv.Client())
	if _, err := client.Fetch(context.Background(), "markets"); err == nil {
		t.Fatalf("expected decode error for malformed payload")
	}
}
