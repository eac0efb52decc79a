package newsfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MarketScanner/internal/domain"
)

func TestTavilyFetch(t *testing.T) {
	t.Parallel()

	var gotReq tavilyRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"query": "chips",
			"results": [
				{
					"title": "Chipmaker expands fab",
					"url": "https://example.com/fab",
					"content": "A short search snippet.",
					"raw_content": "",
					"published_date": "2026-02-25"
				}
			]
		}`))
	}))
	defer srv.Close()

	client := NewTavilyClient(srv.URL, "tv-key", 5, srv.Client())
	articles, err := client.Fetch(context.Background(), "chips")
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}

	if gotAuth != "Bearer tv-key" {
		t.Fatalf("unexpected authorization header: %s", gotAuth)
	}
	if gotReq.Topic != "news" {
		t.Fatalf("expected topic=news, got %s", gotReq.Topic)
	}
	if gotReq.MaxResults != 5 {
		t.Fatalf("expected max_results=5, got %d", gotReq.MaxResults)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}

	article := articles[0]
	if article.Description != "A short search snippet." {
		t.Fatalf("unexpected description: %s", article.Description)
	}
	if article.Content != "" {
		t.Fatalf("expected empty content for snippet-only result, got %q", article.Content)
	}
	if article.Author != domain.UnknownAuthor {
		t.Fatalf("expected Unknown author, got %s", article.Author)
	}
	want := time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC)
	if !article.PublishedAt.Equal(want) {
		t.Fatalf("unexpected publishedAt: %v", article.PublishedAt)
	}
}

func TestParseTavilyDate(t *testing.T) {
	t.Parallel()

	if got := parseTavilyDate("2026-02-25"); got.IsZero() {
		t.Fatalf("expected date-only layout to parse")
	}
	if got := parseTavilyDate("2026-02-25T10:30:00Z"); got.IsZero() {
		t.Fatalf("expected RFC3339 layout to parse")
	}
	if got := parseTavilyDate("no date at all"); !got.IsZero() {
		t.Fatalf("expected zero time for garbage, got %v", got)
	}
	if got := parseTavilyDate(""); !got.IsZero() {
		t.Fatalf("expected zero time for empty value, got %v", got)
	}
}

func TestTavilyFetchServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewTavilyClient(srv.URL, "bad-key", 5, srv.Client())
	if _, err := client.Fetch(context.Background(), "chips"); err == nil {
		t.Fatalf("expected error for non-200 status")
	}
}
