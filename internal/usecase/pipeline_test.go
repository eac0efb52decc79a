package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"MarketScanner/internal/domain"
	"MarketScanner/internal/ports"
	"MarketScanner/internal/reconcile"
)

type fakeAggregator struct {
	batches [][]domain.RawArticle
	calls   int
}

func (f *fakeAggregator) Aggregate(ctx context.Context, query string) []domain.RawArticle {
	if f.calls >= len(f.batches) {
		return nil
	}
	batch := f.batches[f.calls]
	f.calls++
	return batch
}

type fakeAnnotator struct {
	result domain.AnnotationResult
	calls  int
}

func (f *fakeAnnotator) Annotate(ctx context.Context, article domain.RawArticle) domain.AnnotationResult {
	f.calls++
	return f.result
}

type fakeFetcher struct {
	title string
	text  string
	err   error
	calls int
}

func (f *fakeFetcher) FetchContent(ctx context.Context, url string) (string, string, error) {
	f.calls++
	return f.title, f.text, f.err
}

// memStore mirrors the persistence semantics the reconciler needs, keyed by
// URL, without a database.
type memStore struct {
	nextID  int64
	byURL   map[string]domain.StoredArticle
	failURL string
}

var _ ports.ArticleStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{nextID: 1, byURL: map[string]domain.StoredArticle{}}
}

func (m *memStore) FindByURL(ctx context.Context, url string) (domain.StoredArticle, error) {
	if url == m.failURL {
		return domain.StoredArticle{}, errors.New("store unreachable")
	}
	if a, ok := m.byURL[url]; ok {
		return a, nil
	}
	return domain.StoredArticle{}, ports.ErrNotFound
}

func (m *memStore) Insert(ctx context.Context, article domain.StoredArticle) (domain.StoredArticle, error) {
	article.ID = m.nextID
	m.nextID++
	article.CreatedAt = time.Now()
	article.UpdatedAt = article.CreatedAt
	m.byURL[article.URL] = article
	return article, nil
}

func (m *memStore) Update(ctx context.Context, article domain.StoredArticle) (domain.StoredArticle, error) {
	article.UpdatedAt = time.Now()
	m.byURL[article.URL] = article
	return article, nil
}

func (m *memStore) ListRecent(ctx context.Context, limit int) ([]domain.StoredArticle, error) {
	var out []domain.StoredArticle
	for _, a := range m.byURL {
		out = append(out, a)
	}
	return out, nil
}

func raw(url, title string) domain.RawArticle {
	return domain.RawArticle{
		Title:       title,
		Description: "Description text.",
		Content:     "Body text.",
		URL:         url,
		Source:      "NewsAPI - Reuters",
		Author:      "Jane Doe",
		Category:    domain.DefaultCategory,
	}
}

func TestRefreshArticlesAnnotatesAndStores(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	annotator := &fakeAnnotator{result: domain.AnnotationResult{
		SentimentScore: 0.6,
		Summary:        "Summarized.",
		Keywords:       []string{"ai", "markets"},
	}}

	pipeline := NewPipeline(PipelineDeps{
		Aggregator: &fakeAggregator{batches: [][]domain.RawArticle{{raw("https://x.com/1", "Story")}}},
		Upserter:   reconcile.New(store),
		Annotator:  annotator,
	})

	got, err := pipeline.RefreshArticles(context.Background(), "markets")
	if err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 stored article, got %d", len(got))
	}

	stored := got[0]
	if stored.ID == 0 {
		t.Fatalf("expected server-assigned id")
	}
	if stored.Status() != domain.StatusAnnotated {
		t.Fatalf("expected annotated article, got %s", stored.Status())
	}
	if *stored.SentimentScore != 0.6 || *stored.AISummary != "Summarized." {
		t.Fatalf("unexpected annotation: %+v", stored)
	}
	if annotator.calls != 1 {
		t.Fatalf("expected 1 annotation call, got %d", annotator.calls)
	}

	persisted := store.byURL["https://x.com/1"]
	if persisted.ID != stored.ID {
		t.Fatalf("id changed between structural and annotation writes")
	}
}

func TestRefreshArticlesSecondFetchKeepsAnnotation(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	annotator := &fakeAnnotator{result: domain.AnnotationResult{
		SentimentScore: 0.6,
		Summary:        "Summarized.",
		Keywords:       []string{"ai"},
	}}

	first := NewPipeline(PipelineDeps{
		Aggregator: &fakeAggregator{batches: [][]domain.RawArticle{{raw("https://x.com/1", "Original title")}}},
		Upserter:   reconcile.New(store),
		Annotator:  annotator,
	})
	if _, err := first.RefreshArticles(context.Background(), "markets"); err != nil {
		t.Fatalf("first refresh: %v", err)
	}

	// Second run with no annotator, as if credentials went missing.
	second := NewPipeline(PipelineDeps{
		Aggregator: &fakeAggregator{batches: [][]domain.RawArticle{{raw("https://x.com/1", "Rewritten title")}}},
		Upserter:   reconcile.New(store),
	})
	got, err := second.RefreshArticles(context.Background(), "markets")
	if err != nil {
		t.Fatalf("second refresh: %v", err)
	}

	stored := got[0]
	if stored.Title != "Rewritten title" {
		t.Fatalf("expected refreshed title, got %s", stored.Title)
	}
	if stored.SentimentScore == nil || *stored.SentimentScore != 0.6 {
		t.Fatalf("annotation from first run was lost: %+v", stored)
	}
}

func TestRefreshArticlesContinuesPastPersistenceFailure(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	store.failURL = "https://x.com/broken"

	pipeline := NewPipeline(PipelineDeps{
		Aggregator: &fakeAggregator{batches: [][]domain.RawArticle{{
			raw("https://x.com/broken", "Fails"),
			raw("https://x.com/ok", "Survives"),
		}}},
		Upserter: reconcile.New(store),
	})

	got, err := pipeline.RefreshArticles(context.Background(), "markets")
	if err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 surviving article, got %d", len(got))
	}
	if got[0].URL != "https://x.com/ok" {
		t.Fatalf("unexpected survivor: %s", got[0].URL)
	}
}

func TestRefreshArticlesSkipsAnnotationWithoutAnnotator(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	pipeline := NewPipeline(PipelineDeps{
		Aggregator: &fakeAggregator{batches: [][]domain.RawArticle{{raw("https://x.com/1", "Story")}}},
		Upserter:   reconcile.New(store),
	})

	got, err := pipeline.RefreshArticles(context.Background(), "markets")
	if err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	if got[0].Status() != domain.StatusUnannotated {
		t.Fatalf("expected unannotated article, got %s", got[0].Status())
	}
}

func TestRefreshArticlesEnrichesEmptyContent(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	fetcher := &fakeFetcher{title: "Page title", text: "Extracted body."}

	article := raw("https://x.com/thin", "")
	article.Content = ""

	pipeline := NewPipeline(PipelineDeps{
		Aggregator: &fakeAggregator{batches: [][]domain.RawArticle{{article}}},
		Upserter:   reconcile.New(store),
		Fetcher:    fetcher,
	})

	got, err := pipeline.RefreshArticles(context.Background(), "markets")
	if err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected 1 fetch, got %d", fetcher.calls)
	}
	if got[0].Content != "Extracted body." {
		t.Fatalf("expected enriched content, got %q", got[0].Content)
	}
	if got[0].Title != "Page title" {
		t.Fatalf("expected page title backfill, got %q", got[0].Title)
	}
}

func TestRefreshArticlesSkipsEmptyURL(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	pipeline := NewPipeline(PipelineDeps{
		Aggregator: &fakeAggregator{batches: [][]domain.RawArticle{{
			{Title: "no url"},
			raw("https://x.com/1", "Story"),
		}}},
		Upserter: reconcile.New(store),
	})

	got, err := pipeline.RefreshArticles(context.Background(), "markets")
	if err != nil {
		t.Fatalf("refresh returned error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 article, got %d", len(got))
	}
}
