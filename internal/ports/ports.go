package ports

import (
	"context"
	"errors"

	"MarketScanner/internal/domain"
)

// ErrNotFound is returned by stores when no article exists for a URL.
var ErrNotFound = errors.New("article not found")

// NewsProvider pulls articles matching a query from one upstream source.
// Implementations return an explicit error; the aggregation boundary
// collapses failures to an empty result.
type NewsProvider interface {
	Name() string
	Fetch(ctx context.Context, query string) ([]domain.RawArticle, error)
}

// ArticleStore is the narrow persistence surface the reconciler operates on.
// FindByURL reports ErrNotFound when the URL is absent.
type ArticleStore interface {
	FindByURL(ctx context.Context, url string) (domain.StoredArticle, error)
	Insert(ctx context.Context, article domain.StoredArticle) (domain.StoredArticle, error)
	Update(ctx context.Context, article domain.StoredArticle) (domain.StoredArticle, error)
	ListRecent(ctx context.Context, limit int) ([]domain.StoredArticle, error)
}

// Annotator computes AI fields for one article. It never fails: call or
// parse problems degrade to a default result inside the implementation.
type Annotator interface {
	Annotate(ctx context.Context, article domain.RawArticle) domain.AnnotationResult
}

// ContentFetcher loads and cleans the page body for articles whose provider
// response carried no content.
type ContentFetcher interface {
	FetchContent(ctx context.Context, url string) (title, text string, err error)
}

// Scheduler re-runs a job on a fixed cadence.
type Scheduler interface {
	Start(ctx context.Context, job func()) error
	Stop(ctx context.Context) error
}

// Aggregator fans a query out to every provider and merges the results.
type Aggregator interface {
	Aggregate(ctx context.Context, query string) []domain.RawArticle
}

// ArticleUpserter is the reconciler surface the pipeline drives.
type ArticleUpserter interface {
	UpsertStructural(ctx context.Context, raw domain.RawArticle) (domain.StoredArticle, error)
	UpsertAnnotation(ctx context.Context, url string, res domain.AnnotationResult) (domain.StoredArticle, error)
}
