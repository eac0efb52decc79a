package reconcile

import (
	"context"
	"errors"
	"fmt"

	"MarketScanner/internal/domain"
	"MarketScanner/internal/ports"
)

// Reconciler is the persistence gate for articles. It performs explicit
// find-then-insert-or-update upserts keyed by URL, with one hard rule:
// structural re-fetches never regress previously computed AI fields to null.
type Reconciler struct {
	store ports.ArticleStore
}

// New wires an article store.
func New(store ports.ArticleStore) *Reconciler {
	return &Reconciler{store: store}
}

// UpsertStructural inserts a new row for the raw article's URL or, if one
// exists, updates only the provider-owned fields. SentimentScore, AISummary
// and Keywords are carried over untouched, so AI work already done survives
// any later re-fetch. Idempotent for identical input, aside from UpdatedAt.
func (r *Reconciler) UpsertStructural(ctx context.Context, raw domain.RawArticle) (domain.StoredArticle, error) {
	if raw.URL == "" {
		return domain.StoredArticle{}, fmt.Errorf("article has no url")
	}

	existing, err := r.store.FindByURL(ctx, raw.URL)
	if errors.Is(err, ports.ErrNotFound) {
		var fresh domain.StoredArticle
		fresh.ApplyStructural(raw)
		stored, err := r.store.Insert(ctx, fresh)
		if err != nil {
			return domain.StoredArticle{}, fmt.Errorf("insert article %s: %w", raw.URL, err)
		}
		return stored, nil
	}
	if err != nil {
		return domain.StoredArticle{}, fmt.Errorf("find article %s: %w", raw.URL, err)
	}

	existing.ApplyStructural(raw)
	stored, err := r.store.Update(ctx, existing)
	if err != nil {
		return domain.StoredArticle{}, fmt.Errorf("update article %s: %w", raw.URL, err)
	}
	return stored, nil
}

// UpsertAnnotation sets the AI fields for the article stored under url. The
// annotation result is always fully populated, so the transition is strictly
// unannotated-to-annotated (or annotated-to-reannotated); no path leads back
// to null fields. A missing row is reported as ports.ErrNotFound and nothing
// is written: annotation data alone never creates a partial article.
func (r *Reconciler) UpsertAnnotation(ctx context.Context, url string, res domain.AnnotationResult) (domain.StoredArticle, error) {
	existing, err := r.store.FindByURL(ctx, url)
	if errors.Is(err, ports.ErrNotFound) {
		return domain.StoredArticle{}, fmt.Errorf("annotate %s: %w", url, ports.ErrNotFound)
	}
	if err != nil {
		return domain.StoredArticle{}, fmt.Errorf("find article %s: %w", url, err)
	}

	existing.ApplyAnnotation(res)
	stored, err := r.store.Update(ctx, existing)
	if err != nil {
		return domain.StoredArticle{}, fmt.Errorf("update annotation %s: %w", url, err)
	}
	return stored, nil
}
