package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"MarketScanner/internal/domain"
	"MarketScanner/internal/ports"
)

// PipelineDeps wires all driven adapters into the refresh pipeline.
// Annotator and Fetcher are optional: a nil annotator skips AI annotation for
// the run (the fatal-credentials case), a nil fetcher skips page enrichment.
type PipelineDeps struct {
	Aggregator ports.Aggregator
	Upserter   ports.ArticleUpserter
	Annotator  ports.Annotator
	Fetcher    ports.ContentFetcher
	Logger     *slog.Logger
}

// Pipeline implements the article refresh workflow: aggregate, then per
// article a structural upsert followed by an annotation upsert.
type Pipeline struct {
	aggregator ports.Aggregator
	upserter   ports.ArticleUpserter
	annotator  ports.Annotator
	fetcher    ports.ContentFetcher
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		aggregator: deps.Aggregator,
		upserter:   deps.Upserter,
		annotator:  deps.Annotator,
		fetcher:    deps.Fetcher,
		logger:     deps.Logger,
	}
}

// RefreshArticles runs the whole pipeline for one query and returns every
// article that made it into the store. Articles are processed one at a time:
// structural upsert first, so the row exists before any AI fields are merged
// onto it. A single article's persistence failure is logged and skipped; the
// rest of the batch continues.
func (p *Pipeline) RefreshArticles(ctx context.Context, query string) ([]domain.StoredArticle, error) {
	if p.aggregator == nil || p.upserter == nil {
		return nil, fmt.Errorf("pipeline is not fully wired")
	}

	raw := p.aggregator.Aggregate(ctx, query)
	p.info("aggregated articles", "query", query, "count", len(raw))

	stored := make([]domain.StoredArticle, 0, len(raw))
	for _, article := range raw {
		if article.URL == "" {
			p.warn("skipping article without url", "title", article.Title)
			continue
		}

		p.enrich(ctx, &article)

		current, err := p.upserter.UpsertStructural(ctx, article)
		if err != nil {
			p.error("structural upsert failed", "url", article.URL, "error", err)
			continue
		}

		if p.annotator != nil {
			annotation := p.annotator.Annotate(ctx, article)
			annotated, err := p.upserter.UpsertAnnotation(ctx, article.URL, annotation)
			if err != nil {
				p.error("annotation upsert failed", "url", article.URL, "error", err)
			} else {
				current = annotated
			}
		}

		stored = append(stored, current)
	}

	return stored, nil
}

// enrich backfills the page body for articles whose provider returned no
// content. Failures are non-fatal; the article keeps what it has.
func (p *Pipeline) enrich(ctx context.Context, article *domain.RawArticle) {
	if p.fetcher == nil || article.Content != "" {
		return
	}

	title, text, err := p.fetcher.FetchContent(ctx, article.URL)
	if err != nil {
		p.debug("content fetch failed", "url", article.URL, "error", err)
		return
	}

	article.Content = text
	if article.Title == "" {
		article.Title = title
	}
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) error(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
