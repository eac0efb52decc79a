package aggregator

import (
	"context"
	"log/slog"
	"sync"

	"MarketScanner/internal/domain"
	"MarketScanner/internal/ports"
	"MarketScanner/internal/provider"
)

// Aggregator fans a query out to every registered provider and concatenates
// the results. A failing provider contributes an empty slice; the distinction
// between "no data" and "failed" exists only as a logged warning here.
type Aggregator struct {
	registry *provider.Registry
	logger   *slog.Logger
}

// New wires the provider registry.
func New(registry *provider.Registry, logger *slog.Logger) *Aggregator {
	return &Aggregator{registry: registry, logger: logger}
}

// Aggregate invokes all providers concurrently and returns their combined
// articles in provider-registration order. It waits for the slowest provider;
// no partial-result short-circuiting is performed. Cross-provider duplicates
// are kept as-is.
func (a *Aggregator) Aggregate(ctx context.Context, query string) []domain.RawArticle {
	providers := a.registry.All()
	if len(providers) == 0 {
		return nil
	}

	results := make([][]domain.RawArticle, len(providers))
	var wg sync.WaitGroup

	for i, p := range providers {
		wg.Add(1)
		go func(i int, p ports.NewsProvider) {
			defer wg.Done()
			articles, err := p.Fetch(ctx, query)
			if err != nil {
				a.warn("provider fetch failed", "provider", p.Name(), "query", query, "error", err)
				return
			}
			results[i] = articles
		}(i, p)
	}

	wg.Wait()

	var combined []domain.RawArticle
	for i, batch := range results {
		a.debug("provider settled", "provider", providers[i].Name(), "count", len(batch))
		combined = append(combined, batch...)
	}

	return combined
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}
