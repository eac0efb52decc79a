package provider

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"MarketScanner/internal/domain"
	"MarketScanner/internal/ports"
)

const cacheCapacity = 100

// Cached memoizes one provider's successful results per query so repeated
// refreshes inside the TTL window do not spend the provider's quota again.
// Failed fetches are not cached.
type Cached struct {
	inner ports.NewsProvider
	cache *ttlcache.Cache[string, []domain.RawArticle]
}

var _ ports.NewsProvider = (*Cached)(nil)

// NewCached wraps a provider with a per-query result cache.
func NewCached(inner ports.NewsProvider, ttl time.Duration) *Cached {
	cache := ttlcache.New(
		ttlcache.WithTTL[string, []domain.RawArticle](ttl),
		ttlcache.WithCapacity[string, []domain.RawArticle](cacheCapacity),
		ttlcache.WithDisableTouchOnHit[string, []domain.RawArticle](),
	)
	go cache.Start()
	return &Cached{inner: inner, cache: cache}
}

// Name reports the wrapped provider's name.
func (c *Cached) Name() string {
	return c.inner.Name()
}

// Fetch returns the cached result for the query when one is still fresh and
// delegates to the wrapped provider otherwise.
func (c *Cached) Fetch(ctx context.Context, query string) ([]domain.RawArticle, error) {
	if item := c.cache.Get(query); item != nil {
		return item.Value(), nil
	}

	articles, err := c.inner.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	c.cache.Set(query, articles, ttlcache.DefaultTTL)
	return articles, nil
}
