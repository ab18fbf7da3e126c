package provider

import (
	"context"
	"log/slog"
	"time"

	"github.com/amirasaad/tokenswap/pkg/cache"
	"github.com/amirasaad/tokenswap/pkg/catalog"
	"github.com/amirasaad/tokenswap/pkg/domain"
)

const quotesKey = "all"

// CachedFeed serves quotes from cache and falls through to next on a miss.
type CachedFeed struct {
	next   catalog.Fetcher
	cache  cache.QuoteCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedFeed wraps next with store.
func NewCachedFeed(next catalog.Fetcher, store cache.QuoteCache, ttl time.Duration, logger *slog.Logger) *CachedFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedFeed{
		next:   next,
		cache:  store,
		ttl:    ttl,
		logger: logger.With("component", "cached-feed"),
	}
}

// Fetch returns cached quotes when present. Cache errors are logged and
// treated as misses.
func (c *CachedFeed) Fetch(ctx context.Context) ([]domain.Quote, error) {
	if quotes, err := c.cache.Get(ctx, quotesKey); err == nil && quotes != nil {
		c.logger.Debug("Cache hit for quotes", "count", len(quotes))
		return quotes, nil
	} else if err != nil {
		c.logger.Error("Error getting quotes from cache", "error", err)
	}

	c.logger.Debug("Cache miss for quotes, fetching from next provider")
	quotes, err := c.next.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, quotesKey, quotes, c.ttl); err != nil {
		c.logger.Error("Error setting quotes cache", "error", err)
	}
	return quotes, nil
}

// Invalidate drops the cached quotes so the next Fetch reaches the source.
func (c *CachedFeed) Invalidate(ctx context.Context) error {
	return c.cache.Delete(ctx, quotesKey)
}

var _ catalog.Fetcher = (*CachedFeed)(nil)
