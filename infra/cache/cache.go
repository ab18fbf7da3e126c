// Package cache provides the in-memory and Redis quote caches.
package cache

import quotecache "github.com/amirasaad/tokenswap/pkg/cache"

var (
	_ quotecache.QuoteCache = (*MemoryCache)(nil)
	_ quotecache.QuoteCache = (*RedisQuoteCache)(nil)
)
