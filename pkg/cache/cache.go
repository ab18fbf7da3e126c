// Package cache defines the quote cache contract implemented in infra/cache.
package cache

import (
	"context"
	"time"

	"github.com/amirasaad/tokenswap/pkg/domain"
)

// QuoteCache stores quote lists. Get returns nil, nil on a miss.
type QuoteCache interface {
	Get(ctx context.Context, key string) ([]domain.Quote, error)
	Set(ctx context.Context, key string, quotes []domain.Quote, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
