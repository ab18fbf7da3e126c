// Package initializer builds the application's adapters from configuration.
package initializer

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/amirasaad/tokenswap/infra/cache"
	infra_eventbus "github.com/amirasaad/tokenswap/infra/eventbus"
	infra_provider "github.com/amirasaad/tokenswap/infra/provider"
	"github.com/amirasaad/tokenswap/pkg/app"
	"github.com/amirasaad/tokenswap/pkg/catalog"
	"github.com/amirasaad/tokenswap/pkg/config"
	"github.com/amirasaad/tokenswap/pkg/domain/events"
	"github.com/amirasaad/tokenswap/pkg/eventbus"
	"github.com/amirasaad/tokenswap/pkg/submission"
	"github.com/redis/go-redis/v9"
)

// InitializeDependencies builds the catalog feed, the execution adapter and
// the event bus described by cfg.
func InitializeDependencies(cfg *config.App) (*app.Deps, error) {
	logger := setupLogger(cfg.Log)
	return Build(cfg, logger)
}

// Build is InitializeDependencies with a caller-provided logger.
func Build(cfg *config.App, logger *slog.Logger) (deps *app.Deps, err error) {
	deps = &app.Deps{Logger: logger}
	defer func() {
		if err != nil {
			for i := len(deps.Closers) - 1; i >= 0; i-- {
				_ = deps.Closers[i].Close()
			}
			deps = nil
		}
	}()

	fetcher, invalidator, closer, err := initFetcher(cfg, logger)
	if err != nil {
		return deps, fmt.Errorf("failed to initialize catalog feed: %w", err)
	}
	deps.Fetcher = fetcher
	if invalidator != nil {
		deps.Invalidator = invalidator
	}
	if closer != nil {
		deps.Closers = append(deps.Closers, closer)
	}

	deps.Executor = initExecutor(cfg.Execution, logger)

	bus, err := initEventBus(cfg, logger)
	if err != nil {
		return deps, fmt.Errorf("failed to initialize event bus: %w", err)
	}
	deps.EventBus = bus
	if c, ok := bus.(io.Closer); ok {
		deps.Closers = append(deps.Closers, c)
	}

	logger.Info("dependencies initialized",
		"catalog_source", cfg.Catalog.Source,
		"cache_driver", cfg.Catalog.CacheDriver,
		"event_bus", fmt.Sprintf("%T", bus),
		"execution", executionMode(cfg.Execution),
	)
	return deps, nil
}

// initFetcher returns the catalog feed, wrapped in a quote cache unless
// caching is disabled.
func initFetcher(cfg *config.App, logger *slog.Logger) (catalog.Fetcher, app.Invalidator, io.Closer, error) {
	var source catalog.Fetcher
	switch cfg.Catalog.Source {
	case "", "static":
		source = infra_provider.DefaultStaticFeed()
	case "http":
		if cfg.Catalog.URL == "" {
			return nil, nil, nil, fmt.Errorf("catalog source http requires CATALOG_URL")
		}
		source = infra_provider.NewPriceFeed(cfg.Catalog, logger)
	default:
		return nil, nil, nil, fmt.Errorf("unknown catalog source %q", cfg.Catalog.Source)
	}

	switch cfg.Catalog.CacheDriver {
	case "", "none":
		return source, nil, nil, nil
	case "memory":
		mc := cache.NewMemoryCache(time.Minute)
		feed := infra_provider.NewCachedFeed(source, mc, cfg.Catalog.CacheTTL, logger)
		return feed, feed, mc, nil
	case "redis":
		opt, err := redisOptions(cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		rc := cache.NewRedisQuoteCacheWithOptions(opt, cfg.Catalog.CachePrefix, logger)
		feed := infra_provider.NewCachedFeed(source, rc, cfg.Catalog.CacheTTL, logger)
		return feed, feed, rc, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown catalog cache driver %q", cfg.Catalog.CacheDriver)
	}
}

func redisOptions(cfg *config.Redis) (*redis.Options, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("redis URL is required")
	}
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}
	if cfg.DialTimeout > 0 {
		opt.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opt.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opt.WriteTimeout = cfg.WriteTimeout
	}
	return opt, nil
}

// initEventBus picks the bus driver. A Redis bus that cannot connect falls
// back to the in-memory bus so the session still works.
func initEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, error) {
	driver := ""
	if cfg.EventBus != nil {
		driver = cfg.EventBus.Driver
	}
	switch driver {
	case "", "memory":
		return infra_eventbus.NewWithMemory(logger), nil
	case "redis":
		if cfg.Redis == nil || cfg.Redis.URL == "" {
			return nil, fmt.Errorf("event bus driver redis requires REDIS_URL")
		}
		bus, err := infra_eventbus.NewWithRedis(
			cfg.Redis.URL,
			cfg.EventBus.Stream,
			cfg.EventBus.Group,
			events.EventTypes,
			logger,
		)
		if err != nil {
			logger.Warn("redis event bus unavailable, using memory bus", "error", err)
			return infra_eventbus.NewWithMemory(logger), nil
		}
		return bus, nil
	default:
		return nil, fmt.Errorf("unknown event bus driver %q", driver)
	}
}

func initExecutor(cfg *config.Execution, logger *slog.Logger) submission.Executor {
	if cfg == nil {
		cfg = &config.Execution{}
	}
	if cfg.URL == "" {
		return infra_provider.NewStubExecutor(cfg.StubLatency, logger)
	}
	return infra_provider.NewExecutionClient(cfg, logger)
}

func executionMode(cfg *config.Execution) string {
	if cfg == nil || cfg.URL == "" {
		return "stub"
	}
	return "remote"
}
