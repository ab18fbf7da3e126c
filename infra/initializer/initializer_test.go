package initializer

import (
	"bytes"
	"io"
	"log/slog"
	"testing"
	"time"

	infra_eventbus "github.com/amirasaad/tokenswap/infra/eventbus"
	infra_provider "github.com/amirasaad/tokenswap/infra/provider"
	"github.com/amirasaad/tokenswap/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func baseConfig() *config.App {
	return &config.App{
		Log:       &config.Log{Format: "text"},
		Catalog:   &config.Catalog{Source: "static", CacheDriver: "none", CacheTTL: time.Minute},
		Execution: &config.Execution{StubLatency: time.Millisecond},
		Redis:     &config.Redis{URL: "redis://localhost:6379/0"},
		EventBus:  &config.EventBus{Driver: "memory", Stream: "s", Group: "g"},
	}
}

func TestBuildDefaults(t *testing.T) {
	deps, err := Build(baseConfig(), discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &infra_provider.StaticFeed{}, deps.Fetcher)
	assert.Nil(t, deps.Invalidator)
	assert.IsType(t, &infra_provider.StubExecutor{}, deps.Executor)
	assert.IsType(t, &infra_eventbus.MemoryEventBus{}, deps.EventBus)
}

func TestBuildMemoryCacheWrapsFeed(t *testing.T) {
	cfg := baseConfig()
	cfg.Catalog.CacheDriver = "memory"

	deps, err := Build(cfg, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &infra_provider.CachedFeed{}, deps.Fetcher)
	assert.NotNil(t, deps.Invalidator)
	require.Len(t, deps.Closers, 1)
	for _, c := range deps.Closers {
		assert.NoError(t, c.Close())
	}
}

func TestBuildRemoteExecutor(t *testing.T) {
	cfg := baseConfig()
	cfg.Execution.URL = "http://localhost:9/api"

	deps, err := Build(cfg, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &infra_provider.ExecutionClient{}, deps.Executor)
}

func TestBuildRejectsUnknownDrivers(t *testing.T) {
	cases := map[string]func(*config.App){
		"catalog source": func(c *config.App) { c.Catalog.Source = "ftp" },
		"cache driver":   func(c *config.App) { c.Catalog.CacheDriver = "memcached" },
		"event bus":      func(c *config.App) { c.EventBus.Driver = "kafka" },
		"http no url":    func(c *config.App) { c.Catalog.Source = "http"; c.Catalog.URL = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := baseConfig()
			mutate(cfg)
			deps, err := Build(cfg, discardLogger())
			require.Error(t, err)
			assert.Nil(t, deps)
		})
	}
}

func TestInitEventBus_RedisRequiresURL(t *testing.T) {
	cfg := baseConfig()
	cfg.EventBus.Driver = "redis"
	cfg.Redis.URL = ""

	_, err := initEventBus(cfg, discardLogger())
	require.Error(t, err)
}

func TestInitEventBus_RedisConnectionErrorFallsBackToMemory(t *testing.T) {
	cfg := baseConfig()
	cfg.EventBus.Driver = "redis"
	cfg.Redis.URL = "redis://127.0.0.1:1"

	bus, err := initEventBus(cfg, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &infra_eventbus.MemoryEventBus{}, bus)
}

func TestRedisOptions(t *testing.T) {
	opt, err := redisOptions(&config.Redis{URL: "redis://localhost:6380/2", PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opt.Addr)
	assert.Equal(t, 2, opt.DB)
	assert.Equal(t, 7, opt.PoolSize)
	assert.Equal(t, time.Second, opt.DialTimeout)

	_, err = redisOptions(&config.Redis{URL: "not a url"})
	require.Error(t, err)
}

func TestNewLoggerWritesStructuredFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&config.Log{Format: "json", Prefix: "[test]"}, &buf)
	logger.Info("hello", "component", "catalog")

	out := buf.String()
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "catalog")
}
