package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the first .env file found among envFilePath (searching parent
// directories), falls back to ./.env, then processes the environment.
func Load(envFilePath ...string) (*App, error) {
	logger := slog.Default()
	logger.Info("Loading environment variables")

	for _, path := range envFilePath {
		foundPath, err := FindEnvFile(path)
		if err != nil {
			logger.Debug("Environment file not found", "path", path, "error", err)
			continue
		}
		if err := godotenv.Load(foundPath); err != nil {
			logger.Error("Failed to load environment file", "path", foundPath, "error", err)
			continue
		}
		logger.Info("Loaded environment from file", "path", foundPath)
		return loadFromEnv()
	}

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found in current directory")
	}
	return loadFromEnv()
}

func loadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Default().Info("App config loaded",
		"env", cfg.Env,
		"catalog_source", cfg.Catalog.Source,
		"catalog_url", cfg.Catalog.URL,
		"catalog_cache", cfg.Catalog.CacheDriver,
		"execution_url", cfg.Execution.URL,
		"execution_api_key", maskValue(cfg.Execution.APIKey),
		"event_bus", cfg.EventBus.Driver,
		"redis", maskValue(cfg.Redis.URL),
		"rate_limit_max_requests", cfg.RateLimit.MaxRequests,
		"rate_limit_window", cfg.RateLimit.Window,
	)
	return &cfg, nil
}

// Validate rejects unknown driver names.
func (a *App) Validate() error {
	if err := oneOf("CATALOG_SOURCE", a.Catalog.Source, "static", "http"); err != nil {
		return err
	}
	if err := oneOf("CATALOG_CACHE_DRIVER", a.Catalog.CacheDriver, "none", "memory", "redis"); err != nil {
		return err
	}
	return oneOf("EVENT_BUS_DRIVER", a.EventBus.Driver, "memory", "redis")
}

func oneOf(key, value string, allowed ...string) error {
	for _, v := range allowed {
		if strings.EqualFold(value, v) {
			return nil
		}
	}
	return fmt.Errorf("config: %s must be one of %s, got %q", key, strings.Join(allowed, ", "), value)
}

// Addr returns host:port for the HTTP listener.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func maskValue(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
