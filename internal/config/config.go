package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the rebuild configuration.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Redis    RedisConfig    `toml:"redis"`
	Postgres PostgresConfig `toml:"postgres"`
}

// StorageConfig locates the JSON document tree.
type StorageConfig struct {
	Root    string `toml:"root"`    // Storage root, e.g. /var/www/hockey-json
	Workers int    `toml:"workers"` // Parallel game-file reads per season
}

// RedisConfig controls the Redis cache and rebuild stream sinks.
type RedisConfig struct {
	URL      string `toml:"url"`       // Empty disables both Redis sinks
	CacheTTL string `toml:"cache_ttl"` // e.g. "24h"; "0" keeps keys forever
	Stream   string `toml:"stream"`    // Stream receiving rebuild events
	Cache    bool   `toml:"cache"`     // Mirror derived documents
	Events   bool   `toml:"events"`    // Publish rebuild events
}

// PostgresConfig controls the leaderboard mirror.
type PostgresConfig struct {
	DSN string `toml:"dsn"` // Empty disables the mirror
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Root:    "/var/www/hockey-json",
			Workers: 4,
		},
		Redis: RedisConfig{
			URL:      "",
			CacheTTL: "0",
			Stream:   "rinkboard.rebuilds",
			Cache:    true,
			Events:   true,
		},
	}
}

// Load reads a TOML file over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv() error {
	c.Storage.Root = getEnv("RINKBOARD_ROOT", c.Storage.Root)
	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)
	c.Redis.CacheTTL = getEnv("RINKBOARD_CACHE_TTL", c.Redis.CacheTTL)
	c.Postgres.DSN = getEnv("RINKBOARD_DSN", c.Postgres.DSN)

	if v := os.Getenv("RINKBOARD_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer format for RINKBOARD_WORKERS: %w", err)
		}
		c.Storage.Workers = n
	}
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Storage.Root == "" {
		return fmt.Errorf("storage root is required")
	}
	if c.Storage.Workers < 1 {
		return fmt.Errorf("workers must be positive: %d", c.Storage.Workers)
	}
	ttl, err := c.GetCacheTTL()
	if err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Redis.CacheTTL, err)
	}
	if ttl < 0 {
		return fmt.Errorf("cache TTL cannot be negative: %s", c.Redis.CacheTTL)
	}
	return nil
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	if c.Redis.CacheTTL == "" || c.Redis.CacheTTL == "0" {
		return 0, nil
	}
	return time.ParseDuration(c.Redis.CacheTTL)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
