package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	Port                  string `mapstructure:"PORT"`
	LogLevel              string `mapstructure:"LOG_LEVEL"`
	FirecrawlAPIKey       string `mapstructure:"FIRECRAWL_API_KEY"`
	FirecrawlAPIURL       string `mapstructure:"FIRECRAWL_API_URL"`
	Country               string `mapstructure:"COUNTRY"`
	Currency              string `mapstructure:"CURRENCY"`
	CacheDBPath           string `mapstructure:"CACHE_DB_PATH"`
	CacheTTLMinutes       int    `mapstructure:"CACHE_TTL_MINUTES"`
	MaxConcurrentSearches int    `mapstructure:"MAX_CONCURRENT_SEARCHES"`
	RenderPages           bool   `mapstructure:"RENDER_PAGES"`
	DocsDir               string `mapstructure:"DOCS_DIR"`
}

var defaults = map[string]any{
	"PORT":                    "9090",
	"LOG_LEVEL":               "info",
	"FIRECRAWL_API_KEY":       "",
	"FIRECRAWL_API_URL":       "https://api.firecrawl.dev",
	"COUNTRY":                 "IN",
	"CURRENCY":                "INR",
	"CACHE_DB_PATH":           "./cache.db",
	"CACHE_TTL_MINUTES":       0, // disabled
	"MAX_CONCURRENT_SEARCHES": 3,
	"RENDER_PAGES":            false,
	"DOCS_DIR":                "./",
}

// Load reads configuration from envFile (if present) and the environment.
// Environment variables win over the file.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	// A missing .env file is fine; production is configured through the environment.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read %s: %w", envFile, err)
		}
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if cfg.MaxConcurrentSearches < 1 {
		cfg.MaxConcurrentSearches = 1
	}
	return &cfg, nil
}

// CacheEnabled reports whether search responses should be cached.
func (c *Config) CacheEnabled() bool {
	return c.CacheTTLMinutes > 0
}
