package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	// RateEndpoints are the mirror endpoints tried in fixed priority order.
	RateEndpoints []string
	// HTTPTimeout bounds each outbound rate-endpoint request.
	HTTPTimeout time.Duration

	CacheDriver string // "memory" or "redis"
	CacheTTL    time.Duration
	RedisAddr   string

	// StalenessThreshold drives scheduled refetching.
	StalenessThreshold time.Duration
	// UpdateInterval is how often the scheduler checks for staleness.
	UpdateInterval time.Duration

	// APIRateLimit is a ulule/limiter formatted rate, e.g. "120-M".
	APIRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("RATE_ENDPOINTS", strings.Join(defaultRateEndpoints, ","))
	viper.SetDefault("RATE_HTTP_TIMEOUT", "12s")
	viper.SetDefault("CACHE_DRIVER", "memory")
	viper.SetDefault("CACHE_TTL", "1h")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("STALENESS_THRESHOLD", "1h")
	viper.SetDefault("UPDATE_INTERVAL", "1h")
	viper.SetDefault("API_RATE_LIMIT", "120-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.RateEndpoints = splitAndTrim(viper.GetString("RATE_ENDPOINTS"))
	if len(cfg.RateEndpoints) == 0 {
		cfg.RateEndpoints = defaultRateEndpoints
		log.Println("Warning: RATE_ENDPOINTS was empty. Using built-in mirror list.")
	}

	cfg.HTTPTimeout = durationOrDefault("RATE_HTTP_TIMEOUT", 12*time.Second)
	cfg.CacheTTL = durationOrDefault("CACHE_TTL", time.Hour)
	cfg.StalenessThreshold = durationOrDefault("STALENESS_THRESHOLD", time.Hour)
	cfg.UpdateInterval = durationOrDefault("UPDATE_INTERVAL", time.Hour)

	cfg.CacheDriver = viper.GetString("CACHE_DRIVER")
	if cfg.CacheDriver != "memory" && cfg.CacheDriver != "redis" {
		log.Printf("Warning: Invalid CACHE_DRIVER ('%s'). Defaulting to memory.\n", cfg.CacheDriver)
		cfg.CacheDriver = "memory"
	}
	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.APIRateLimit = viper.GetString("API_RATE_LIMIT")

	return cfg, nil
}

// defaultRateEndpoints are free public mirrors of the same dataset, tried in
// this order.
var defaultRateEndpoints = []string{
	"https://cdn.jsdelivr.net/npm/@fawazahmed0/currency-api@latest/v1",
	"https://latest.currency-api.pages.dev/v1",
	"https://cdn.jsdelivr.net/gh/fawazahmed0/currency-api@1/latest",
}

func durationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback)
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
