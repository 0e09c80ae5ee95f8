package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	env "github.com/netflix/go-env"
)

const (
	// RedirectDelay is the time to wait before redirecting the user after a successful action.
	RedirectDelay = 1 * time.Second

	TailwindCSSURL = "https://cdn.jsdelivr.net/npm/tailwindcss@2.2.19/dist/tailwind.min.css"
	HTMXURL        = "https://unpkg.com/htmx.org@2.0.4"

	// SearchPageSize is the number of hits requested per page from the search service.
	SearchPageSize = 20

	// SearchSessionTTL bounds how long an idle search session is kept.
	SearchSessionTTL = 30 * time.Minute

	// SearchFetchLockTTL bounds how long a page fetch may hold the in-flight lock.
	SearchFetchLockTTL = 15 * time.Second

	// VehicleReportTTL is how long a decoded VIN report is cached.
	VehicleReportTTL = 24 * time.Hour

	// MarketComparablesTTL is how long a make/model/year price summary is cached.
	MarketComparablesTTL = 1 * time.Hour

	// HistoryRetention is how long recent searches are kept before pruning.
	HistoryRetention = 90 * 24 * time.Hour
)

// Config holds everything read from the environment at startup.
type Config struct {
	ServerPort      string        `env:"PORT,default=8000"`
	Environment     string        `env:"APP_ENV,default=development"`
	ServiceName     string        `env:"SERVICE_NAME,default=deal-drive"`
	RateLimitMax    int           `env:"RATE_LIMIT_MAX,default=120"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW,default=1m"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT,default=30s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT,default=30s"`

	DatabaseURL string `env:"DATABASE_URL,default=file:deal-drive.db?_busy_timeout=5000"`

	RedisAddress  string `env:"REDIS_ADDRESS"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	TypesenseURL        string        `env:"TYPESENSE_URL,default=http://localhost:8108"`
	TypesenseAPIKey     string        `env:"TYPESENSE_API_KEY"`
	TypesenseCollection string        `env:"TYPESENSE_COLLECTION,default=listings"`
	TypesenseTimeout    time.Duration `env:"TYPESENSE_TIMEOUT,default=5s"`

	// SearchFilterDataSources turns on the data source clause in compiled filters.
	SearchFilterDataSources bool `env:"SEARCH_FILTER_DATA_SOURCES,default=false"`

	JWTSecret string `env:"JWT_SECRET"`

	VINDecoderURL     string        `env:"VIN_DECODER_URL,default=https://vpic.nhtsa.dot.gov"`
	VINDecoderTimeout time.Duration `env:"VIN_DECODER_TIMEOUT,default=8s"`

	OTelEnabled      bool    `env:"OTEL_ENABLED,default=false"`
	OTelEndpoint     string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT,default=http://localhost:4318"`
	OTelSampleRatio  float64 `env:"OTEL_SAMPLE_RATIO,default=1.0"`
	HealthCheckSpec  string  `env:"HEALTH_CHECK_SPEC,default=@every 5m"`
	HistoryPruneSpec string  `env:"HISTORY_PRUNE_SPEC,default=@daily"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// validate adjusts values to safe ranges and rejects settings that cannot work.
func validate(cfg *Config) error {
	if cfg.RateLimitMax < 1 {
		cfg.RateLimitMax = 1
	}
	if cfg.OTelSampleRatio < 0 {
		cfg.OTelSampleRatio = 0
	}
	if cfg.OTelSampleRatio > 1 {
		cfg.OTelSampleRatio = 1
	}
	cfg.TypesenseURL = strings.TrimRight(cfg.TypesenseURL, "/")
	cfg.VINDecoderURL = strings.TrimRight(cfg.VINDecoderURL, "/")

	if cfg.TypesenseCollection == "" {
		return errors.New("TYPESENSE_COLLECTION must not be empty")
	}
	if cfg.Environment == "production" && cfg.JWTSecret == "" {
		return errors.New("JWT_SECRET is required in production")
	}
	return nil
}

// IsDevelopment reports whether the server runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// UsesRedis reports whether search sessions should be kept in Redis.
func (c *Config) UsesRedis() bool {
	return c.RedisAddress != ""
}
