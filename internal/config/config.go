// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// APIKeyEnv is the environment variable holding the Polygon API key when
// the config file does not set one.
const APIKeyEnv = "POLYGON_API_KEY"

// DefaultEnvFile is loaded into the environment before the config file is
// expanded. A missing file is not an error.
const DefaultEnvFile = ".env"

// Config is the top-level application configuration.
type Config struct {
	Polygon  PolygonConfig  `yaml:"polygon"`
	Query    QueryConfig    `yaml:"query"`
	Search   SearchConfig   `yaml:"search"`
	Sessions SessionsConfig `yaml:"sessions"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PolygonConfig defines Polygon.io API settings.
type PolygonConfig struct {
	APIKey    string          `yaml:"api_key"`
	BaseURL   string          `yaml:"base_url"`
	Market    string          `yaml:"market"`
	Exchange  string          `yaml:"exchange"`
	PageSize  int             `yaml:"page_size"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig defines client-side rate limiting. A zero PerSecond
// disables the limiter; a zero DailyLimit disables the daily quota.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// QueryConfig defines query cache windows and background cache jobs.
type QueryConfig struct {
	ListingStaleTime time.Duration `yaml:"listing_stale_time"`
	SearchStaleTime  time.Duration `yaml:"search_stale_time"`
	GCTime           time.Duration `yaml:"gc_time"`
	GCInterval       time.Duration `yaml:"gc_interval"`
	WarmInterval     time.Duration `yaml:"warm_interval"` // 0 disables listing warm-up
	Retry            RetryConfig   `yaml:"retry"`
}

// RetryConfig defines retry with exponential backoff for failed queries.
type RetryConfig struct {
	MaxRetries int           `yaml:"max_retries"` // negative disables retries
	BaseDelay  time.Duration `yaml:"base_delay"`
	MaxDelay   time.Duration `yaml:"max_delay"`
	// RetryClientErrors retries 401 and 429 responses too. Default: true.
	RetryClientErrors *bool `yaml:"retry_client_errors"`
}

// Retries returns the effective retry count.
func (r RetryConfig) Retries() int {
	return max(r.MaxRetries, 0)
}

// ClientErrorsRetried reports whether 401 and 429 responses are retried.
func (r RetryConfig) ClientErrorsRetried() bool {
	return r.RetryClientErrors == nil || *r.RetryClientErrors
}

// SearchConfig defines search input handling.
type SearchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// SessionsConfig defines explorer session lifetime for the HTTP API.
type SessionsConfig struct {
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Addr returns host:port.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json, pretty
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation. Variables from envFiles (default: .env) are
// loaded first without overriding the environment. An empty path yields
// the defaults.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading env file %s: %w", f, err)
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	applyPolygonDefaults(&cfg.Polygon)
	applyQueryDefaults(&cfg.Query)
	applySearchDefaults(&cfg.Search)
	applySessionsDefaults(&cfg.Sessions)
	applyServerDefaults(&cfg.Server)
	applyLoggingDefaults(&cfg.Logging)
}

func applyPolygonDefaults(p *PolygonConfig) {
	if p.APIKey == "" {
		p.APIKey = os.Getenv(APIKeyEnv)
	}
	if p.BaseURL == "" {
		p.BaseURL = "https://api.polygon.io"
	}
	if p.Market == "" {
		p.Market = "stocks"
	}
	if p.Exchange == "" {
		p.Exchange = "XNAS"
	}
	if p.PageSize == 0 {
		p.PageSize = 50
	}
	if p.Timeout == 0 {
		p.Timeout = 10 * time.Second
	}
	if p.RateLimit.PerSecond > 0 && p.RateLimit.Burst == 0 {
		p.RateLimit.Burst = 1
	}
}

func applyQueryDefaults(q *QueryConfig) {
	if q.ListingStaleTime == 0 {
		q.ListingStaleTime = 5 * time.Minute
	}
	if q.SearchStaleTime == 0 {
		q.SearchStaleTime = 2 * time.Minute
	}
	if q.GCTime == 0 {
		q.GCTime = 10 * time.Minute
	}
	if q.GCInterval == 0 {
		q.GCInterval = time.Minute
	}
	if q.Retry.MaxRetries == 0 {
		q.Retry.MaxRetries = 3
	}
	if q.Retry.BaseDelay == 0 {
		q.Retry.BaseDelay = time.Second
	}
	if q.Retry.MaxDelay == 0 {
		q.Retry.MaxDelay = 30 * time.Second
	}
}

func applySearchDefaults(s *SearchConfig) {
	if s.Debounce == 0 {
		s.Debounce = 300 * time.Millisecond
	}
}

func applySessionsDefaults(s *SessionsConfig) {
	if s.IdleTimeout == 0 {
		s.IdleTimeout = 30 * time.Minute
	}
	if s.SweepInterval == 0 {
		s.SweepInterval = time.Minute
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if cfg.Polygon.PageSize < 1 || cfg.Polygon.PageSize > 1000 {
		errs = append(errs, fmt.Errorf("polygon.page_size must be between 1 and 1000 (got %d)", cfg.Polygon.PageSize))
	}
	if cfg.Polygon.RateLimit.PerSecond < 0 {
		errs = append(errs, fmt.Errorf("polygon.rate_limit.per_second must not be negative"))
	}
	if cfg.Polygon.RateLimit.DailyLimit < 0 {
		errs = append(errs, fmt.Errorf("polygon.rate_limit.daily_limit must not be negative"))
	}
	if cfg.Query.Retry.BaseDelay > cfg.Query.Retry.MaxDelay {
		errs = append(errs, fmt.Errorf("query.retry.base_delay must not exceed query.retry.max_delay"))
	}
	if cfg.Query.GCTime < cfg.Query.ListingStaleTime {
		errs = append(errs, fmt.Errorf("query.gc_time must be at least query.listing_stale_time"))
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535 (got %d)", cfg.Server.Port))
	}

	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf(
			"logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level,
		))
	}
	switch cfg.Logging.Format {
	case "text", "json", "pretty":
	default:
		errs = append(errs, fmt.Errorf(
			"logging.format must be one of: text, json, pretty (got %q)", cfg.Logging.Format,
		))
	}

	return errors.Join(errs...)
}
