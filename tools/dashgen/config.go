package main

import "errors"

// KnownMetrics is the set of metric names exported by borsa plus recording
// rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"borsa_http_request_duration_seconds": true,
	"borsa_http_requests_total":           true,

	// Health metrics.
	"borsa_healthz_up": true,
	"borsa_readyz_up":  true,

	// Polygon API metrics.
	"borsa_polygon_requests_total":           true,
	"borsa_polygon_request_duration_seconds": true,
	"borsa_polygon_daily_usage":              true,
	"borsa_polygon_daily_limit_hits_total":   true,

	// Query cache metrics.
	"borsa_query_cache_hits_total":   true,
	"borsa_query_cache_misses_total": true,
	"borsa_query_deduped_total":      true,
	"borsa_query_retries_total":      true,
	"borsa_query_evictions_total":    true,
	"borsa_query_cache_entries":      true,

	// Explorer metrics.
	"borsa_explore_sessions_active": true,
	"borsa_explore_load_more_total": true,
	"borsa_explore_searches_total":  true,

	// Scheduler metrics.
	"borsa_scheduler_job_runs_total":     true,
	"borsa_scheduler_next_run_timestamp": true,

	// Recording rules.
	"borsa:http_requests:rate5m":         true,
	"borsa:http_errors:rate5m":           true,
	"borsa:polygon_requests:rate5m":      true,
	"borsa:polygon_failures:rate5m":      true,
	"borsa:query_cache_hit_ratio:rate5m": true,
	"borsa:query_retries:rate5m":         true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	return nil
}
