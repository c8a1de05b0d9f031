// Package metrics defines Prometheus metrics for borsa.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "borsa"

// HTTP metrics.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status"})

	HealthzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "healthz_up",
		Help:      "1 if the last /healthz probe succeeded, 0 otherwise.",
	})

	ReadyzUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "readyz_up",
		Help:      "1 if the last /readyz probe succeeded, 0 otherwise.",
	})
)

// Polygon API metrics.
var (
	PolygonRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polygon_requests_total",
		Help:      "Total Polygon tickers requests by outcome kind.",
	}, []string{"outcome"})

	PolygonRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "polygon_request_duration_seconds",
		Help:      "Duration of Polygon tickers requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	})

	PolygonDailyUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "polygon_daily_usage",
		Help:      "Current Polygon call count within the rolling 24-hour window.",
	})

	PolygonDailyLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "polygon_daily_limit_hits_total",
		Help:      "Total number of times the configured daily Polygon quota was reached.",
	})
)

// Query cache metrics.
var (
	QueryCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_cache_hits_total",
		Help:      "Fetches answered from fresh cached data.",
	})

	QueryCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_cache_misses_total",
		Help:      "Fetches that required calling the underlying query function.",
	})

	QueryDedupedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_deduped_total",
		Help:      "Fetches that joined an in-flight request for the same key.",
	})

	QueryRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_retries_total",
		Help:      "Retries scheduled after a failed query attempt.",
	})

	QueryEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_evictions_total",
		Help:      "Cache entries evicted by garbage collection.",
	})

	QueryCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "query_cache_entries",
		Help:      "Number of entries currently held by the query cache.",
	})
)

// Explorer metrics.
var (
	ExploreSessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "explore_sessions_active",
		Help:      "Number of open explorer sessions.",
	})

	ExploreLoadMoreTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "explore_load_more_total",
		Help:      "loadMore calls by result (fetched, ignored).",
	}, []string{"result"})

	ExploreSearchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "explore_searches_total",
		Help:      "Transitions into search mode.",
	})
)

// Scheduler metrics.
var (
	SchedulerJobRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduler_job_runs_total",
		Help:      "Scheduled job executions by job and status.",
	}, []string{"job_name", "status"})

	SchedulerNextRunTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduler_next_run_timestamp",
		Help:      "Unix timestamp of the next scheduled run by job.",
	}, []string{"job_name"})
)
