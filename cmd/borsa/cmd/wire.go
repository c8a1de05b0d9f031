package cmd

import (
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/donaldgifford/borsa/internal/config"
	"github.com/donaldgifford/borsa/internal/explore"
	"github.com/donaldgifford/borsa/internal/polygon"
	"github.com/donaldgifford/borsa/internal/query"
)

// stack is the Polygon client, its quota limiter and the query cache
// shared by every explorer session in the process.
type stack struct {
	client  *polygon.HTTPClient
	limiter *polygon.RateLimiter // nil when unlimited
	cache   *query.Cache[*polygon.Page]
	source  *explore.PageSource
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

func buildStack(cfg *config.Config, log *slog.Logger) *stack {
	st := &stack{}

	rl := cfg.Polygon.RateLimit
	if rl.PerSecond > 0 || rl.DailyLimit > 0 {
		perSecond := rl.PerSecond
		burst := rl.Burst
		if perSecond == 0 {
			perSecond = float64(rate.Inf)
			burst = 1
		}
		st.limiter = polygon.NewRateLimiter(perSecond, burst, rl.DailyLimit)
	}

	opts := []polygon.Option{
		polygon.WithBaseURL(cfg.Polygon.BaseURL),
		polygon.WithMarket(cfg.Polygon.Market),
		polygon.WithExchange(cfg.Polygon.Exchange),
		polygon.WithHTTPClient(&http.Client{Timeout: cfg.Polygon.Timeout}),
		polygon.WithLogger(log.With("component", "polygon")),
	}
	if st.limiter != nil {
		opts = append(opts, polygon.WithRateLimiter(st.limiter))
	}
	st.client = polygon.NewHTTPClient(cfg.Polygon.APIKey, opts...)
	if !st.client.Configured() {
		log.Warn("polygon api key not set; every fetch will fail until " + config.APIKeyEnv + " is provided")
	}

	retry := cfg.Query.Retry
	st.cache = query.NewCache[*polygon.Page](
		query.WithRetryPolicy(query.RetryPolicy{
			MaxRetries: retry.Retries(),
			BaseDelay:  retry.BaseDelay,
			MaxDelay:   retry.MaxDelay,
			Retryable:  polygon.Retryable(retry.ClientErrorsRetried()),
		}),
		query.WithGCTime(cfg.Query.GCTime),
		query.WithLogger(log.With("component", "query")),
	)

	st.source = explore.NewPageSource(st.client, st.cache,
		explore.WithPageSize(cfg.Polygon.PageSize),
		explore.WithStaleTimes(cfg.Query.ListingStaleTime, cfg.Query.SearchStaleTime),
		explore.WithGCTime(cfg.Query.GCTime),
	)
	return st
}
