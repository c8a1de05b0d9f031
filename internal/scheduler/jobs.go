package scheduler

import (
	"context"
	"fmt"

	"github.com/donaldgifford/borsa/internal/explore"
	"github.com/donaldgifford/borsa/internal/polygon"
)

// Built-in job names.
const (
	JobCacheGC      = "cache_gc"
	JobSessionSweep = "session_sweep"
	JobListingWarm  = "listing_warm"
)

// Collector evicts unused cache entries.
type Collector interface {
	Collect() int
}

// Sweeper expires idle sessions.
type Sweeper interface {
	Sweep() int
}

// PageFetcher loads a page through the query cache.
type PageFetcher interface {
	Fetch(ctx context.Context, key explore.PageKey, force bool) (*polygon.Page, error)
}

// CacheGC returns a job that garbage-collects the query cache.
func CacheGC(c Collector) Job {
	return func(context.Context) (int, error) {
		return c.Collect(), nil
	}
}

// SessionSweep returns a job that closes idle explorer sessions.
func SessionSweep(s Sweeper) Job {
	return func(context.Context) (int, error) {
		return s.Sweep(), nil
	}
}

// ListingWarm returns a job that keeps the first listing page cached so
// new sessions start from fresh data. A fresh page is not refetched.
func ListingWarm(f PageFetcher) Job {
	return func(ctx context.Context) (int, error) {
		page, err := f.Fetch(ctx, explore.ListingKey(0), false)
		if err != nil {
			return 0, fmt.Errorf("warming first listing page: %w", err)
		}
		return len(page.Results), nil
	}
}
