// Package query provides a keyed in-memory cache for remote queries with
// staleness windows, garbage collection of unobserved entries, retry with
// exponential backoff, and at most one in-flight fetch per key.
package query

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/donaldgifford/borsa/internal/metrics"
)

// DefaultGCTime is how long an unobserved entry is kept.
const DefaultGCTime = 10 * time.Minute

// Options control a single Fetch.
type Options struct {
	// StaleTime is how long a successful result stays fresh.
	StaleTime time.Duration
	// GCTime overrides the cache's eviction window for this key.
	GCTime time.Duration
	// Force skips the freshness check.
	Force bool
}

// State is a point-in-time view of one key.
type State[V any] struct {
	Data       V
	HasData    bool
	Err        error
	UpdatedAt  time.Time
	IsFetching bool
	IsStale    bool
	// IsLoading is true while the first fetch for a key is running.
	IsLoading bool
}

type entry[V any] struct {
	data          V
	hasData       bool
	err           error
	updatedAt     time.Time
	staleTime     time.Duration
	gcTime        time.Duration
	observers     int
	inactiveSince time.Time
	fetching      bool
	invalidated   bool
}

func (e *entry[V]) stale(now time.Time) bool {
	return !e.hasData || e.invalidated || now.Sub(e.updatedAt) >= e.staleTime
}

// Cache holds query results of type V keyed by string.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	group   singleflight.Group

	policy RetryPolicy
	gcTime time.Duration
	now    func() time.Time
	log    *slog.Logger
}

type cacheConfig struct {
	policy RetryPolicy
	gcTime time.Duration
	now    func() time.Time
	log    *slog.Logger
}

// Option configures a Cache.
type Option func(*cacheConfig)

// WithRetryPolicy sets the retry policy for failed fetches.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *cacheConfig) {
		c.policy = p
	}
}

// WithGCTime sets the default eviction window.
func WithGCTime(d time.Duration) Option {
	return func(c *cacheConfig) {
		c.gcTime = d
	}
}

// WithNowFunc overrides the clock. Intended for testing.
func WithNowFunc(fn func() time.Time) Option {
	return func(c *cacheConfig) {
		c.now = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *cacheConfig) {
		c.log = l
	}
}

// NewCache creates an empty cache.
func NewCache[V any](opts ...Option) *Cache[V] {
	cfg := &cacheConfig{
		policy: DefaultRetryPolicy(),
		gcTime: DefaultGCTime,
		now:    time.Now,
		log:    slog.Default(),
	}
	for _, o := range opts {
		o(cfg)
	}

	return &Cache[V]{
		entries: make(map[string]*entry[V]),
		policy:  cfg.policy,
		gcTime:  cfg.gcTime,
		now:     cfg.now,
		log:     cfg.log,
	}
}

type fetchResult[V any] struct {
	data V
	err  error
}

// Fetch returns the cached value for key when it is fresh. Otherwise it
// runs fn, retrying per the cache's policy, and stores the outcome.
// Concurrent callers for one key share a single run of fn. The shared run
// is detached from ctx: a caller that gives up gets ctx's error, but the
// fetch still completes and populates the cache.
func (c *Cache[V]) Fetch(
	ctx context.Context,
	key string,
	opts Options,
	fn func(context.Context) (V, error),
) (V, error) {
	c.mu.Lock()
	e := c.ensure(key)
	if opts.StaleTime > 0 {
		e.staleTime = opts.StaleTime
	}
	if opts.GCTime > 0 {
		e.gcTime = opts.GCTime
	}
	if !opts.Force && !e.stale(c.now()) {
		data := e.data
		c.mu.Unlock()
		metrics.QueryCacheHitsTotal.Inc()
		return data, nil
	}
	c.mu.Unlock()
	metrics.QueryCacheMissesTotal.Inc()

	detached := context.WithoutCancel(ctx)
	leader := false
	ch := c.group.DoChan(key, func() (any, error) {
		leader = true
		return c.run(detached, key, fn), nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if !leader {
			metrics.QueryDedupedTotal.Inc()
		}
		r, ok := res.Val.(fetchResult[V])
		if !ok {
			return zero, res.Err
		}
		return r.data, r.err
	}
}

func (c *Cache[V]) run(ctx context.Context, key string, fn func(context.Context) (V, error)) fetchResult[V] {
	c.mu.Lock()
	c.ensure(key).fetching = true
	c.mu.Unlock()

	data, err := Retry(ctx, c.policy, fn, func(err error, wait time.Duration) {
		metrics.QueryRetriesTotal.Inc()
		c.log.Debug("retrying query",
			"key", key,
			"wait", wait,
			"error", err,
		)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	// The entry may have been removed while fetching.
	e := c.ensure(key)
	e.fetching = false
	now := c.now()
	if err != nil {
		e.err = err
		c.log.Warn("query failed", "key", key, "error", err)
	} else {
		e.data = data
		e.hasData = true
		e.err = nil
		e.updatedAt = now
		e.invalidated = false
	}
	if e.observers == 0 {
		e.inactiveSince = now
	}

	return fetchResult[V]{data: data, err: err}
}

// ensure returns the entry for key, creating it. Callers hold c.mu.
func (c *Cache[V]) ensure(key string) *entry[V] {
	e, ok := c.entries[key]
	if !ok {
		e = &entry[V]{
			gcTime:        c.gcTime,
			inactiveSince: c.now(),
		}
		c.entries[key] = e
		metrics.QueryCacheEntries.Set(float64(len(c.entries)))
	}
	return e
}

// Peek returns the state of key without fetching.
func (c *Cache[V]) Peek(key string) (State[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return State[V]{}, false
	}
	return State[V]{
		Data:       e.data,
		HasData:    e.hasData,
		Err:        e.err,
		UpdatedAt:  e.updatedAt,
		IsFetching: e.fetching,
		IsStale:    e.stale(c.now()),
		IsLoading:  e.fetching && !e.hasData,
	}, true
}

// Observe marks key as in use until the returned release func is called.
// Observed entries are never collected.
func (c *Cache[V]) Observe(key string) func() {
	c.mu.Lock()
	c.ensure(key).observers++
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()

			e, ok := c.entries[key]
			if !ok {
				return
			}
			e.observers--
			if e.observers <= 0 {
				e.observers = 0
				e.inactiveSince = c.now()
			}
		})
	}
}

// Invalidate marks key stale so the next Fetch goes to the source.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.invalidated = true
	}
}

// Remove drops key from the cache.
func (c *Cache[V]) Remove(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	metrics.QueryCacheEntries.Set(float64(len(c.entries)))
}

// Collect evicts entries that have had no observers for their GC window
// and are not being fetched. It returns the number of evicted entries.
func (c *Cache[V]) Collect() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	evicted := 0
	for key, e := range c.entries {
		if e.observers > 0 || e.fetching {
			continue
		}
		if now.Sub(e.inactiveSince) < e.gcTime {
			continue
		}
		delete(c.entries, key)
		evicted++
	}

	if evicted > 0 {
		metrics.QueryEvictionsTotal.Add(float64(evicted))
		c.log.Debug("query cache collected", "evicted", evicted, "remaining", len(c.entries))
	}
	metrics.QueryCacheEntries.Set(float64(len(c.entries)))
	return evicted
}

// Len returns the number of entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
