package explore

import (
	"context"
	"time"

	"github.com/donaldgifford/borsa/internal/polygon"
	"github.com/donaldgifford/borsa/internal/query"
)

// Default freshness windows.
const (
	DefaultListingStaleTime = 5 * time.Minute
	DefaultSearchStaleTime  = 2 * time.Minute
)

// PageSource loads ticker pages through the shared query cache.
type PageSource struct {
	client       polygon.TickerClient
	cache        *query.Cache[*polygon.Page]
	pageSize     int
	listingStale time.Duration
	searchStale  time.Duration
	gcTime       time.Duration
}

// SourceOption configures a PageSource.
type SourceOption func(*PageSource)

// WithPageSize sets the page size for listing and search requests.
func WithPageSize(n int) SourceOption {
	return func(s *PageSource) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithStaleTimes sets the freshness windows for listing and search pages.
func WithStaleTimes(listing, search time.Duration) SourceOption {
	return func(s *PageSource) {
		s.listingStale = listing
		s.searchStale = search
	}
}

// WithGCTime sets the eviction window for unobserved pages.
func WithGCTime(d time.Duration) SourceOption {
	return func(s *PageSource) {
		s.gcTime = d
	}
}

// NewPageSource creates a PageSource over client and cache.
func NewPageSource(
	client polygon.TickerClient,
	cache *query.Cache[*polygon.Page],
	opts ...SourceOption,
) *PageSource {
	s := &PageSource{
		client:       client,
		cache:        cache,
		pageSize:     DefaultPageSize,
		listingStale: DefaultListingStaleTime,
		searchStale:  DefaultSearchStaleTime,
		gcTime:       query.DefaultGCTime,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PageSize returns the configured page size.
func (s *PageSource) PageSize() int {
	return s.pageSize
}

// Cache returns the underlying query cache.
func (s *PageSource) Cache() *query.Cache[*polygon.Page] {
	return s.cache
}

// Fetch returns the page for key, from cache when fresh unless force is
// set.
func (s *PageSource) Fetch(ctx context.Context, key PageKey, force bool) (*polygon.Page, error) {
	stale := s.listingStale
	if key.IsSearch() {
		stale = s.searchStale
	}

	req := polygon.TickersRequest{
		Limit:  s.pageSize,
		Offset: key.Offset,
		Search: key.Term,
	}
	return s.cache.Fetch(ctx, key.String(), query.Options{
		StaleTime: stale,
		GCTime:    s.gcTime,
		Force:     force,
	}, func(ctx context.Context) (*polygon.Page, error) {
		return s.client.FetchTickers(ctx, req)
	})
}

// Peek returns the cached state of key.
func (s *PageSource) Peek(key PageKey) (query.State[*polygon.Page], bool) {
	return s.cache.Peek(key.String())
}

// Observe keeps key from being collected until release is called.
func (s *PageSource) Observe(key PageKey) (release func()) {
	return s.cache.Observe(key.String())
}

// Cached reports whether key holds data.
func (s *PageSource) Cached(key PageKey) bool {
	st, ok := s.Peek(key)
	return ok && st.HasData
}
