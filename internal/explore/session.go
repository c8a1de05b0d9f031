package explore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/donaldgifford/borsa/internal/metrics"
)

// Session drives a Machine against a PageSource. Operations are applied
// under a lock; fetches run in background goroutines and their results
// are merged back into the machine as they arrive.
type Session struct {
	mu       sync.Mutex
	machine  *Machine
	source   *PageSource
	log      *slog.Logger
	onChange func(Snapshot)
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	closed bool

	observed map[PageKey]func()
	inflight int
	idle     chan struct{}
	lastUsed time.Time
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionLogger sets the logger.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.log = l
	}
}

// WithOnChange registers fn to be called with a new snapshot whenever a
// background fetch settles. fn is called without the session lock held.
func WithOnChange(fn func(Snapshot)) SessionOption {
	return func(s *Session) {
		s.onChange = fn
	}
}

// WithSessionNowFunc overrides the clock used for idle tracking.
func WithSessionNowFunc(fn func() time.Time) SessionOption {
	return func(s *Session) {
		s.now = fn
	}
}

// NewSession creates a session and mounts it, which requests the first
// listing page.
func NewSession(source *PageSource, opts ...SessionOption) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		machine:  NewMachine(source.PageSize()),
		source:   source,
		log:      slog.Default(),
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		observed: make(map[PageKey]func()),
		idle:     closedChan(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()
	s.dispatch(s.machine.Mount())
	return s
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Snapshot returns the current view.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUsed = s.now()
	return s.machine.View()
}

// LoadMore requests the next listing page if one is available and no
// fetch is outstanding.
func (s *Session) LoadMore() Snapshot {
	return s.apply(func(m *Machine) []Fetch {
		fetches := m.LoadMore()
		if len(fetches) == 0 {
			metrics.ExploreLoadMoreTotal.WithLabelValues("ignored").Inc()
		} else {
			metrics.ExploreLoadMoreTotal.WithLabelValues("requested").Inc()
		}
		return fetches
	})
}

// UpdateSearch applies a search term. A blank term behaves like
// ClearSearch.
func (s *Session) UpdateSearch(term string) Snapshot {
	return s.apply(func(m *Machine) []Fetch {
		prev := m.Mode()
		fetches := m.SetSearch(term)
		if next, ok := m.Mode().(Searching); ok && prev != Mode(next) {
			metrics.ExploreSearchesTotal.Inc()
		}
		if _, ok := prev.(Searching); ok {
			if _, listing := m.Mode().(Listing); listing {
				return s.resumeListing(m, fetches)
			}
		}
		return fetches
	})
}

// ClearSearch returns to the listing.
func (s *Session) ClearSearch() Snapshot {
	return s.UpdateSearch("")
}

// Refetch re-requests the active query regardless of freshness.
func (s *Session) Refetch() Snapshot {
	return s.apply(func(m *Machine) []Fetch {
		return m.Refetch()
	})
}

// resumeListing discards the listing session when any of its pages were
// evicted from the cache while searching. Callers hold s.mu.
func (s *Session) resumeListing(m *Machine, fetches []Fetch) []Fetch {
	for _, offset := range m.ListingOffsets() {
		if !s.source.Cached(ListingKey(offset)) {
			s.log.Debug("listing pages evicted, restarting listing", "offset", offset)
			return m.DropListing()
		}
	}
	return fetches
}

func (s *Session) apply(op func(m *Machine) []Fetch) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = s.now()
	if s.closed {
		return s.machine.View()
	}
	s.dispatch(op(s.machine))
	return s.machine.View()
}

// dispatch runs fetches. Pages already cached are merged immediately;
// missing, stale or forced pages are fetched in the background. Callers
// hold s.mu.
func (s *Session) dispatch(fetches []Fetch) {
	for _, f := range fetches {
		st, ok := s.source.Peek(f.Key)
		if !f.Force && ok && st.HasData {
			s.machine.Settle(f, st.Data, nil)
			if !st.IsStale {
				continue
			}
			s.machine.Revalidate(f)
		}
		s.start(f)
	}
	s.syncObserved()
}

func (s *Session) start(f Fetch) {
	if s.inflight == 0 {
		s.idle = make(chan struct{})
	}
	s.inflight++

	go func() {
		page, err := s.source.Fetch(s.ctx, f.Key, f.Force)

		s.mu.Lock()
		s.inflight--
		if s.inflight == 0 {
			close(s.idle)
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		s.machine.Settle(f, page, err)
		snap := s.machine.View()
		onChange := s.onChange
		s.mu.Unlock()

		if err != nil {
			s.log.Debug("page fetch failed", "key", f.Key.String(), "error", err)
		}
		if onChange != nil {
			onChange(snap)
		}
	}()
}

// syncObserved keeps the active mode's pages observed in the cache and
// releases the rest so they can be collected. Callers hold s.mu.
func (s *Session) syncObserved() {
	active := make(map[PageKey]bool)
	for _, k := range s.machine.ActiveKeys() {
		active[k] = true
		if _, ok := s.observed[k]; !ok {
			s.observed[k] = s.source.Observe(k)
		}
	}
	for k, release := range s.observed {
		if !active[k] {
			release()
			delete(s.observed, k)
		}
	}
}

// Wait blocks until no fetch is in flight or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.inflight == 0 {
			s.mu.Unlock()
			return nil
		}
		idle := s.idle
		s.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// IdleSince returns when the session was last used.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// Close releases the session's cache observations and stops delivering
// results. In-flight fetches still complete into the cache.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	for k, release := range s.observed {
		release()
		delete(s.observed, k)
	}
}
