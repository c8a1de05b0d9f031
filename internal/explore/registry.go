package explore

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/donaldgifford/borsa/internal/metrics"
)

// DefaultIdleTimeout is how long an unused session is kept.
const DefaultIdleTimeout = 30 * time.Minute

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Registry holds explorer sessions by id and expires idle ones.
type Registry struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	source      *PageSource
	idleTimeout time.Duration
	now         func() time.Time
	log         *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithIdleTimeout sets how long a session may go unused.
func WithIdleTimeout(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idleTimeout = d
		}
	}
}

// WithRegistryNowFunc overrides the clock.
func WithRegistryNowFunc(fn func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = fn
	}
}

// WithRegistryLogger sets the logger.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.log = l
	}
}

// NewRegistry creates an empty registry whose sessions load from source.
func NewRegistry(source *PageSource, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions:    make(map[string]*Session),
		source:      source,
		idleTimeout: DefaultIdleTimeout,
		now:         time.Now,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Create starts a new session and returns its id.
func (r *Registry) Create() (string, *Session) {
	id := uuid.New().String()
	s := NewSession(r.source,
		WithSessionLogger(r.log.With("session", id)),
		WithSessionNowFunc(r.now),
	)

	r.mu.Lock()
	r.sessions[id] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.ExploreSessionsActive.Set(float64(n))
	r.log.Debug("session created", "session", id)
	return id, s
}

// Get returns the session with id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and removes the session with id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.Close()
	metrics.ExploreSessionsActive.Set(float64(n))
	return nil
}

// Sweep closes sessions idle for longer than the idle timeout and returns
// how many were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.idleTimeout)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.IdleSince().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	metrics.ExploreSessionsActive.Set(float64(n))
	if len(expired) > 0 {
		r.log.Info("expired idle sessions", "count", len(expired), "remaining", n)
	}
	return len(expired)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close closes every session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
	metrics.ExploreSessionsActive.Set(0)
}
