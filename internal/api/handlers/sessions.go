package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/borsa/internal/explore"
)

// DefaultWaitTimeout bounds how long a request with wait=true blocks for
// in-flight fetches.
const DefaultWaitTimeout = 10 * time.Second

// SessionStore defines the registry methods required by the sessions
// handler.
type SessionStore interface {
	Create() (string, *explore.Session)
	Get(id string) (*explore.Session, error)
	Delete(id string) error
}

// SessionsHandler exposes explorer sessions over HTTP.
type SessionsHandler struct {
	store       SessionStore
	waitTimeout time.Duration
}

// SessionsOption configures a SessionsHandler.
type SessionsOption func(*SessionsHandler)

// WithWaitTimeout sets the upper bound for wait=true requests.
func WithWaitTimeout(d time.Duration) SessionsOption {
	return func(h *SessionsHandler) {
		if d > 0 {
			h.waitTimeout = d
		}
	}
}

// NewSessionsHandler creates a new SessionsHandler.
func NewSessionsHandler(s SessionStore, opts ...SessionsOption) *SessionsHandler {
	h := &SessionsHandler{store: s, waitTimeout: DefaultWaitTimeout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SessionBody is an explorer session's id and current view.
type SessionBody struct {
	ID string `json:"id" doc:"Session ID" example:"8f14e45f-ceea-467f-a8d2-6f3b5c4e2a10"`
	explore.Snapshot
}

// SessionOutput is the response for every session operation.
type SessionOutput struct {
	Body SessionBody
}

// CreateSessionInput is the request for creating a session.
type CreateSessionInput struct {
	Wait bool `query:"wait" doc:"Block until the first page has loaded"`
}

// SessionInput identifies a session.
type SessionInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Wait bool   `query:"wait" doc:"Block until in-flight fetches settle"`
}

// DeleteSessionInput identifies a session to close.
type DeleteSessionInput struct {
	ID string `path:"id" doc:"Session ID"`
}

// UpdateSearchInput is the request for changing a session's search term.
type UpdateSearchInput struct {
	ID   string `path:"id" doc:"Session ID"`
	Wait bool   `query:"wait" doc:"Block until in-flight fetches settle"`
	Body struct {
		Query string `json:"query" doc:"Search term; blank returns to the listing" example:"AAPL"`
	}
}

// CreateSession starts a session, which immediately requests the first
// listing page.
func (h *SessionsHandler) CreateSession(ctx context.Context, input *CreateSessionInput) (*SessionOutput, error) {
	id, s := h.store.Create()
	return h.respond(ctx, id, s, input.Wait), nil
}

// GetSession returns a session's current view.
func (h *SessionsHandler) GetSession(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	s, err := h.lookup(input.ID)
	if err != nil {
		return nil, err
	}
	return h.respond(ctx, input.ID, s, input.Wait), nil
}

// DeleteSession closes a session.
func (h *SessionsHandler) DeleteSession(_ context.Context, input *DeleteSessionInput) (*struct{}, error) {
	if err := h.store.Delete(input.ID); err != nil {
		return nil, sessionError(err)
	}
	return nil, nil
}

// LoadMore requests the next listing page. It is ignored while a page is
// loading, while searching, or when the listing is exhausted.
func (h *SessionsHandler) LoadMore(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	s, err := h.lookup(input.ID)
	if err != nil {
		return nil, err
	}
	s.LoadMore()
	return h.respond(ctx, input.ID, s, input.Wait), nil
}

// UpdateSearch sets the search term.
func (h *SessionsHandler) UpdateSearch(ctx context.Context, input *UpdateSearchInput) (*SessionOutput, error) {
	s, err := h.lookup(input.ID)
	if err != nil {
		return nil, err
	}
	s.UpdateSearch(input.Body.Query)
	return h.respond(ctx, input.ID, s, input.Wait), nil
}

// ClearSearch returns the session to the listing.
func (h *SessionsHandler) ClearSearch(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	s, err := h.lookup(input.ID)
	if err != nil {
		return nil, err
	}
	s.ClearSearch()
	return h.respond(ctx, input.ID, s, input.Wait), nil
}

// Refetch re-requests the active query regardless of freshness.
func (h *SessionsHandler) Refetch(ctx context.Context, input *SessionInput) (*SessionOutput, error) {
	s, err := h.lookup(input.ID)
	if err != nil {
		return nil, err
	}
	s.Refetch()
	return h.respond(ctx, input.ID, s, input.Wait), nil
}

func (h *SessionsHandler) lookup(id string) (*explore.Session, error) {
	s, err := h.store.Get(id)
	if err != nil {
		return nil, sessionError(err)
	}
	return s, nil
}

// respond optionally waits for in-flight fetches, then reports the
// session's view. A wait that times out still returns the current view.
func (h *SessionsHandler) respond(ctx context.Context, id string, s *explore.Session, wait bool) *SessionOutput {
	if wait {
		waitCtx, cancel := context.WithTimeout(ctx, h.waitTimeout)
		_ = s.Wait(waitCtx)
		cancel()
	}
	return &SessionOutput{Body: SessionBody{ID: id, Snapshot: s.Snapshot()}}
}

func sessionError(err error) error {
	if errors.Is(err, explore.ErrSessionNotFound) {
		return huma.Error404NotFound("session not found")
	}
	return huma.Error500InternalServerError("session lookup failed: " + err.Error())
}

// RegisterSessionRoutes registers explorer session endpoints with the Huma
// API.
func RegisterSessionRoutes(api huma.API, h *SessionsHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-session",
		Method:        http.MethodPost,
		Path:          "/api/v1/sessions",
		Summary:       "Create explorer session",
		Description:   "Starts a paginated stock explorer session and requests the first listing page.",
		Tags:          []string{"sessions"},
		DefaultStatus: http.StatusCreated,
	}, h.CreateSession)

	huma.Register(api, huma.Operation{
		OperationID: "get-session",
		Method:      http.MethodGet,
		Path:        "/api/v1/sessions/{id}",
		Summary:     "Get explorer session",
		Description: "Returns the session's visible stocks and loading, error and pagination flags.",
		Tags:        []string{"sessions"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetSession)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-session",
		Method:        http.MethodDelete,
		Path:          "/api/v1/sessions/{id}",
		Summary:       "Close explorer session",
		Tags:          []string{"sessions"},
		DefaultStatus: http.StatusNoContent,
		Errors:        []int{http.StatusNotFound},
	}, h.DeleteSession)

	huma.Register(api, huma.Operation{
		OperationID: "session-load-more",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/more",
		Summary:     "Load next listing page",
		Description: "Requests the next listing page. Ignored while searching, while a page is " +
			"loading, or when the listing is exhausted.",
		Tags:   []string{"sessions"},
		Errors: []int{http.StatusNotFound},
	}, h.LoadMore)

	huma.Register(api, huma.Operation{
		OperationID: "session-update-search",
		Method:      http.MethodPut,
		Path:        "/api/v1/sessions/{id}/search",
		Summary:     "Set search term",
		Description: "Switches the session to search results for the trimmed term. " +
			"A blank term restores the listing.",
		Tags:   []string{"sessions"},
		Errors: []int{http.StatusNotFound},
	}, h.UpdateSearch)

	huma.Register(api, huma.Operation{
		OperationID: "session-clear-search",
		Method:      http.MethodDelete,
		Path:        "/api/v1/sessions/{id}/search",
		Summary:     "Clear search",
		Description: "Returns the session to the listing with its loaded pages.",
		Tags:        []string{"sessions"},
		Errors:      []int{http.StatusNotFound},
	}, h.ClearSearch)

	huma.Register(api, huma.Operation{
		OperationID: "session-refetch",
		Method:      http.MethodPost,
		Path:        "/api/v1/sessions/{id}/refetch",
		Summary:     "Refetch active query",
		Description: "Re-requests the active listing pages or search regardless of freshness.",
		Tags:        []string{"sessions"},
		Errors:      []int{http.StatusNotFound},
	}, h.Refetch)
}
