package client

import (
	"context"
	"net/url"

	"github.com/donaldgifford/borsa/internal/explore"
)

// Session is an explorer session's id and current view.
type Session struct {
	ID string `json:"id"`
	explore.Snapshot
}

func sessionPath(id, suffix string) string {
	p := "/api/v1/sessions"
	if id != "" {
		p += "/" + url.PathEscape(id)
	}
	return p + suffix
}

// CreateSession starts an explorer session. With wait set the call returns
// after the first page has loaded.
func (c *Client) CreateSession(ctx context.Context, wait bool) (*Session, error) {
	var s Session
	if err := c.post(ctx, sessionPath("", ""), waitQuery(wait), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetSession returns a session's current view.
func (c *Client) GetSession(ctx context.Context, id string, wait bool) (*Session, error) {
	var s Session
	if err := c.get(ctx, sessionPath(id, ""), waitQuery(wait), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession closes a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return c.del(ctx, sessionPath(id, ""), nil, nil)
}

// LoadMore requests the session's next listing page.
func (c *Client) LoadMore(ctx context.Context, id string, wait bool) (*Session, error) {
	var s Session
	if err := c.post(ctx, sessionPath(id, "/more"), waitQuery(wait), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Search sets the session's search term. A blank term returns to the
// listing.
func (c *Client) Search(ctx context.Context, id, term string, wait bool) (*Session, error) {
	body := map[string]string{"query": term}
	var s Session
	if err := c.put(ctx, sessionPath(id, "/search"), waitQuery(wait), body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ClearSearch returns the session to the listing.
func (c *Client) ClearSearch(ctx context.Context, id string, wait bool) (*Session, error) {
	var s Session
	if err := c.del(ctx, sessionPath(id, "/search"), waitQuery(wait), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Refetch re-requests the session's active query.
func (c *Client) Refetch(ctx context.Context, id string, wait bool) (*Session, error) {
	var s Session
	if err := c.post(ctx, sessionPath(id, "/refetch"), waitQuery(wait), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
