// Package client provides a thin HTTP client for the borsa API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client is a thin HTTP client for the borsa API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client targeting the given base URL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// APIError is a non-2xx response. The server answers errors with huma's
// problem document (title, status, detail, errors); Body keeps the raw
// response when it is anything else.
type APIError struct {
	StatusCode int           `json:"-"`
	Title      string        `json:"title"`
	Detail     string        `json:"detail"`
	Errors     []ErrorDetail `json:"errors,omitempty"`
	Body       string        `json:"-"`
}

// ErrorDetail is one validation failure inside an APIError.
type ErrorDetail struct {
	Message  string `json:"message"`
	Location string `json:"location,omitempty"`
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.Title
	}
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "API error (HTTP %d): %s", e.StatusCode, msg)
	for _, d := range e.Errors {
		if d.Location != "" {
			fmt.Fprintf(&b, "; %s: %s", d.Location, d.Message)
		} else {
			fmt.Fprintf(&b, "; %s", d.Message)
		}
	}
	return b.String()
}

// IsNotFound reports whether err is a 404 from the API, such as an unknown
// session id or job name.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{}
	if err := json.Unmarshal(body, apiErr); err != nil || (apiErr.Title == "" && apiErr.Detail == "") {
		apiErr = &APIError{Body: string(body)}
	}
	apiErr.StatusCode = status
	return apiErr
}

// waitQuery asks session endpoints to block until in-flight fetches settle.
func waitQuery(wait bool) url.Values {
	if !wait {
		return nil
	}
	return url.Values{"wait": []string{"true"}}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, dst any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, dst)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, dst any) error {
	return c.do(ctx, http.MethodPost, path, query, body, dst)
}

func (c *Client) put(ctx context.Context, path string, query url.Values, body, dst any) error {
	return c.do(ctx, http.MethodPut, path, query, body, dst)
}

func (c *Client) del(ctx context.Context, path string, query url.Values, dst any) error {
	return c.do(ctx, http.MethodDelete, path, query, nil, dst)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isConnectionRefused(err) {
			return fmt.Errorf("API server not running at %s", c.baseURL)
		}
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return newAPIError(resp.StatusCode, respBody)
	}

	if dst != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, dst); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

func isConnectionRefused(err error) bool {
	return strings.Contains(err.Error(), "connection refused")
}
