package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/borsa/internal/explore"
	domain "github.com/donaldgifford/borsa/pkg/types"
)

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListStocks(context.Background(), 0, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		status       int
		body         string
		wantMsg      string
		wantDetail   string
		wantNotFound bool
	}{
		{
			name:       "huma problem detail",
			status:     http.StatusTooManyRequests,
			body:       `{"title":"Too Many Requests","status":429,"detail":"Rate limit exceeded. Please try again later."}`,
			wantMsg:    "API error (HTTP 429): Rate limit exceeded. Please try again later.",
			wantDetail: "Rate limit exceeded. Please try again later.",
		},
		{
			name:   "huma validation errors",
			status: http.StatusUnprocessableEntity,
			body: `{"title":"Unprocessable Entity","status":422,"detail":"validation failed",` +
				`"errors":[{"message":"expected number >= 0","location":"query.offset","value":-1}]}`,
			wantMsg:    "API error (HTTP 422): validation failed; query.offset: expected number >= 0",
			wantDetail: "validation failed",
		},
		{
			name:         "not found title only",
			status:       http.StatusNotFound,
			body:         `{"title":"Not Found","status":404}`,
			wantMsg:      "API error (HTTP 404): Not Found",
			wantNotFound: true,
		},
		{
			name:    "plain text body",
			status:  http.StatusBadGateway,
			body:    "upstream unavailable\n",
			wantMsg: "API error (HTTP 502): upstream unavailable",
		},
		{
			name:    "empty body",
			status:  http.StatusInternalServerError,
			wantMsg: "API error (HTTP 500): Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "application/json", r.Header.Get("Accept"))
				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).GetSession(context.Background(), "missing", false)
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			assert.Equal(t, tt.wantNotFound, IsNotFound(err))
		})
	}
}

func TestClient_ListStocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		offset    int
		fresh     bool
		wantQuery string
	}{
		{name: "first page", wantQuery: ""},
		{name: "offset", offset: 100, wantQuery: "offset=100"},
		{name: "fresh", offset: 50, fresh: true, wantQuery: "fresh=true&offset=50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/stocks", r.URL.Path)
				assert.Equal(t, tt.wantQuery, r.URL.RawQuery)
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(StocksPage{
					Stocks:     []domain.Stock{{Ticker: "AAPL"}},
					Offset:     tt.offset,
					PageSize:   50,
					HasMore:    true,
					NextOffset: tt.offset + 50,
				})
			}))
			defer srv.Close()

			c := New(srv.URL)
			page, err := c.ListStocks(context.Background(), tt.offset, tt.fresh)
			require.NoError(t, err)
			assert.Len(t, page.Stocks, 1)
			assert.True(t, page.HasMore)
			assert.Equal(t, tt.offset+50, page.NextOffset)
		})
	}
}

func TestClient_SearchStocks(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/stocks/search", r.URL.Path)
		assert.Equal(t, "apple inc", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchResult{
			Query:  "apple inc",
			Stocks: []domain.Stock{{Ticker: "AAPL"}},
			Total:  1,
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	res, err := c.SearchStocks(context.Background(), "apple inc", false)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "AAPL", res.Stocks[0].Ticker)
}

func TestClient_Sessions(t *testing.T) {
	t.Parallel()

	type call struct {
		method string
		path   string
		query  string
		body   map[string]string
	}
	var (
		mu    sync.Mutex
		calls []call
	)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := call{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery}
		if r.Body != nil && r.ContentLength > 0 {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&c.body))
		}
		mu.Lock()
		calls = append(calls, c)
		mu.Unlock()

		if r.Method == http.MethodDelete && r.URL.Path == "/api/v1/sessions/s1" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(Session{
			ID: "s1",
			Snapshot: explore.Snapshot{
				Stocks:      []domain.Stock{{Ticker: "AAPL"}},
				HasNextPage: true,
				Mode:        explore.ModeListing,
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()

	s, err := c.CreateSession(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, "s1", s.ID)
	assert.True(t, s.HasNextPage)
	assert.Equal(t, explore.ModeListing, s.Mode)

	_, err = c.GetSession(ctx, "s1", false)
	require.NoError(t, err)
	_, err = c.GetSession(ctx, "s1", true)
	require.NoError(t, err)
	_, err = c.LoadMore(ctx, "s1", true)
	require.NoError(t, err)
	_, err = c.Search(ctx, "s1", "AAPL", false)
	require.NoError(t, err)
	_, err = c.ClearSearch(ctx, "s1", false)
	require.NoError(t, err)
	_, err = c.Refetch(ctx, "s1", true)
	require.NoError(t, err)
	require.NoError(t, c.DeleteSession(ctx, "s1"))

	want := []call{
		{method: http.MethodPost, path: "/api/v1/sessions", query: "wait=true"},
		{method: http.MethodGet, path: "/api/v1/sessions/s1"},
		{method: http.MethodGet, path: "/api/v1/sessions/s1", query: "wait=true"},
		{method: http.MethodPost, path: "/api/v1/sessions/s1/more", query: "wait=true"},
		{method: http.MethodPut, path: "/api/v1/sessions/s1/search", body: map[string]string{"query": "AAPL"}},
		{method: http.MethodDelete, path: "/api/v1/sessions/s1/search"},
		{method: http.MethodPost, path: "/api/v1/sessions/s1/refetch", query: "wait=true"},
		{method: http.MethodDelete, path: "/api/v1/sessions/s1"},
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, calls)
}

func TestClient_Jobs(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/jobs":
			json.NewEncoder(w).Encode([]domain.JobRun{{JobName: "cache_gc"}, {JobName: "session_sweep"}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/jobs/cache_gc":
			json.NewEncoder(w).Encode([]domain.JobRun{{JobName: "cache_gc", Status: domain.JobStatusFailed}})
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/jobs/cache_gc/run":
			json.NewEncoder(w).Encode(domain.JobRun{JobName: "cache_gc", Status: domain.JobStatusSucceeded})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)

	runs, err := c.ListJobs(context.Background())
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = c.GetJobHistory(context.Background(), "cache_gc")
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, domain.JobStatusFailed, runs[0].Status)

	run, err := c.RunJob(context.Background(), "cache_gc")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusSucceeded, run.Status)
}

func TestClient_QuotaAndSystemState(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/v1/quota":
			_, _ = w.Write([]byte(`{"daily_limit":100,"daily_used":3,"remaining":97,"reset_at":"2026-06-16T14:30:00Z"}`))
		case "/api/v1/system/state":
			_, _ = w.Write([]byte(`{"polygon_configured":true,"cache_entries":4,"sessions_active":1,"jobs":[]}`))
		}
	}))
	defer srv.Close()

	c := New(srv.URL)

	q, err := c.GetQuota(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(97), q.Remaining)
	assert.Equal(t, 2026, q.ResetAt.Year())

	st, err := c.GetSystemState(context.Background())
	require.NoError(t, err)
	assert.True(t, st.PolygonConfigured)
	assert.Equal(t, 4, st.CacheEntries)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	c := New("http://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, c.httpClient)
}
