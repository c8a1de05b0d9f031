// Package main implements a mock Polygon.io server for local development.
// It serves the reference tickers endpoint from a JSON fixture, with the
// same pagination, search and error shapes as the real API, so borsa can
// run without a Polygon account.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

// rejectedKey is refused with 401 so the unauthorized path can be exercised.
const rejectedKey = "invalid"

type tickersResponse struct {
	Results   []json.RawMessage `json:"results"`
	Status    string            `json:"status"`
	RequestID string            `json:"request_id"`
	Count     int               `json:"count"`
	NextURL   string            `json:"next_url,omitempty"`
}

type tickerSummary struct {
	Ticker          string `json:"ticker"`
	Name            string `json:"name"`
	Market          string `json:"market"`
	PrimaryExchange string `json:"primary_exchange"`
}

type options struct {
	maxRequests int64 // 0 means unlimited
	latency     time.Duration
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/tickers.json", "path to tickers fixture")
	maxRequests := flag.Int64("max-requests", 0, "answer 429 after this many requests (0 = unlimited)")
	latency := flag.Duration("latency", 0, "artificial delay added to every response")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fixture, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "tickers", len(fixture.Results))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /v3/reference/tickers", tickersHandler(logger, fixture, options{
		maxRequests: *maxRequests,
		latency:     *latency,
	}))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock Polygon server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) (*tickersResponse, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var resp tickersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return &resp, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Has("apiKey") {
			q.Set("apiKey", "REDACTED")
		}
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", q.Encode())
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(map[string]string{
		"status":     "ERROR",
		"request_id": "mock",
		"error":      message,
	})
}

func tickersHandler(logger *slog.Logger, fixture *tickersResponse, opts options) http.HandlerFunc {
	type indexedTicker struct {
		raw      json.RawMessage
		ticker   string
		name     string
		market   string
		exchange string
	}
	items := make([]indexedTicker, 0, len(fixture.Results))
	for _, raw := range fixture.Results {
		var s tickerSummary
		//nolint:errcheck,gosec // fixture data is trusted; field extraction is best-effort
		json.Unmarshal(raw, &s)
		items = append(items, indexedTicker{
			raw:      raw,
			ticker:   strings.ToLower(s.Ticker),
			name:     strings.ToLower(s.Name),
			market:   s.Market,
			exchange: s.PrimaryExchange,
		})
	}

	var served atomic.Int64

	return func(w http.ResponseWriter, r *http.Request) {
		if opts.latency > 0 {
			time.Sleep(opts.latency)
		}

		q := r.URL.Query()
		switch key := q.Get("apiKey"); key {
		case "":
			writeError(w, http.StatusUnauthorized, "API Key was not provided")
			return
		case rejectedKey:
			writeError(w, http.StatusUnauthorized, "Unknown API Key")
			return
		}
		if n := served.Add(1); opts.maxRequests > 0 && n > opts.maxRequests {
			writeError(w, http.StatusTooManyRequests, "You've exceeded the maximum requests per minute")
			return
		}

		limit := 100
		if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
			limit = min(v, 1000)
		}
		offset := 0
		if v, err := strconv.Atoi(q.Get("offset")); err == nil && v >= 0 {
			offset = v
		}
		search := strings.ToLower(q.Get("search"))
		market := q.Get("market")
		exchange := q.Get("exchange")

		var matched []json.RawMessage
		for _, item := range items {
			if market != "" && item.market != market {
				continue
			}
			if exchange != "" && item.exchange != exchange {
				continue
			}
			if search != "" && !strings.Contains(item.ticker, search) && !strings.Contains(item.name, search) {
				continue
			}
			matched = append(matched, item.raw)
		}

		total := len(matched)

		if offset >= len(matched) {
			matched = nil
		} else {
			end := min(offset+limit, len(matched))
			matched = matched[offset:end]
		}

		resp := tickersResponse{
			Results:   matched,
			Status:    "OK",
			RequestID: "mock",
			Count:     len(matched),
		}
		if offset+limit < total {
			next := url.Values{}
			next.Set("cursor", strconv.Itoa(offset+limit))
			resp.NextURL = "http://" + r.Host + "/v3/reference/tickers?" + next.Encode()
		}

		// Return empty array instead of null when no results.
		if resp.Results == nil {
			resp.Results = []json.RawMessage{}
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(resp)
		logger.Info("tickers",
			"search", search, "matched", total, "returned", len(matched), "offset", offset, "limit", limit)
	}
}
