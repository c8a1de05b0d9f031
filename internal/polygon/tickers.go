package polygon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/donaldgifford/borsa/internal/metrics"
	domain "github.com/donaldgifford/borsa/pkg/types"
)

const (
	defaultBaseURL  = "https://api.polygon.io"
	tickersPath     = "/v3/reference/tickers"
	defaultMarket   = "stocks"
	defaultExchange = "XNAS"
	defaultTimeout  = 10 * time.Second
)

// HTTPClient implements TickerClient against the Polygon REST API.
type HTTPClient struct {
	apiKey      string
	baseURL     string
	market      string
	exchange    string
	client      *http.Client
	rateLimiter *RateLimiter
	log         *slog.Logger
}

// Option configures the HTTPClient.
type Option func(*HTTPClient)

// WithBaseURL overrides the default API host.
func WithBaseURL(u string) Option {
	return func(c *HTTPClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.client = hc
	}
}

// WithMarket overrides the market filter (default "stocks").
func WithMarket(m string) Option {
	return func(c *HTTPClient) {
		c.market = m
	}
}

// WithExchange overrides the exchange filter (default "XNAS").
func WithExchange(e string) Option {
	return func(c *HTTPClient) {
		c.exchange = e
	}
}

// WithRateLimiter makes every request wait on r first.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *HTTPClient) {
		c.rateLimiter = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *HTTPClient) {
		c.log = l
	}
}

// NewHTTPClient creates a tickers client. An empty apiKey is accepted here;
// requests fail with a configuration error before touching the network.
func NewHTTPClient(apiKey string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		market:   defaultMarket,
		exchange: defaultExchange,
		client:   &http.Client{Timeout: defaultTimeout},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *HTTPClient) Configured() bool {
	return c.apiKey != ""
}

type tickersAPIResponse struct {
	Results   []domain.Stock `json:"results"`
	Status    string         `json:"status"`
	RequestID string         `json:"request_id"`
	Count     int            `json:"count"`
	NextURL   string         `json:"next_url"`
}

type apiErrorBody struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
	Error     string `json:"error"`
}

// FetchTickers implements TickerClient.FetchTickers.
func (c *HTTPClient) FetchTickers(ctx context.Context, req TickersRequest) (*Page, error) {
	if c.apiKey == "" {
		metrics.PolygonRequestsTotal.WithLabelValues(KindConfiguration.String()).Inc()
		return nil, &Error{Kind: KindConfiguration, Message: MsgMissingAPIKey}
	}

	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrDailyLimitReached) {
				metrics.PolygonDailyLimitHits.Inc()
				metrics.PolygonRequestsTotal.WithLabelValues(KindRateLimited.String()).Inc()
				return nil, &Error{Kind: KindRateLimited, Message: MsgRateLimited, Err: err}
			}
			// Canceled or out of time while waiting for a token.
			metrics.PolygonRequestsTotal.WithLabelValues(KindRequestFailed.String()).Inc()
			return nil, &Error{Kind: KindRequestFailed, Message: MsgRequestFailed, Err: err}
		}
		metrics.PolygonDailyUsage.Set(float64(c.rateLimiter.DailyCount()))
	}

	start := time.Now()
	page, err := c.do(ctx, req)
	metrics.PolygonRequestDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PolygonRequestsTotal.WithLabelValues(KindOf(err).String()).Inc()
		c.log.Error("fetching tickers",
			"offset", req.Offset,
			"search", req.Search,
			"err", detail(err),
		)
		return nil, err
	}

	metrics.PolygonRequestsTotal.WithLabelValues("ok").Inc()
	c.log.Debug("fetched tickers",
		"offset", req.Offset,
		"search", req.Search,
		"results", len(page.Results),
		"count", page.Count,
		"has_next", page.NextURL != "",
	)
	return page, nil
}

func (c *HTTPClient) do(ctx context.Context, req TickersRequest) (*Page, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(req), http.NoBody)
	if err != nil {
		return nil, &Error{Kind: KindRequestFailed, Message: MsgRequestFailed, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		redactURLError(err)
		return nil, &Error{
			Kind:    KindRequestFailed,
			Message: MsgRequestFailed,
			Err:     fmt.Errorf("executing tickers request: %w", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{
			Kind:       KindRequestFailed,
			StatusCode: resp.StatusCode,
			Message:    MsgRequestFailed,
			Err:        fmt.Errorf("reading response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody apiErrorBody
		_ = json.Unmarshal(body, &errBody) //nolint:errcheck // best-effort error parsing
		e := statusError(resp.StatusCode, errBody.Message)
		e.Err = fmt.Errorf("polygon API error (status %d): %s", resp.StatusCode, string(body))
		return nil, e
	}

	var apiResp tickersAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &Error{
			Kind:       KindRequestFailed,
			StatusCode: resp.StatusCode,
			Message:    MsgRequestFailed,
			Err:        fmt.Errorf("parsing tickers response: %w", err),
		}
	}

	results := apiResp.Results
	if results == nil {
		results = []domain.Stock{}
	}

	return &Page{
		Results: results,
		NextURL: apiResp.NextURL,
		Count:   apiResp.Count,
	}, nil
}

func (c *HTTPClient) buildURL(req TickersRequest) string {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}

	params := url.Values{}
	params.Set("market", c.market)
	params.Set("exchange", c.exchange)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(req.Offset))
	if req.Search != "" {
		params.Set("search", req.Search)
	}
	params.Set("apiKey", c.apiKey)

	return c.baseURL + tickersPath + "?" + params.Encode()
}

func detail(err error) string {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Detail()
	}
	return err.Error()
}

// redactURLError strips the apiKey query parameter from the URL carried by
// transport errors so it never reaches logs.
func redactURLError(err error) {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return
	}
	u, perr := url.Parse(ue.URL)
	if perr != nil {
		ue.URL = ""
		return
	}
	q := u.Query()
	if q.Has("apiKey") {
		q.Set("apiKey", "REDACTED")
		u.RawQuery = q.Encode()
	}
	ue.URL = u.String()
}
