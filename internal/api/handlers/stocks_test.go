package handlers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/borsa/internal/api/handlers"
	"github.com/donaldgifford/borsa/internal/explore"
	"github.com/donaldgifford/borsa/internal/polygon"
	"github.com/donaldgifford/borsa/internal/polygon/mocks"
	"github.com/donaldgifford/borsa/internal/query"
	domain "github.com/donaldgifford/borsa/pkg/types"
)

func newTestSource(client polygon.TickerClient) *explore.PageSource {
	cache := query.NewCache[*polygon.Page](query.WithRetryPolicy(query.RetryPolicy{
		MaxRetries: 0,
		BaseDelay:  time.Millisecond,
		MaxDelay:   time.Millisecond,
	}))
	return explore.NewPageSource(client, cache)
}

func stockPage(offset, n int, next bool) *polygon.Page {
	p := &polygon.Page{Results: make([]domain.Stock, 0, n)}
	for i := range n {
		p.Results = append(p.Results, domain.Stock{
			Ticker:          fmt.Sprintf("T%03d", offset+i),
			Name:            fmt.Sprintf("Ticker %d", offset+i),
			PrimaryExchange: "XNAS",
			Active:          true,
		})
	}
	if next {
		p.NextURL = "https://api.polygon.io/v3/reference/tickers?cursor=abc"
	}
	return p
}

func TestListStocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		url        string
		setupMock  func(m *mocks.MockTickerClient)
		wantStatus int
		wantBody   []string
	}{
		{
			name: "first page with continuation",
			url:  "/api/v1/stocks",
			setupMock: func(m *mocks.MockTickerClient) {
				m.EXPECT().
					FetchTickers(mock.Anything, polygon.TickersRequest{Limit: 50}).
					Return(stockPage(0, 50, true), nil).
					Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   []string{`"T000"`, `"has_more":true`, `"next_offset":50`, `"page_size":50`},
		},
		{
			name: "empty page ends the listing",
			url:  "/api/v1/stocks?offset=100",
			setupMock: func(m *mocks.MockTickerClient) {
				m.EXPECT().
					FetchTickers(mock.Anything, polygon.TickersRequest{Limit: 50, Offset: 100}).
					Return(stockPage(100, 0, true), nil).
					Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   []string{`"stocks":[]`, `"has_more":false`, `"offset":100`},
		},
		{
			name:       "unaligned offset",
			url:        "/api/v1/stocks?offset=25",
			setupMock:  func(*mocks.MockTickerClient) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   []string{"multiple of the page size (50)"},
		},
		{
			name:       "negative offset",
			url:        "/api/v1/stocks?offset=-50",
			setupMock:  func(*mocks.MockTickerClient) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "rate limited",
			url:  "/api/v1/stocks",
			setupMock: func(m *mocks.MockTickerClient) {
				m.EXPECT().
					FetchTickers(mock.Anything, mock.Anything).
					Return(nil, &polygon.Error{Kind: polygon.KindRateLimited, StatusCode: 429, Message: polygon.MsgRateLimited}).
					Once()
			},
			wantStatus: http.StatusTooManyRequests,
			wantBody:   []string{polygon.MsgRateLimited},
		},
		{
			name: "missing api key",
			url:  "/api/v1/stocks",
			setupMock: func(m *mocks.MockTickerClient) {
				m.EXPECT().
					FetchTickers(mock.Anything, mock.Anything).
					Return(nil, &polygon.Error{Kind: polygon.KindConfiguration, Message: polygon.MsgMissingAPIKey}).
					Once()
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   []string{"POLYGON_API_KEY"},
		},
		{
			name: "unauthorized",
			url:  "/api/v1/stocks",
			setupMock: func(m *mocks.MockTickerClient) {
				m.EXPECT().
					FetchTickers(mock.Anything, mock.Anything).
					Return(nil, &polygon.Error{Kind: polygon.KindUnauthorized, StatusCode: 401, Message: polygon.MsgUnauthorized}).
					Once()
			},
			wantStatus: http.StatusBadGateway,
			wantBody:   []string{polygon.MsgUnauthorized},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := mocks.NewMockTickerClient(t)
			tt.setupMock(client)

			h := handlers.NewStocksHandler(newTestSource(client))
			_, api := humatest.New(t)
			handlers.RegisterStocksRoutes(api, h)

			resp := api.Get(tt.url)
			require.Equal(t, tt.wantStatus, resp.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, resp.Body.String(), want)
			}
		})
	}
}

func TestListStocks_ServedFromCache(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockTickerClient(t)
	client.EXPECT().
		FetchTickers(mock.Anything, polygon.TickersRequest{Limit: 50}).
		Return(stockPage(0, 50, true), nil).
		Twice()

	h := handlers.NewStocksHandler(newTestSource(client))
	_, api := humatest.New(t)
	handlers.RegisterStocksRoutes(api, h)

	require.Equal(t, http.StatusOK, api.Get("/api/v1/stocks").Code)
	require.Equal(t, http.StatusOK, api.Get("/api/v1/stocks").Code)
	require.Equal(t, http.StatusOK, api.Get("/api/v1/stocks?fresh=true").Code)
}

func TestSearchStocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		url        string
		setupMock  func(m *mocks.MockTickerClient)
		wantStatus int
		wantBody   []string
	}{
		{
			name: "single result",
			url:  "/api/v1/stocks/search?q=AAPL",
			setupMock: func(m *mocks.MockTickerClient) {
				m.EXPECT().
					FetchTickers(mock.Anything, polygon.TickersRequest{Limit: 50, Search: "AAPL"}).
					Return(&polygon.Page{Results: []domain.Stock{{Ticker: "AAPL", Name: "Apple Inc."}}}, nil).
					Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   []string{`"AAPL"`, `"total":1`, `"query":"AAPL"`},
		},
		{
			name: "term is trimmed",
			url:  "/api/v1/stocks/search?q=%20%20msft%20",
			setupMock: func(m *mocks.MockTickerClient) {
				m.EXPECT().
					FetchTickers(mock.Anything, polygon.TickersRequest{Limit: 50, Search: "msft"}).
					Return(&polygon.Page{}, nil).
					Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   []string{`"query":"msft"`, `"stocks":[]`, `"total":0`},
		},
		{
			name:       "blank term",
			url:        "/api/v1/stocks/search?q=%20%20",
			setupMock:  func(*mocks.MockTickerClient) {},
			wantStatus: http.StatusUnprocessableEntity,
			wantBody:   []string{"must not be blank"},
		},
		{
			name:       "missing term",
			url:        "/api/v1/stocks/search",
			setupMock:  func(*mocks.MockTickerClient) {},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "server error",
			url:  "/api/v1/stocks/search?q=X",
			setupMock: func(m *mocks.MockTickerClient) {
				m.EXPECT().
					FetchTickers(mock.Anything, mock.Anything).
					Return(nil, &polygon.Error{Kind: polygon.KindServer, StatusCode: 502, Message: polygon.MsgServerError}).
					Once()
			},
			wantStatus: http.StatusBadGateway,
			wantBody:   []string{polygon.MsgServerError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := mocks.NewMockTickerClient(t)
			tt.setupMock(client)

			h := handlers.NewStocksHandler(newTestSource(client))
			_, api := humatest.New(t)
			handlers.RegisterStocksRoutes(api, h)

			resp := api.Get(tt.url)
			require.Equal(t, tt.wantStatus, resp.Code)
			for _, want := range tt.wantBody {
				assert.Contains(t, resp.Body.String(), want)
			}
		})
	}
}
