package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/borsa/internal/explore"
	"github.com/donaldgifford/borsa/internal/polygon"
	domain "github.com/donaldgifford/borsa/pkg/types"
)

// StockSource loads ticker pages through the query cache.
type StockSource interface {
	Fetch(ctx context.Context, key explore.PageKey, force bool) (*polygon.Page, error)
	PageSize() int
}

// StocksHandler serves cached listing pages and searches.
type StocksHandler struct {
	source StockSource
}

// NewStocksHandler creates a new StocksHandler.
func NewStocksHandler(s StockSource) *StocksHandler {
	return &StocksHandler{source: s}
}

// ListStocksInput is the request for one listing page.
type ListStocksInput struct {
	Offset int  `query:"offset" minimum:"0" default:"0" doc:"Listing offset; a multiple of the page size" example:"50"`
	Fresh  bool `query:"fresh" doc:"Bypass cached data and fetch from Polygon"`
}

// ListStocksOutput is the response body for a listing page.
type ListStocksOutput struct {
	Body struct {
		Stocks     []domain.Stock `json:"stocks" doc:"Tickers on this page"`
		Offset     int            `json:"offset" doc:"Offset of this page" example:"0"`
		PageSize   int            `json:"page_size" doc:"Tickers per page" example:"50"`
		HasMore    bool           `json:"has_more" doc:"Whether another page follows"`
		NextOffset int            `json:"next_offset,omitempty" doc:"Offset of the next page when has_more is set" example:"50"`
	}
}

// SearchStocksInput is the request for a ticker search.
type SearchStocksInput struct {
	Query string `query:"q" required:"true" minLength:"1" doc:"Ticker or company name search term" example:"AAPL"`
	Fresh bool   `query:"fresh" doc:"Bypass cached data and fetch from Polygon"`
}

// SearchStocksOutput is the response body for a ticker search.
type SearchStocksOutput struct {
	Body struct {
		Query  string         `json:"query" doc:"Trimmed search term" example:"AAPL"`
		Stocks []domain.Stock `json:"stocks" doc:"First page of matching tickers"`
		Total  int            `json:"total" doc:"Number of tickers returned" example:"1"`
	}
}

// ListStocks returns one page of the ticker listing.
func (h *StocksHandler) ListStocks(ctx context.Context, input *ListStocksInput) (*ListStocksOutput, error) {
	size := h.source.PageSize()
	if input.Offset%size != 0 {
		return nil, huma.Error422UnprocessableEntity(
			fmt.Sprintf("offset must be a multiple of the page size (%d)", size),
		)
	}

	page, err := h.source.Fetch(ctx, explore.ListingKey(input.Offset), input.Fresh)
	if err != nil {
		return nil, fetchError(err)
	}

	resp := &ListStocksOutput{}
	resp.Body.Stocks = stocksOrEmpty(page.Results)
	resp.Body.Offset = input.Offset
	resp.Body.PageSize = size
	resp.Body.HasMore = page.HasNext()
	if resp.Body.HasMore {
		resp.Body.NextOffset = input.Offset + size
	}
	return resp, nil
}

// SearchStocks returns the first page of tickers matching the query.
func (h *StocksHandler) SearchStocks(ctx context.Context, input *SearchStocksInput) (*SearchStocksOutput, error) {
	term := strings.TrimSpace(input.Query)
	if term == "" {
		return nil, huma.Error422UnprocessableEntity("search query must not be blank")
	}

	page, err := h.source.Fetch(ctx, explore.SearchKey(term), input.Fresh)
	if err != nil {
		return nil, fetchError(err)
	}

	resp := &SearchStocksOutput{}
	resp.Body.Query = term
	resp.Body.Stocks = stocksOrEmpty(page.Results)
	resp.Body.Total = len(resp.Body.Stocks)
	return resp, nil
}

// fetchError maps a classified Polygon failure to an HTTP error carrying
// the user-facing message.
func fetchError(err error) error {
	msg := err.Error()
	switch polygon.KindOf(err) {
	case polygon.KindRateLimited:
		return huma.Error429TooManyRequests(msg)
	case polygon.KindConfiguration:
		return huma.Error503ServiceUnavailable(msg)
	default:
		return huma.Error502BadGateway(msg)
	}
}

func stocksOrEmpty(s []domain.Stock) []domain.Stock {
	if s == nil {
		return []domain.Stock{}
	}
	return s
}

// RegisterStocksRoutes registers stock listing and search endpoints with
// the Huma API.
func RegisterStocksRoutes(api huma.API, h *StocksHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-stocks",
		Method:      http.MethodGet,
		Path:        "/api/v1/stocks",
		Summary:     "List stocks",
		Description: "Returns one page of active tickers, served from the query cache while fresh.",
		Tags:        []string{"stocks"},
		Errors: []int{
			http.StatusUnprocessableEntity, http.StatusTooManyRequests,
			http.StatusBadGateway, http.StatusServiceUnavailable,
		},
	}, h.ListStocks)

	huma.Register(api, huma.Operation{
		OperationID: "search-stocks",
		Method:      http.MethodGet,
		Path:        "/api/v1/stocks/search",
		Summary:     "Search stocks",
		Description: "Returns the first page of tickers matching a ticker or company name.",
		Tags:        []string{"stocks"},
		Errors: []int{
			http.StatusUnprocessableEntity, http.StatusTooManyRequests,
			http.StatusBadGateway, http.StatusServiceUnavailable,
		},
	}, h.SearchStocks)
}
