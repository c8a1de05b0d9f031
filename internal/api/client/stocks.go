package client

import (
	"context"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/borsa/pkg/types"
)

// StocksPage is one page of the ticker listing.
type StocksPage struct {
	Stocks     []domain.Stock `json:"stocks"`
	Offset     int            `json:"offset"`
	PageSize   int            `json:"page_size"`
	HasMore    bool           `json:"has_more"`
	NextOffset int            `json:"next_offset,omitempty"`
}

// SearchResult is the first page of tickers matching a search term.
type SearchResult struct {
	Query  string         `json:"query"`
	Stocks []domain.Stock `json:"stocks"`
	Total  int            `json:"total"`
}

// ListStocks returns the listing page at offset. With fresh set the server
// bypasses its cache.
func (c *Client) ListStocks(ctx context.Context, offset int, fresh bool) (*StocksPage, error) {
	q := url.Values{}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if fresh {
		q.Set("fresh", "true")
	}

	var page StocksPage
	if err := c.get(ctx, "/api/v1/stocks", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SearchStocks returns tickers matching term.
func (c *Client) SearchStocks(ctx context.Context, term string, fresh bool) (*SearchResult, error) {
	q := url.Values{}
	q.Set("q", term)
	if fresh {
		q.Set("fresh", "true")
	}

	var res SearchResult
	if err := c.get(ctx, "/api/v1/stocks/search", q, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
