// Package polygon provides a client for the Polygon.io reference tickers API
// abstracted behind an interface for testability.
package polygon

import (
	"context"

	domain "github.com/donaldgifford/borsa/pkg/types"
)

// DefaultPageSize is the number of tickers requested per page.
const DefaultPageSize = 50

// TickersRequest defines the parameters for one tickers page.
type TickersRequest struct {
	Limit  int
	Offset int
	Search string // empty for plain listing
}

// Page is one immutable page of tickers.
type Page struct {
	Results []domain.Stock `json:"results"`
	NextURL string         `json:"next_url,omitempty"`
	Count   int            `json:"count,omitempty"`
}

// HasNext reports whether the remote API indicated more results after this
// page. An empty page never has a successor.
func (p *Page) HasNext() bool {
	return p != nil && p.NextURL != "" && len(p.Results) > 0
}

// TickerClient defines the interface for fetching ticker pages.
type TickerClient interface {
	FetchTickers(ctx context.Context, req TickersRequest) (*Page, error)
}
