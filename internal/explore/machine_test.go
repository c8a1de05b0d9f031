package explore_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/borsa/internal/explore"
	"github.com/donaldgifford/borsa/internal/polygon"
	domain "github.com/donaldgifford/borsa/pkg/types"
)

func makePage(offset, n int, next bool) *polygon.Page {
	p := &polygon.Page{Results: make([]domain.Stock, n), Count: n}
	for i := range n {
		p.Results[i] = domain.Stock{Ticker: fmt.Sprintf("T%04d", offset+i), Active: true}
	}
	if next {
		p.NextURL = "https://api.polygon.io/v3/reference/tickers?cursor=next"
	}
	return p
}

func searchPage(tickers ...string) *polygon.Page {
	p := &polygon.Page{Count: len(tickers)}
	for _, t := range tickers {
		p.Results = append(p.Results, domain.Stock{Ticker: t})
	}
	return p
}

func single(t *testing.T, fetches []explore.Fetch) explore.Fetch {
	t.Helper()
	require.Len(t, fetches, 1)
	return fetches[0]
}

// mountedWithPages returns a machine in Listing mode with n full pages
// settled. The last page has a continuation when more is true.
func mountedWithPages(t *testing.T, n int, more bool) *explore.Machine {
	t.Helper()

	m := explore.NewMachine(50)
	f := single(t, m.Mount())
	for i := range n {
		last := i == n-1
		m.Settle(f, makePage(i*50, 50, !last || more), nil)
		if !last {
			f = single(t, m.LoadMore())
		}
	}
	return m
}

func TestMachine_Mount(t *testing.T) {
	t.Parallel()

	m := explore.NewMachine(0)
	assert.Equal(t, explore.DefaultPageSize, m.PageSize())
	assert.Equal(t, explore.ModeIdle, m.View().Mode)
	assert.Nil(t, m.LoadMore(), "load more is ignored before mount")

	f := single(t, m.Mount())
	assert.Equal(t, explore.ListingKey(0), f.Key)
	assert.False(t, f.Force)

	snap := m.View()
	assert.Equal(t, explore.ModeListing, snap.Mode)
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.Stocks)
	assert.False(t, snap.HasNextPage)
	assert.False(t, snap.IsFetchingNextPage, "first page is not a next page")

	assert.Nil(t, m.Mount(), "mount only leaves Idle")

	m.Settle(f, makePage(0, 50, true), nil)
	snap = m.View()
	assert.False(t, snap.Loading)
	assert.Len(t, snap.Stocks, 50)
	assert.True(t, snap.HasNextPage)
	assert.Equal(t, 50, snap.Total)
}

func TestMachine_LoadMoreAppendsInOrder(t *testing.T) {
	t.Parallel()

	m := mountedWithPages(t, 1, true)

	f := single(t, m.LoadMore())
	assert.Equal(t, explore.ListingKey(50), f.Key)
	assert.Equal(t, explore.Listing{Cursor: 50}, m.Mode())

	snap := m.View()
	assert.True(t, snap.IsFetchingNextPage)
	assert.False(t, snap.Loading, "existing pages stay rendered")
	assert.Len(t, snap.Stocks, 50)

	assert.Nil(t, m.LoadMore(), "a second load more while fetching is coalesced")
	assert.Equal(t, 50, m.View().Cursor)

	m.Settle(f, makePage(50, 50, true), nil)
	snap = m.View()
	require.Len(t, snap.Stocks, 100)
	assert.Equal(t, "T0000", snap.Stocks[0].Ticker)
	assert.Equal(t, "T0050", snap.Stocks[50].Ticker)
	assert.Equal(t, "T0099", snap.Stocks[99].Ticker)
	assert.False(t, snap.IsFetchingNextPage)
}

func TestMachine_LoadMoreWithoutNextPageIsNoOp(t *testing.T) {
	t.Parallel()

	m := mountedWithPages(t, 2, false)
	before := m.View()
	require.False(t, before.HasNextPage)

	for range 5 {
		assert.Nil(t, m.LoadMore())
	}
	assert.Equal(t, before, m.View())
	assert.Equal(t, explore.Listing{Cursor: 50}, m.Mode())
}

func TestMachine_EmptyPageEndsListing(t *testing.T) {
	t.Parallel()

	m := explore.NewMachine(50)
	f := single(t, m.Mount())
	m.Settle(f, makePage(0, 50, true), nil)

	f = single(t, m.LoadMore())
	m.Settle(f, &polygon.Page{NextURL: "https://api.polygon.io/next"}, nil)

	snap := m.View()
	assert.False(t, snap.HasNextPage, "an empty page has no successor even with a token")
	assert.Len(t, snap.Stocks, 50)
	assert.Nil(t, m.LoadMore())
}

func TestMachine_SearchSingleResult(t *testing.T) {
	t.Parallel()

	m := mountedWithPages(t, 1, true)

	f := single(t, m.SetSearch("AAPL"))
	assert.Equal(t, explore.SearchKey("AAPL"), f.Key)
	assert.Equal(t, explore.Searching{Term: "AAPL"}, m.Mode())

	snap := m.View()
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.Stocks, "listing results are never mixed into a search")
	assert.False(t, snap.HasNextPage)
	assert.Nil(t, m.LoadMore(), "load more is disabled while searching")

	m.Settle(f, searchPage("AAPL"), nil)
	snap = m.View()
	require.Len(t, snap.Stocks, 1)
	assert.Equal(t, "AAPL", snap.Stocks[0].Ticker)
	assert.False(t, snap.HasNextPage)
	assert.Equal(t, "AAPL", snap.SearchQuery)
	assert.Equal(t, explore.ModeSearching, snap.Mode)

	assert.Nil(t, m.SetSearch("AAPL"), "same term does not refetch")
	assert.Nil(t, m.SetSearch("  AAPL "), "term is trimmed")
}

func TestMachine_SearchReplacesResults(t *testing.T) {
	t.Parallel()

	m := mountedWithPages(t, 1, true)
	f := single(t, m.SetSearch("APP"))
	m.Settle(f, searchPage("APP", "AAPL", "APPN"), nil)
	assert.Len(t, m.View().Stocks, 3)

	f = single(t, m.SetSearch("APPL"))
	assert.Empty(t, m.View().Stocks, "a new term starts a fresh search session")
	m.Settle(f, searchPage("AAPL"), nil)
	assert.Len(t, m.View().Stocks, 1)
}

func TestMachine_SupersededSearchIsDropped(t *testing.T) {
	t.Parallel()

	m := explore.NewMachine(50)
	single(t, m.Mount())

	first := single(t, m.SetSearch("MSF"))
	second := single(t, m.SetSearch("MSFT"))

	m.Settle(first, searchPage("MSFA", "MSFB"), nil)
	snap := m.View()
	assert.Empty(t, snap.Stocks)
	assert.True(t, snap.Loading)

	m.Settle(second, searchPage("MSFT"), nil)
	snap = m.View()
	require.Len(t, snap.Stocks, 1)
	assert.Equal(t, "MSFT", snap.Stocks[0].Ticker)
}

func TestMachine_ClearSearchRestoresListing(t *testing.T) {
	t.Parallel()

	m := mountedWithPages(t, 3, true)
	before := m.View()
	require.Equal(t, 100, before.Cursor)

	f := single(t, m.SetSearch("NVDA"))
	m.Settle(f, searchPage("NVDA"), nil)

	revalidate := m.SetSearch("")
	require.Len(t, revalidate, 3)
	for i, rf := range revalidate {
		assert.Equal(t, explore.ListingKey(i*50), rf.Key)
		assert.False(t, rf.Force)
	}
	assert.Equal(t, explore.Listing{Cursor: 100}, m.Mode(), "cursor is not reset")

	for i, rf := range revalidate {
		m.Settle(rf, makePage(i*50, 50, true), nil)
	}
	assert.Equal(t, before, m.View())

	assert.Nil(t, m.SetSearch(""), "clearing while listing is a no-op")
}

func TestMachine_ListingFetchDuringSearchIsKeptButHidden(t *testing.T) {
	t.Parallel()

	m := mountedWithPages(t, 1, true)
	more := single(t, m.LoadMore())

	sf := single(t, m.SetSearch("TSLA"))
	m.Settle(more, makePage(50, 50, true), nil)

	snap := m.View()
	assert.Empty(t, snap.Stocks)
	assert.False(t, snap.IsFetchingNextPage)

	m.Settle(sf, searchPage("TSLA"), nil)
	assert.Len(t, m.View().Stocks, 1)

	revalidate := m.SetSearch("")
	assert.Len(t, revalidate, 2)
	snap = m.View()
	assert.Len(t, snap.Stocks, 100, "the page that landed during the search is part of the listing")
	assert.Equal(t, 50, snap.Cursor)
}

func TestMachine_SearchFromIdleThenClearMounts(t *testing.T) {
	t.Parallel()

	m := explore.NewMachine(50)
	single(t, m.SetSearch("AMD"))

	f := single(t, m.SetSearch(""))
	assert.Equal(t, explore.ListingKey(0), f.Key)
	assert.Equal(t, explore.Listing{Cursor: 0}, m.Mode())
	assert.True(t, m.View().Loading)
}

func TestMachine_ErrorsFollowActiveMode(t *testing.T) {
	t.Parallel()

	limited := &polygon.Error{Kind: polygon.KindRateLimited, Message: polygon.MsgRateLimited}

	m := explore.NewMachine(50)
	f := single(t, m.Mount())
	m.Settle(f, nil, limited)

	snap := m.View()
	assert.True(t, snap.HasError)
	assert.Equal(t, "Rate limit exceeded. Please try again later.", snap.ErrorMessage)
	assert.False(t, snap.Loading)

	sf := single(t, m.SetSearch("AAPL"))
	snap = m.View()
	assert.False(t, snap.HasError, "listing error is not shown while searching")

	m.Settle(sf, nil, &polygon.Error{Kind: polygon.KindUnauthorized, Message: polygon.MsgUnauthorized})
	snap = m.View()
	assert.True(t, snap.HasError)
	assert.Equal(t, polygon.MsgUnauthorized, snap.ErrorMessage)

	rf := single(t, m.SetSearch(""))
	snap = m.View()
	assert.True(t, snap.HasError, "listing error persists until it succeeds")
	assert.Equal(t, polygon.MsgRateLimited, snap.ErrorMessage)

	m.Settle(rf, makePage(0, 10, false), nil)
	snap = m.View()
	assert.False(t, snap.HasError)
	assert.Empty(t, snap.ErrorMessage)
	assert.Len(t, snap.Stocks, 10)
}

func TestMachine_Refetch(t *testing.T) {
	t.Parallel()

	t.Run("listing refetches every page", func(t *testing.T) {
		t.Parallel()

		m := mountedWithPages(t, 2, true)
		fetches := m.Refetch()
		require.Len(t, fetches, 2)
		for i, f := range fetches {
			assert.Equal(t, explore.ListingKey(i*50), f.Key)
			assert.True(t, f.Force)
		}

		m.Settle(fetches[1], makePage(1000, 50, false), nil)
		snap := m.View()
		assert.Len(t, snap.Stocks, 100)
		assert.Equal(t, "T1000", snap.Stocks[50].Ticker, "refreshed pages replace in place")
		assert.False(t, snap.HasNextPage)
	})

	t.Run("listing refetch retries a failed next page", func(t *testing.T) {
		t.Parallel()

		m := mountedWithPages(t, 1, true)
		more := single(t, m.LoadMore())
		m.Settle(more, nil, errors.New("boom"))
		assert.Nil(t, m.LoadMore())

		fetches := m.Refetch()
		require.Len(t, fetches, 2)
		m.Settle(fetches[0], makePage(0, 50, true), nil)
		m.Settle(fetches[1], makePage(50, 50, true), nil)

		snap := m.View()
		assert.False(t, snap.HasError)
		assert.Len(t, snap.Stocks, 100)
		assert.True(t, snap.HasNextPage)
	})

	t.Run("search refetches the term", func(t *testing.T) {
		t.Parallel()

		m := mountedWithPages(t, 1, true)
		single(t, m.SetSearch("AAPL"))
		f := single(t, m.Refetch())
		assert.Equal(t, explore.SearchKey("AAPL"), f.Key)
		assert.True(t, f.Force)
	})

	t.Run("idle mounts", func(t *testing.T) {
		t.Parallel()

		m := explore.NewMachine(50)
		f := single(t, m.Refetch())
		assert.Equal(t, explore.ListingKey(0), f.Key)
	})
}

func TestMachine_DropListing(t *testing.T) {
	t.Parallel()

	m := mountedWithPages(t, 2, true)
	stale := single(t, m.LoadMore())

	single(t, m.SetSearch("META"))
	assert.Nil(t, m.DropListing(), "no fetch while searching")

	f := single(t, m.SetSearch(""))
	assert.Equal(t, explore.ListingKey(0), f.Key)
	assert.Equal(t, explore.Listing{Cursor: 0}, m.Mode())

	m.Settle(stale, makePage(100, 50, true), nil)
	assert.Empty(t, m.View().Stocks, "fetches from the dropped session are ignored")

	m.Settle(f, makePage(0, 50, true), nil)
	snap := m.View()
	assert.Len(t, snap.Stocks, 50)
	assert.Equal(t, 0, snap.Cursor)
}

func TestMachine_Revalidate(t *testing.T) {
	t.Parallel()

	t.Run("listing page", func(t *testing.T) {
		t.Parallel()

		m := mountedWithPages(t, 1, true)
		f := explore.Fetch{Key: explore.ListingKey(0)}
		m.Revalidate(f)

		snap := m.View()
		assert.True(t, snap.Fetching)
		assert.False(t, snap.Loading)
		assert.Len(t, snap.Stocks, 50)
		assert.False(t, m.CanLoadMore())
		assert.Nil(t, m.LoadMore())

		m.Settle(f, makePage(0, 50, true), nil)
		assert.False(t, m.View().Fetching)
		assert.True(t, m.CanLoadMore())
	})

	t.Run("dropped listing session", func(t *testing.T) {
		t.Parallel()

		m := mountedWithPages(t, 1, true)
		old := explore.Fetch{Key: explore.ListingKey(0)}
		f := single(t, m.DropListing())
		m.Settle(f, makePage(0, 50, true), nil)

		m.Revalidate(old)
		assert.False(t, m.View().Fetching)
		assert.True(t, m.CanLoadMore())
	})

	t.Run("search term", func(t *testing.T) {
		t.Parallel()

		m := explore.NewMachine(50)
		f := single(t, m.SetSearch("X"))
		m.Settle(f, searchPage("XOM"), nil)
		m.Revalidate(f)

		snap := m.View()
		assert.True(t, snap.Fetching)
		assert.False(t, snap.Loading)
		assert.Len(t, snap.Stocks, 1)

		g := single(t, m.SetSearch("Y"))
		m.Settle(g, searchPage("YUM"), nil)
		m.Revalidate(f)
		assert.False(t, m.View().Fetching, "superseded term is ignored")
	})
}

func TestMachine_ActiveKeys(t *testing.T) {
	t.Parallel()

	m := mountedWithPages(t, 2, true)
	assert.Equal(t, []explore.PageKey{explore.ListingKey(0), explore.ListingKey(50)}, m.ActiveKeys())
	assert.Equal(t, []int{0, 50}, m.ListingOffsets())

	single(t, m.SetSearch("AAPL"))
	assert.Equal(t, []explore.PageKey{explore.SearchKey("AAPL")}, m.ActiveKeys())
}

func TestPageKey_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "stocks:100", explore.ListingKey(100).String())
	assert.Equal(t, `stocks-search:"AAPL"`, explore.SearchKey("AAPL").String())
	assert.True(t, explore.SearchKey("x").IsSearch())
	assert.False(t, explore.ListingKey(0).IsSearch())
}
