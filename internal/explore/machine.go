package explore

import (
	"strings"

	"github.com/donaldgifford/borsa/internal/polygon"
	domain "github.com/donaldgifford/borsa/pkg/types"
)

// DefaultPageSize is the number of stocks per listing page.
const DefaultPageSize = polygon.DefaultPageSize

// Fetch is a page request emitted by the Machine. The caller performs it
// and reports the outcome with Settle.
type Fetch struct {
	Key PageKey
	// Generation ties a listing fetch to the listing session that issued it.
	Generation int
	// Force bypasses cache freshness.
	Force bool
}

// Snapshot is the presentation view of the explorer.
type Snapshot struct {
	Stocks             []domain.Stock `json:"stocks"`
	Loading            bool           `json:"loading"`
	Fetching           bool           `json:"fetching"`
	HasError           bool           `json:"has_error"`
	ErrorMessage       string         `json:"error_message,omitempty"`
	SearchQuery        string         `json:"search_query"`
	HasNextPage        bool           `json:"has_next_page"`
	IsFetchingNextPage bool           `json:"is_fetching_next_page"`
	Mode               string         `json:"mode"`
	Cursor             int            `json:"cursor"`
	Total              int            `json:"total"`
}

type listingSession struct {
	generation int
	cursor     int
	pages      []*polygon.Page
	pending    map[int]bool
	err        error
}

type searchSession struct {
	term     string
	page     *polygon.Page
	fetching bool
	err      error
}

// Machine is the listing/search state machine. It performs no I/O: every
// transition returns the fetches the caller must run, and results come
// back through Settle. A Machine is not safe for concurrent use.
type Machine struct {
	pageSize int
	mode     Mode
	listing  listingSession
	search   searchSession
}

// NewMachine returns an Idle machine. pageSize <= 0 uses DefaultPageSize.
func NewMachine(pageSize int) *Machine {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Machine{
		pageSize: pageSize,
		mode:     Idle{},
		listing:  listingSession{pending: make(map[int]bool)},
	}
}

// Mode returns the active mode.
func (m *Machine) Mode() Mode {
	return m.mode
}

// PageSize returns the listing page size.
func (m *Machine) PageSize() int {
	return m.pageSize
}

// Mount starts the first listing session. It is a no-op unless Idle.
func (m *Machine) Mount() []Fetch {
	if _, ok := m.mode.(Idle); !ok {
		return nil
	}
	m.mode = Listing{Cursor: 0}
	return m.requestListing(0, false)
}

// CanLoadMore reports whether LoadMore would request a page.
func (m *Machine) CanLoadMore() bool {
	if _, ok := m.mode.(Listing); !ok {
		return false
	}
	if len(m.listing.pending) > 0 {
		return false
	}
	return m.listingHasNext()
}

// LoadMore advances the listing cursor by one page when the last page
// had a continuation and nothing is being fetched. Otherwise it is a
// no-op.
func (m *Machine) LoadMore() []Fetch {
	if !m.CanLoadMore() {
		return nil
	}
	m.listing.cursor += m.pageSize
	m.mode = Listing{Cursor: m.listing.cursor}
	return m.requestListing(m.listing.cursor, false)
}

// SetSearch applies a (debounced) search term. A non-blank term switches
// to Searching; a blank term returns to Listing at the cursor held before
// the search, revalidating the listing pages already loaded.
func (m *Machine) SetSearch(term string) []Fetch {
	term = strings.TrimSpace(term)
	if term == "" {
		return m.clearSearch()
	}

	if s, ok := m.mode.(Searching); ok && s.Term == term {
		return nil
	}

	m.mode = Searching{Term: term}
	m.search = searchSession{term: term, fetching: true}
	return []Fetch{{Key: SearchKey(term)}}
}

func (m *Machine) clearSearch() []Fetch {
	if _, ok := m.mode.(Searching); !ok {
		return nil
	}
	m.search = searchSession{}
	m.mode = Listing{Cursor: m.listing.cursor}

	if len(m.listing.pages) == 0 {
		if len(m.listing.pending) > 0 {
			return nil
		}
		m.listing.cursor = 0
		m.mode = Listing{Cursor: 0}
		return m.requestListing(0, false)
	}

	fetches := make([]Fetch, 0, len(m.listing.pages))
	for i := range m.listing.pages {
		offset := i * m.pageSize
		if m.listing.pending[offset] {
			continue
		}
		fetches = append(fetches, m.requestListing(offset, false)...)
	}
	return fetches
}

// Refetch re-requests the active mode's data, bypassing freshness. In
// Listing every loaded page is refetched along with a page that failed
// to load.
func (m *Machine) Refetch() []Fetch {
	switch mode := m.mode.(type) {
	case Idle:
		return m.Mount()
	case Searching:
		m.search.fetching = true
		return []Fetch{{Key: SearchKey(mode.Term), Force: true}}
	default:
		var fetches []Fetch
		for offset := 0; offset <= m.listing.cursor; offset += m.pageSize {
			fetches = append(fetches, m.requestListing(offset, true)...)
		}
		return fetches
	}
}

// DropListing discards the listing session, as after its cached pages
// were evicted. Fetches still in flight for it will be ignored. In Listing
// mode the first page is requested again.
func (m *Machine) DropListing() []Fetch {
	m.listing = listingSession{
		generation: m.listing.generation + 1,
		pending:    make(map[int]bool),
	}
	if _, ok := m.mode.(Listing); !ok {
		return nil
	}
	m.mode = Listing{Cursor: 0}
	return m.requestListing(0, false)
}

// ListingOffsets returns the offsets of the loaded listing pages.
func (m *Machine) ListingOffsets() []int {
	offsets := make([]int, len(m.listing.pages))
	for i := range m.listing.pages {
		offsets[i] = i * m.pageSize
	}
	return offsets
}

// ActiveKeys returns the cache keys the active mode renders from.
func (m *Machine) ActiveKeys() []PageKey {
	switch mode := m.mode.(type) {
	case Searching:
		return []PageKey{SearchKey(mode.Term)}
	case Listing:
		keys := make([]PageKey, 0, m.listing.cursor/m.pageSize+1)
		for offset := 0; offset <= m.listing.cursor; offset += m.pageSize {
			keys = append(keys, ListingKey(offset))
		}
		return keys
	default:
		return nil
	}
}

func (m *Machine) requestListing(offset int, force bool) []Fetch {
	m.listing.pending[offset] = true
	return []Fetch{{
		Key:        ListingKey(offset),
		Generation: m.listing.generation,
		Force:      force,
	}}
}

// Settle merges the outcome of f. Results for a superseded search term or
// an older listing session are dropped. Listing pages are appended in
// cursor order or replaced in place when refreshed; a search page replaces
// the previous one. An error is kept until the same query succeeds.
func (m *Machine) Settle(f Fetch, page *polygon.Page, err error) {
	if f.Key.IsSearch() {
		m.settleSearch(f, page, err)
		return
	}
	m.settleListing(f, page, err)
}

// Revalidate marks f in flight again after its cached data was merged with
// Settle, so the view reports the refresh and LoadMore waits for it.
func (m *Machine) Revalidate(f Fetch) {
	if f.Key.IsSearch() {
		if f.Key.Term == m.search.term {
			m.search.fetching = true
		}
		return
	}
	if f.Generation == m.listing.generation {
		m.listing.pending[f.Key.Offset] = true
	}
}

func (m *Machine) settleSearch(f Fetch, page *polygon.Page, err error) {
	if f.Key.Term != m.search.term {
		return
	}
	m.search.fetching = false
	if err != nil {
		m.search.err = err
		return
	}
	m.search.page = page
	m.search.err = nil
}

func (m *Machine) settleListing(f Fetch, page *polygon.Page, err error) {
	if f.Generation != m.listing.generation {
		return
	}
	delete(m.listing.pending, f.Key.Offset)
	if err != nil {
		m.listing.err = err
		return
	}
	if page == nil {
		page = &polygon.Page{}
	}

	idx := f.Key.Offset / m.pageSize
	switch {
	case idx < len(m.listing.pages):
		m.listing.pages[idx] = page
	case idx == len(m.listing.pages):
		m.listing.pages = append(m.listing.pages, page)
	default:
		return
	}
	m.listing.err = nil
}

func (m *Machine) listingHasNext() bool {
	n := len(m.listing.pages)
	if n == 0 || n*m.pageSize <= m.listing.cursor {
		return false
	}
	return m.listing.pages[n-1].HasNext()
}

// View derives the presentation snapshot from the active mode only.
func (m *Machine) View() Snapshot {
	snap := Snapshot{
		Stocks: []domain.Stock{},
		Mode:   m.mode.Name(),
	}

	switch mode := m.mode.(type) {
	case Listing:
		for _, p := range m.listing.pages {
			snap.Stocks = append(snap.Stocks, p.Results...)
		}
		fetching := len(m.listing.pending) > 0
		snap.Fetching = fetching
		snap.Loading = fetching && len(m.listing.pages) == 0
		snap.HasNextPage = m.listingHasNext()
		snap.IsFetchingNextPage = mode.Cursor > 0 && m.listing.pending[mode.Cursor] &&
			len(m.listing.pages)*m.pageSize <= mode.Cursor
		snap.Cursor = mode.Cursor
		if m.listing.err != nil {
			snap.HasError = true
			snap.ErrorMessage = m.listing.err.Error()
		}
	case Searching:
		snap.SearchQuery = mode.Term
		if m.search.page != nil {
			snap.Stocks = append(snap.Stocks, m.search.page.Results...)
		}
		snap.Fetching = m.search.fetching
		snap.Loading = m.search.fetching && m.search.page == nil
		if m.search.err != nil {
			snap.HasError = true
			snap.ErrorMessage = m.search.err.Error()
		}
	}

	snap.Total = len(snap.Stocks)
	return snap
}
