// Package explore holds the listing/search state machine behind the stock
// explorer, and the session, debouncer and registry that drive it.
package explore

import (
	"fmt"
	"strconv"
)

// Mode is the explorer's active query stream. It is one of Idle, Listing
// or Searching.
type Mode interface {
	Name() string
	isMode()
}

// Idle is the state before the first listing page is requested.
type Idle struct{}

// Listing browses the paginated ticker list. Cursor is the offset of the
// most recently requested page.
type Listing struct {
	Cursor int
}

// Searching shows the single result page for Term.
type Searching struct {
	Term string
}

// Mode names as reported in snapshots.
const (
	ModeIdle      = "idle"
	ModeListing   = "listing"
	ModeSearching = "searching"
)

func (Idle) Name() string      { return ModeIdle }
func (Listing) Name() string   { return ModeListing }
func (Searching) Name() string { return ModeSearching }

func (Idle) isMode()      {}
func (Listing) isMode()   {}
func (Searching) isMode() {}

// PageKey identifies one cached page. An empty Term is a listing page at
// Offset; a non-empty Term is the search page for that term.
type PageKey struct {
	Term   string
	Offset int
}

// ListingKey returns the key of the listing page at offset.
func ListingKey(offset int) PageKey {
	return PageKey{Offset: offset}
}

// SearchKey returns the key of the search page for term.
func SearchKey(term string) PageKey {
	return PageKey{Term: term}
}

// IsSearch reports whether k is a search page.
func (k PageKey) IsSearch() bool {
	return k.Term != ""
}

// String returns the cache key.
func (k PageKey) String() string {
	if k.IsSearch() {
		return fmt.Sprintf("stocks-search:%q", k.Term)
	}
	return "stocks:" + strconv.Itoa(k.Offset)
}
