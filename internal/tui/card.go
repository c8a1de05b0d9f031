package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	domain "github.com/donaldgifford/borsa/pkg/types"
)

const (
	cardWidth  = 40 // content columns
	cardHeight = 8  // content rows
)

// cardOuterWidth is a card's rendered width including padding and border.
const cardOuterWidth = cardWidth + 4

// cardOuterHeight is a card's rendered height including border.
const cardOuterHeight = cardHeight + 2

func renderCard(s *Styles, st *domain.Stock, selected bool) string {
	badge := s.Inactive.Render(st.Status())
	if st.Active {
		badge = s.Active.Render(st.Status())
	}
	head := s.Ticker.Render(st.Ticker) + " " + badge
	exchange := s.Dim.Render(st.PrimaryExchange)
	gap := max(cardWidth-lipgloss.Width(head)-lipgloss.Width(exchange), 1)

	lines := []string{
		head + strings.Repeat(" ", gap) + exchange,
		s.Name.Render(truncate(st.Name, cardWidth)),
		s.Label.Render("Market Cap ") + domain.FormatMarketCap(st.MarketCap),
	}

	var meta []string
	if st.CurrencyName != "" {
		meta = append(meta, s.Label.Render("Currency ")+strings.ToUpper(st.CurrencyName))
	}
	if st.Type != "" {
		meta = append(meta, s.Label.Render("Type ")+st.Type)
	}
	if len(meta) > 0 {
		lines = append(lines, strings.Join(meta, "  "))
	}
	if st.Description != "" {
		lines = append(lines, "", s.Dim.Render(domain.TruncateDescription(st.Description)))
	}

	box := s.Card
	if selected {
		box = s.CardSelected
	}
	return box.Render(strings.Join(lines, "\n"))
}

// truncate shortens s to at most w columns, marking the cut with an
// ellipsis.
func truncate(s string, w int) string {
	if lipgloss.Width(s) <= w {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > w {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
