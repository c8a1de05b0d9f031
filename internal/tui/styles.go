package tui

import "github.com/charmbracelet/lipgloss"

// Styles holds the lipgloss styles used by the explorer view.
type Styles struct {
	Title        lipgloss.Style
	Search       lipgloss.Style
	Status       lipgloss.Style
	Card         lipgloss.Style
	CardSelected lipgloss.Style
	Ticker       lipgloss.Style
	Active       lipgloss.Style
	Inactive     lipgloss.Style
	Name         lipgloss.Style
	Label        lipgloss.Style
	Dim          lipgloss.Style
	Panel        lipgloss.Style
	PanelTitle   lipgloss.Style
	Error        lipgloss.Style
	Key          lipgloss.Style
	Help         lipgloss.Style
}

// DefaultStyles returns the default color scheme.
func DefaultStyles() *Styles {
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("241")).
		Padding(0, 1).
		Width(cardWidth + 2).
		Height(cardHeight)

	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99")).
			MarginBottom(1),
		Search: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1),
		Status:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Card:         card,
		CardSelected: card.BorderForeground(lipgloss.Color("99")),
		Ticker:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Active: lipgloss.NewStyle().
			Foreground(lipgloss.Color("22")).
			Background(lipgloss.Color("157")).
			Padding(0, 1),
		Inactive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("88")).
			Background(lipgloss.Color("224")).
			Padding(0, 1),
		Name:  lipgloss.NewStyle().Bold(true),
		Label: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Dim:   lipgloss.NewStyle().Faint(true),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(1, 4).
			Align(lipgloss.Center),
		PanelTitle: lipgloss.NewStyle().Bold(true).MarginBottom(1),
		Error:      lipgloss.NewStyle().Foreground(lipgloss.Color("203")), // red
		Key:        lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
		Help:       lipgloss.NewStyle().Faint(true),
	}
}
