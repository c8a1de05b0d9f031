// Package tui renders an explorer session as a terminal card grid with a
// debounced search box.
package tui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/donaldgifford/borsa/internal/explore"
)

const searchPlaceholder = "Search stocks by ticker or company name..."

// Explorer is the presentation interface of an explorer session.
type Explorer interface {
	Snapshot() explore.Snapshot
	LoadMore() explore.Snapshot
	UpdateSearch(term string) explore.Snapshot
	ClearSearch() explore.Snapshot
	Refetch() explore.Snapshot
}

// Signal is a coalescing change notification. Notify never blocks.
type Signal chan struct{}

// NewSignal returns a ready Signal.
func NewSignal() Signal {
	return make(Signal, 1)
}

// Notify records that the explorer changed.
func (s Signal) Notify() {
	select {
	case s <- struct{}{}:
	default:
	}
}

type changedMsg struct{}

func (s Signal) wait() tea.Cmd {
	return func() tea.Msg {
		<-s
		return changedMsg{}
	}
}

// Model is the bubbletea model for the explorer screen.
type Model struct {
	explorer  Explorer
	changes   Signal
	debouncer *explore.Debouncer
	log       *slog.Logger

	keys    keyMap
	styles  *Styles
	input   textinput.Model
	spinner spinner.Model
	help    help.Model

	snap      explore.Snapshot
	lastInput string
	selected  int
	top       int // first visible row
	width     int
	height    int
}

// Option configures a Model.
type Option func(*modelConfig)

type modelConfig struct {
	debounce time.Duration
	styles   *Styles
	log      *slog.Logger
}

// WithDebounce sets the search quiet period.
func WithDebounce(d time.Duration) Option {
	return func(c *modelConfig) {
		c.debounce = d
	}
}

// WithStyles overrides the color scheme.
func WithStyles(s *Styles) Option {
	return func(c *modelConfig) {
		c.styles = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *modelConfig) {
		c.log = l
	}
}

// New creates the explorer model. changes must be notified whenever the
// explorer's snapshot changes outside of a model call.
func New(explorer Explorer, changes Signal, opts ...Option) *Model {
	cfg := &modelConfig{
		debounce: explore.DefaultDebounce,
		styles:   DefaultStyles(),
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	in := textinput.New()
	in.Placeholder = searchPlaceholder
	in.Prompt = "🔍 "
	in.CharLimit = 128
	in.Width = 60
	in.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := &Model{
		explorer: explorer,
		changes:  changes,
		log:      cfg.log,
		keys:     defaultKeyMap(),
		styles:   cfg.styles,
		input:    in,
		spinner:  sp,
		help:     help.New(),
		snap:     explorer.Snapshot(),
		width:    80,
		height:   24,
	}
	m.debouncer = explore.NewDebouncer(cfg.debounce, func(term string) {
		m.explorer.UpdateSearch(term)
		m.changes.Notify()
	})
	return m
}

// Close stops a pending debounced search.
func (m *Model) Close() {
	m.debouncer.Cancel()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.changes.wait(), func() tea.Msg { return changedMsg{} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-10, 20)
		m.scrollToSelection()
		m.maybeLoadMore()
		return m, nil

	case changedMsg:
		m.apply(m.explorer.Snapshot())
		return m, m.changes.wait()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.input.Focused() {
			return m, m.updateInput(msg)
		}
		return m, m.updateGrid(msg)
	}

	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case msg.Type == tea.KeyEsc:
		if m.input.Value() == "" {
			m.input.Blur()
			return nil
		}
		m.clearSearch()
		return nil
	case key.Matches(msg, m.keys.Blur):
		m.input.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != m.lastInput {
		m.lastInput = v
		m.debouncer.Push(v)
	}
	return cmd
}

func (m *Model) updateGrid(msg tea.KeyMsg) tea.Cmd {
	cols := m.columns()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Search):
		m.input.Focus()
		return textinput.Blink
	case key.Matches(msg, m.keys.Clear):
		if m.snap.SearchQuery != "" || m.input.Value() != "" {
			m.clearSearch()
		}
	case key.Matches(msg, m.keys.Refetch):
		m.log.Debug("refetch requested")
		m.apply(m.explorer.Refetch())
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Up):
		m.move(-cols)
	case key.Matches(msg, m.keys.Down):
		m.move(cols)
	case key.Matches(msg, m.keys.Left):
		m.move(-1)
	case key.Matches(msg, m.keys.Right):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-cols * m.visibleRows())
	case key.Matches(msg, m.keys.PageDown):
		m.move(cols * m.visibleRows())
	case key.Matches(msg, m.keys.Top):
		m.move(-len(m.snap.Stocks))
	case key.Matches(msg, m.keys.Bottom):
		m.move(len(m.snap.Stocks))
	}
	return nil
}

func (m *Model) clearSearch() {
	m.input.SetValue("")
	m.lastInput = ""
	m.debouncer.Cancel()
	m.apply(m.explorer.ClearSearch())
}

// apply installs a new snapshot, resetting the selection when the result
// set changes identity.
func (m *Model) apply(snap explore.Snapshot) {
	if snap.Mode != m.snap.Mode || snap.SearchQuery != m.snap.SearchQuery {
		m.selected = 0
		m.top = 0
	}
	m.snap = snap
	if n := len(snap.Stocks); m.selected >= n {
		m.selected = max(n-1, 0)
	}
	m.scrollToSelection()
	m.maybeLoadMore()
}

func (m *Model) move(delta int) {
	n := len(m.snap.Stocks)
	if n == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), n-1)
	m.scrollToSelection()
	m.maybeLoadMore()
}

// maybeLoadMore requests the next page once the last card is on screen.
func (m *Model) maybeLoadMore() {
	n := len(m.snap.Stocks)
	if n == 0 || !m.snap.HasNextPage || m.snap.Loading || m.snap.IsFetchingNextPage {
		return
	}
	lastRow := (n - 1) / m.columns()
	if lastRow >= m.top+m.visibleRows() {
		return
	}
	m.log.Debug("last card visible, loading more", "stocks", n)
	m.snap = m.explorer.LoadMore()
}

func (m *Model) columns() int {
	return max(m.width/(cardOuterWidth+1), 1)
}

func (m *Model) visibleRows() int {
	// title, search box, status line, footer and help
	const chrome = 9
	return max((m.height-chrome)/cardOuterHeight, 1)
}

func (m *Model) scrollToSelection() {
	row := m.selected / m.columns()
	rows := m.visibleRows()
	switch {
	case row < m.top:
		m.top = row
	case row >= m.top+rows:
		m.top = row - rows + 1
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("BORSA"))
	b.WriteString("\n")
	b.WriteString(m.styles.Search.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.body())
	b.WriteString("\n")
	if m.snap.IsFetchingNextPage {
		b.WriteString(m.spinner.View() + " Loading more stocks...")
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render(m.help.View(m.keys)))

	return b.String()
}

func (m *Model) statusLine() string {
	if m.snap.SearchQuery == "" {
		if m.snap.Fetching && len(m.snap.Stocks) > 0 {
			return m.styles.Status.Render(m.spinner.View() + " Refreshing...")
		}
		return ""
	}
	n := len(m.snap.Stocks)
	noun := "results"
	if n == 1 {
		noun = "result"
	}
	return m.styles.Status.Render(fmt.Sprintf("%d %s for %q", n, noun, m.snap.SearchQuery)) +
		"  " + m.styles.Key.Render("esc") + m.styles.Status.Render(" Clear Search")
}

func (m *Model) body() string {
	switch {
	case m.snap.HasError:
		return m.panel("Something went wrong",
			m.styles.Error.Render(m.snap.ErrorMessage)+"\n\n"+
				m.styles.Key.Render("r")+" Try Again")
	case m.snap.Loading && len(m.snap.Stocks) == 0:
		return m.panel("", m.spinner.View()+" Loading stocks...")
	case len(m.snap.Stocks) == 0:
		if m.snap.SearchQuery != "" {
			return m.panel("No stocks found",
				fmt.Sprintf("No stocks match your search for %q", m.snap.SearchQuery)+"\n\n"+
					m.styles.Key.Render("esc")+" Clear Search")
		}
		return m.panel("No stocks found", "No stocks available at the moment")
	}
	return m.grid()
}

func (m *Model) panel(title, content string) string {
	if title != "" {
		content = m.styles.PanelTitle.Render(title) + "\n" + content
	}
	box := m.styles.Panel.Render(content)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, box)
}

func (m *Model) grid() string {
	cols := m.columns()
	stocks := m.snap.Stocks
	first := m.top * cols
	last := min((m.top+m.visibleRows())*cols, len(stocks))

	var rows []string
	for start := first; start < last; start += cols {
		end := min(start+cols, last)
		cards := make([]string, 0, cols)
		for i := start; i < end; i++ {
			cards = append(cards, renderCard(m.styles, &stocks[i], i == m.selected && !m.input.Focused()))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, spaced(cards)...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func spaced(cards []string) []string {
	out := make([]string, 0, len(cards)*2)
	for i, c := range cards {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, c)
	}
	return out
}
