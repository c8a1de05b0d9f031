package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/donaldgifford/borsa/internal/explore"
)

// Run opens an explorer session on source and blocks until the user quits
// or ctx is canceled.
func Run(ctx context.Context, source *explore.PageSource, opts ...Option) error {
	changes := NewSignal()

	cfg := &modelConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	var sessionOpts []explore.SessionOption
	if cfg.log != nil {
		sessionOpts = append(sessionOpts, explore.WithSessionLogger(cfg.log))
	}
	sessionOpts = append(sessionOpts, explore.WithOnChange(func(explore.Snapshot) {
		changes.Notify()
	}))

	session := explore.NewSession(source, sessionOpts...)
	defer session.Close()

	m := New(session, changes, opts...)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running explorer: %w", err)
	}
	return nil
}
