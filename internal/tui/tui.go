// Package tui is the interactive dashboard: a menu with a live status
// overview from which the operator opens the head, account, node and
// status screens.
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hexcore/hexcore-cli/internal/api"
)

// Run starts the dashboard on the alternate screen and blocks until the
// operator quits. The returned error is non-nil when the session could
// not start, including when the first status fetch fails.
func Run(ctx context.Context, client *api.Client, opts Options) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Info == "" {
		opts.Info = client.BaseURL()
	}

	p := tea.NewProgram(NewModel(ctx, client, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	if m, ok := final.(Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}
