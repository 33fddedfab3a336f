package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// Run launches the TUI and blocks until the user quits. The error is the
// program's own failure; backend errors are shown in the view and do not end
// the session.
func Run(ctx context.Context, opts Options) error {
	m := NewModel(ctx, opts)
	prog := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	_, err := prog.Run()
	m.cancel()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
