package cmd

import (
	"github.com/spf13/cobra"

	"vidfetch/internal/dispatch"
	"vidfetch/internal/logger"
	"vidfetch/internal/progress"
	"vidfetch/internal/session"
	"vidfetch/internal/ui"
)

func newTuiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tui [url]",
		Short:         "Force the interactive TUI",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runTUI,
	}
	return cmd
}

func runTUI(cmd *cobra.Command, args []string) error {
	a := appFrom(cmd)
	var initial string
	if len(args) > 0 {
		initial = args[0]
	}
	// The TUI owns the terminal; log records would corrupt the alt screen.
	quiet := *a
	quiet.log = logger.Discard()

	err := ui.Run(cmd.Context(), ui.Options{
		InitialURL: initial,
		NewSession: func(r progress.Reporter) *session.Session {
			return quiet.newSession(dispatch.WithReporter(r))
		},
	})
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	return nil
}
