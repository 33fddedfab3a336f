package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"vidfetch/internal/config"
)

const (
	ExitOK         = 0
	ExitCLIError   = 1
	ExitMissingDep = 2
	ExitFetchError = 3
	ExitSaveError  = 4
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vidfetch [url]",
		Short: "Terminal front end for a video download backend",
		Long: "vidfetch asks a video extraction backend what it can offer for a video or playlist URL, " +
			"lets you pick video or audio, quality and container, and then starts the download: " +
			"single videos are opened through the backend's download link, playlists are fetched as a zip archive.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Args:              cobra.MaximumNArgs(1),
		PersistentPreRunE: setupApp,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if !a.cfg.NoUI && isTerminal() {
				return runTUI(cmd, args)
			}
			if len(args) == 0 {
				return &ExitError{Code: ExitCLIError, Err: errURLRequired}
			}
			return runInfo(cmd, args[0], false)
		},
	}

	// Persistent flags available to all subcommands
	config.AddFlags(root.PersistentFlags())

	// Subcommands
	root.AddCommand(newInfoCmd())
	root.AddCommand(newPlanCmd())
	root.AddCommand(newDownloadCmd())
	root.AddCommand(newTuiCmd())
	root.AddCommand(newDoctorCmd())
	root.AddCommand(newCompletionCmd())

	return root
}

// Execute runs the CLI with the provided context.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}
