package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"vidfetch/internal/cli"
	"vidfetch/internal/dispatch"
	"vidfetch/internal/progress"
	"vidfetch/internal/request"
	"vidfetch/internal/util/format"
)

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download <url>",
		Short: "Look up a URL and start the download",
		Long: "Single videos are handed to the system URL opener as a backend download link " +
			"(or printed with --no-open). Playlists are fetched as playlist.zip into --out-dir.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := cli.ParseSelectionFlags(cmd.Flags())
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			noOpen, _ := cmd.Flags().GetBool("no-open")
			out := cmd.OutOrStdout()

			a := appFrom(cmd)
			opts := []dispatch.Option{dispatch.WithReporter(newLineReporter(cmd.ErrOrStderr()))}
			if noOpen {
				opts = append(opts, dispatch.WithNavigator(dispatch.PrintNavigator{W: out}))
			}
			sess := a.newSession(opts...)
			if _, err := prepare(cmd, sess, args[0], sel); err != nil {
				return err
			}

			res, err := sess.Download(cmd.Context())
			if err != nil {
				return exitError(err)
			}
			switch res.Kind {
			case request.PlaylistPackage:
				size := "?"
				if fi, err := os.Stat(res.Path); err == nil {
					size = format.HumanizeBytes(fi.Size())
				}
				fmt.Fprintf(out, "Saved: %s (%s)\n", res.Path, size)
			default:
				if !noOpen {
					fmt.Fprintf(out, "Opened: %s\n", res.URL)
				}
			}
			return nil
		},
	}
	cli.BindSelectionFlags(cmd.Flags())
	cmd.Flags().Bool("no-open", false, "Print the direct download URL instead of opening it")
	return cmd
}

// lineReporter prints playlist progress as occasional plain lines; it is
// the non-TUI counterpart of the progress bar.
type lineReporter struct {
	w io.Writer

	mu   sync.Mutex
	last int64 // bytes at the last printed line
}

const lineReportStep = 8 << 20

func newLineReporter(w io.Writer) *lineReporter {
	return &lineReporter{w: w}
}

func (r *lineReporter) Update(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch u.Stage {
	case progress.StageRequesting:
		fmt.Fprintln(r.w, "Waiting for the backend to package the playlist...")
	case progress.StageDownloading:
		if u.Bytes-r.last < lineReportStep {
			return
		}
		r.last = u.Bytes
		if p := u.Percent(); p >= 0 {
			fmt.Fprintf(r.w, "Downloaded %s (%.0f%%)\n", format.HumanizeBytes(u.Bytes), p)
		} else {
			fmt.Fprintf(r.w, "Downloaded %s\n", format.HumanizeBytes(u.Bytes))
		}
	}
}

func (r *lineReporter) Result(progress.Result) {}
