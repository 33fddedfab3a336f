package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vidfetch/internal/cli"
	"vidfetch/internal/request"
	"vidfetch/internal/session"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "plan <url>",
		Short:         "Show the download request a selection would make, without sending it",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel, err := cli.ParseSelectionFlags(cmd.Flags())
			if err != nil {
				return &ExitError{Code: ExitCLIError, Err: err}
			}
			a := appFrom(cmd)
			sess := a.newSession()
			in, err := prepare(cmd, sess, args[0], sel)
			if err != nil {
				return err
			}
			if !sess.State().Offered() {
				a.log.Warn("selection is not offered for this item; it would be sent anyway",
					"type", in.MediaKind, "quality", in.Quality, "format", in.ContainerFormat)
			}
			return printPlan(cmd.OutOrStdout(), sess, in)
		},
	}
	cli.BindSelectionFlags(cmd.Flags())
	return cmd
}

// prepare looks up rawURL, applies the selection overrides and returns the
// resulting download intent.
func prepare(cmd *cobra.Command, sess *session.Session, rawURL string, sel cli.SelectionFlags) (request.Intent, error) {
	if err := sess.FetchInfo(cmd.Context(), rawURL); err != nil {
		return request.Intent{}, exitError(err)
	}
	sel.Apply(sess.State())
	in, err := sess.PlanDownload()
	if err != nil {
		return request.Intent{}, exitError(err)
	}
	return in, nil
}

func printPlan(w io.Writer, sess *session.Session, in request.Intent) error {
	b := sess.Builder()
	fmt.Fprintln(w, "Download plan:")
	fmt.Fprintf(w, "- Source:   %s\n", in.URL)
	fmt.Fprintf(w, "- Title:    %s\n", sess.State().Catalog().Title())
	fmt.Fprintf(w, "- Kind:     %s\n", in.Kind)
	fmt.Fprintf(w, "- Type:     %s\n", in.MediaKind)
	fmt.Fprintf(w, "- Quality:  %s\n", in.Quality)
	fmt.Fprintf(w, "- Format:   %s\n", in.ContainerFormat)
	switch in.Kind {
	case request.PlaylistPackage:
		body, err := request.PlaylistBody(in)
		if err != nil {
			return exitError(err)
		}
		fmt.Fprintf(w, "- Request:  POST %s\n", b.Endpoint(in.Kind))
		fmt.Fprintf(w, "- Body:     %s\n", body)
	default:
		fmt.Fprintf(w, "- Request:  GET %s\n", b.DirectURL(in))
	}
	return nil
}
