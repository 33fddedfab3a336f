package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"vidfetch/internal/dispatch"
	"vidfetch/internal/util/deps"
)

const doctorTimeout = 5 * time.Second

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:           "doctor",
		Short:         "Check the URL opener and backend reachability",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			out := cmd.OutOrStdout()

			op, err := deps.FindOpener(a.cfg.Opener)
			if err != nil {
				return &ExitError{Code: ExitMissingDep, Err: err}
			}
			fmt.Fprintf(out, "Opener:    %s\n", op.Path)

			status, err := probeBackend(cmd.Context(), a.builder.Origin())
			if err != nil {
				fmt.Fprintf(out, "Backend:   %s (unreachable)\n", a.builder.Origin())
				return &ExitError{Code: ExitFetchError, Err: fmt.Errorf("backend unreachable: %w", err)}
			}
			fmt.Fprintf(out, "Backend:   %s (HTTP %d)\n", a.builder.Origin(), status)
			fmt.Fprintf(out, "Out dir:   %s\n", a.cfg.OutDir)
			if a.cfg.ConfigFile != "" {
				fmt.Fprintf(out, "Config:    %s\n", a.cfg.ConfigFile)
			}
			return nil
		},
	}
}

// probeBackend reports the status of a GET on the backend origin. Any HTTP
// answer, even 404, means the server is up.
func probeBackend(ctx context.Context, origin string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, doctorTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", dispatch.UserAgent)
	resp, err := dispatch.NewAPIClient(doctorTimeout).Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}
