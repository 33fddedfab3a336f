package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	vidfetchcmd "vidfetch/internal/cli/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := vidfetchcmd.Execute(ctx); err != nil {
		var ee *vidfetchcmd.ExitError
		if errors.As(err, &ee) {
			if ee.Err != nil {
				fmt.Fprintln(os.Stderr, "error:", ee.Err)
			}
			stop()
			os.Exit(ee.Code)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(vidfetchcmd.ExitCLIError)
	}
	os.Exit(vidfetchcmd.ExitOK)
}
