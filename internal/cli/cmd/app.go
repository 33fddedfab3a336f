package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"vidfetch/internal/config"
	"vidfetch/internal/dispatch"
	"vidfetch/internal/logger"
	"vidfetch/internal/request"
	"vidfetch/internal/session"
	"vidfetch/internal/util"
)

var errURLRequired = errors.New("usage: vidfetch <url>\nrun 'vidfetch --help' for subcommands")

type ctxKey string

const appKey ctxKey = "app"

// app is what every command needs after flags and config are resolved.
type app struct {
	cfg     config.Config
	log     *slog.Logger
	builder *request.Builder
}

func setupApp(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	b, err := request.NewBuilder(cfg.APIURL)
	if err != nil {
		return &ExitError{Code: ExitCLIError, Err: err}
	}
	log := logger.New(cmd.ErrOrStderr(), cfg.Verbose)
	if cfg.ConfigFile != "" {
		log.Debug("config loaded", "file", cfg.ConfigFile)
	}
	log.Debug("backend", "origin", b.Origin())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, appKey, &app{cfg: cfg, log: log, builder: b}))
	return nil
}

func appFrom(cmd *cobra.Command) *app {
	if v, ok := cmd.Context().Value(appKey).(*app); ok {
		return v
	}
	// PersistentPreRunE was overridden; fall back to defaults.
	b, _ := request.NewBuilder(config.DefaultAPIURL)
	return &app{
		cfg: config.Config{
			APIURL:          config.DefaultAPIURL,
			OutDir:          ".",
			Timeout:         config.DefaultTimeout,
			DownloadTimeout: config.DefaultDownloadTimeout,
		},
		log:     slog.Default(),
		builder: b,
	}
}

// newDispatcher wires a dispatcher from the resolved config. Extra options
// override the defaults.
func (a *app) newDispatcher(opts ...dispatch.Option) *dispatch.Dispatcher {
	base := []dispatch.Option{
		dispatch.WithHTTPClient(dispatch.NewAPIClient(a.cfg.Timeout)),
		dispatch.WithPackageClient(dispatch.NewPackageClient(a.cfg.DownloadTimeout)),
		dispatch.WithNavigator(dispatch.NewOpenerNavigator(a.cfg.Opener, util.ExecStarter{Logger: a.log}, a.cfg.Verbose)),
		dispatch.WithSaver(dispatch.DirSaver{Dir: a.cfg.OutDir}),
		dispatch.WithLogger(a.log),
	}
	return dispatch.New(a.builder, append(base, opts...)...)
}

func (a *app) newSession(opts ...dispatch.Option) *session.Session {
	return session.New(a.builder, a.newDispatcher(opts...), a.log)
}

// exitError maps an operation error to its exit code.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	switch {
	case errors.As(err, &ee):
		return ee
	case request.IsValidation(err):
		return &ExitError{Code: ExitCLIError, Err: err}
	case errors.Is(err, context.Canceled):
		return &ExitError{Code: ExitCLIError, Err: errors.New("interrupted")}
	case dispatch.IsFetch(err):
		return &ExitError{Code: ExitFetchError, Err: err}
	default:
		// local failures such as writing the playlist archive
		return &ExitError{Code: ExitSaveError, Err: err}
	}
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
