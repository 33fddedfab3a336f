package dispatch

import (
	"fmt"
	"io"
	"log/slog"

	"vidfetch/internal/util"
	"vidfetch/internal/util/deps"
)

// Navigator hands a download URL to something that will fetch it on the
// user's behalf. Open must not wait for the transfer.
type Navigator interface {
	Open(url string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(url string) error

func (f NavigatorFunc) Open(url string) error { return f(url) }

// OpenerNavigator launches the platform URL opener (xdg-open, open, rundll32).
type OpenerNavigator struct {
	custom  string
	starter util.Starter
	verbose bool
}

// NewOpenerNavigator returns a navigator using the opener binary custom, or
// the platform default when custom is empty.
func NewOpenerNavigator(custom string, starter util.Starter, verbose bool) *OpenerNavigator {
	if starter == nil {
		starter = util.ExecStarter{Logger: slog.Default()}
	}
	return &OpenerNavigator{custom: custom, starter: starter, verbose: verbose}
}

func (n *OpenerNavigator) Open(url string) error {
	op, err := deps.FindOpener(n.custom)
	if err != nil {
		return err
	}
	args := append(append([]string(nil), op.Args...), url)
	return n.starter.Start(util.CmdSpec{
		Path:    op.Path,
		Args:    args,
		Verbose: n.verbose,
	})
}

// PrintNavigator writes the URL to w instead of opening it.
type PrintNavigator struct {
	W io.Writer
}

func (n PrintNavigator) Open(url string) error {
	_, err := fmt.Fprintln(n.W, url)
	return err
}
