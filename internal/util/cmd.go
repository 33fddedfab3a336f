package util

import (
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// CmdSpec describes a subprocess to launch.
type CmdSpec struct {
	Path    string   // Binary path
	Args    []string // Arguments
	Verbose bool     // Log the command line before starting
}

// Starter launches a subprocess without waiting for it to finish.
type Starter interface {
	Start(spec CmdSpec) error
}

// StarterFunc adapts a function to Starter.
type StarterFunc func(spec CmdSpec) error

func (f StarterFunc) Start(spec CmdSpec) error { return f(spec) }

// ExecStarter starts real processes.
type ExecStarter struct {
	Logger *slog.Logger
}

// Start launches the command detached from the caller. The process is reaped
// in the background; its exit status is only logged.
func (s ExecStarter) Start(spec CmdSpec) error {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}

	cmd := exec.Command(spec.Path, spec.Args...)

	if spec.Verbose {
		log.Debug("exec", "cmd", ShellQuote(spec.Path, spec.Args))
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", spec.Path, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Debug("opener exited", "cmd", spec.Path, "err", err)
		}
	}()
	return nil
}

// ShellQuote returns a printable shell-like command string for logging.
func ShellQuote(path string, args []string) string {
	b := &strings.Builder{}
	b.WriteString(quote(path))
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(quote(a))
	}
	return b.String()
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	// Simple quoting: wrap in single quotes and escape existing single quotes.
	if strings.ContainsAny(s, " \t\n\"'\\$`(){}[]*&;|<>?!") {
		return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
	}
	return s
}
