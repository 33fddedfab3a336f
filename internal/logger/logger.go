// Package logger provides the CLI's slog handler: one line per record with a
// fixed-width level label and key=value attributes.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

const timeFormat = "15:04:05"

var (
	prefixStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#22D3EE"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))

	levelStyles = map[slog.Level]struct {
		style lipgloss.Style
		label string
	}{
		slog.LevelDebug: {lipgloss.NewStyle().Foreground(lipgloss.Color("#A3A3A3")), "DEBUG"},
		slog.LevelInfo:  {lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")), "INFO "},
		slog.LevelWarn:  {lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")), "WARN "},
		slog.LevelError: {lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")), "ERROR"},
	}
)

// PrettyHandler is a slog.Handler writing human-oriented lines.
type PrettyHandler struct {
	out    io.Writer
	level  slog.Leveler
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

// NewPrettyHandler returns a handler writing records at or above level to out.
func NewPrettyHandler(out io.Writer, level slog.Leveler) *PrettyHandler {
	return &PrettyHandler{out: out, level: level, mu: &sync.Mutex{}}
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	style, ok := levelStyles[r.Level]
	if !ok {
		style = levelStyles[slog.LevelInfo]
	}

	var b strings.Builder
	b.WriteString(prefixStyle.Render("[vidfetch]"))
	if !r.Time.IsZero() {
		b.WriteByte(' ')
		b.WriteString(faintStyle.Render(r.Time.Format(timeFormat)))
	}
	b.WriteByte(' ')
	b.WriteString(style.style.Render(style.label))
	b.WriteByte(' ')
	b.WriteString(r.Message)

	for _, a := range h.attrs {
		writeAttr(&b, a)
	}
	prefix := strings.Join(h.groups, ".")
	r.Attrs(func(a slog.Attr) bool {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		writeAttr(&b, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	h2 := *h
	prefix := strings.Join(h.groups, ".")
	h2.attrs = append([]slog.Attr(nil), h.attrs...)
	for _, a := range attrs {
		if prefix != "" {
			a.Key = prefix + "." + a.Key
		}
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.groups = append(append([]string(nil), h.groups...), name)
	return &h2
}

func writeAttr(b *strings.Builder, a slog.Attr) {
	if a.Equal(slog.Attr{}) {
		return
	}
	fmt.Fprintf(b, " %s=%v", keyStyle.Render(a.Key), a.Value.Resolve().Any())
}

// New builds a logger writing to out. Verbose enables debug records.
func New(out io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(NewPrettyHandler(out, level))
}

// Discard returns a logger that drops everything; used while the TUI owns
// the terminal.
func Discard() *slog.Logger {
	return slog.New(NewPrettyHandler(io.Discard, slog.LevelError+1))
}
