// Package session owns the selection state for one user and sequences the
// builder and dispatcher around it.
//
// A Session is not safe for concurrent use. Callers that run network calls on
// other goroutines (the TUI does) split a lookup into BeginLookup and
// FinishLookup and call both from the goroutine that owns the session.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"vidfetch/internal/catalog"
	"vidfetch/internal/dispatch"
	"vidfetch/internal/request"
	"vidfetch/internal/selection"
)

// ErrBusy is returned when a playlist package is requested while another one
// is still being fetched.
var ErrBusy = errors.New("a download is already in progress")

// ErrNoCatalog is returned when a download is planned before a successful
// lookup.
var ErrNoCatalog = &request.ValidationError{Field: "video info", Reason: "is not loaded"}

// Dispatcher is the subset of dispatch.Dispatcher a Session drives.
type Dispatcher interface {
	RunMetadataLookup(ctx context.Context, in request.Intent) (catalog.Catalog, error)
	RunDirectDownload(in request.Intent) (string, error)
	RunPlaylistPackage(ctx context.Context, in request.Intent) (string, error)
}

// Lookup is a metadata lookup that has been started but not finished.
type Lookup struct {
	Intent request.Intent
	ctx    context.Context
	gen    uint64
}

// Context is cancelled when a newer lookup starts.
func (l Lookup) Context() context.Context {
	if l.ctx == nil {
		return context.Background()
	}
	return l.ctx
}

// Outcome describes a dispatched download.
type Outcome struct {
	Kind request.Kind
	// URL is the direct download URL handed to the navigator. Empty for
	// playlist packages.
	URL string
	// Path is where a playlist package was saved. Empty for direct downloads.
	Path string
}

// Session holds one selection and the status shown next to it.
type Session struct {
	builder    *request.Builder
	dispatcher Dispatcher
	log        *slog.Logger

	state     *selection.State
	busy      bool
	lastError string

	gen    uint64
	cancel context.CancelFunc
}

// New returns a session with a fresh selection.
func New(b *request.Builder, d Dispatcher, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		builder:    b,
		dispatcher: d,
		log:        log,
		state:      selection.New(),
	}
}

// State returns the live selection. Mutations through it are visible to the
// session.
func (s *Session) State() *selection.State { return s.state }

// Busy reports whether a lookup or playlist package is in flight.
func (s *Session) Busy() bool { return s.busy }

// LastError is the message of the most recent failure, or "" after a
// success.
func (s *Session) LastError() string { return s.lastError }

// Dispatcher returns the dispatcher the session was built with. Callers that
// run it off the owning goroutine report back through FinishLookup and
// FinishDownload.
func (s *Session) Dispatcher() Dispatcher { return s.dispatcher }

// Builder returns the request builder bound to the backend origin.
func (s *Session) Builder() *request.Builder { return s.builder }

// BeginLookup cancels any lookup still in flight, clears the current catalog
// and returns a handle for a lookup of rawURL. A validation failure is
// recorded like any other error and no lookup starts.
func (s *Session) BeginLookup(ctx context.Context, rawURL string) (Lookup, error) {
	s.Close()
	s.gen++
	s.busy = false
	s.state.ClearCatalog()

	in, err := s.builder.BuildMetadataRequest(rawURL)
	if err != nil {
		s.fail(err)
		return Lookup{}, err
	}
	lctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.busy = true
	s.lastError = ""
	s.state.SetSourceURL(in.URL)

	s.log.Debug("lookup started", "url", in.URL, "generation", s.gen)
	return Lookup{Intent: in, ctx: lctx, gen: s.gen}, nil
}

// FinishLookup applies the result of l. It returns false, and changes
// nothing, when a newer lookup has started since l.
func (s *Session) FinishLookup(l Lookup, c catalog.Catalog, err error) bool {
	if l.gen != s.gen {
		s.log.Debug("stale lookup discarded", "generation", l.gen, "current", s.gen)
		return false
	}
	s.busy = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if err != nil {
		s.fail(err)
		return true
	}
	s.lastError = ""
	s.state.OnCatalogArrived(c)
	s.log.Debug("catalog applied", "kind", c.Kind(), "item_kind", s.state.ItemKind,
		"quality", s.state.Quality, "format", s.state.ContainerFormat)
	return true
}

// FetchInfo runs a complete metadata lookup synchronously.
func (s *Session) FetchInfo(ctx context.Context, rawURL string) error {
	l, err := s.BeginLookup(ctx, rawURL)
	if err != nil {
		return err
	}
	c, err := s.dispatcher.RunMetadataLookup(l.Context(), l.Intent)
	s.FinishLookup(l, c, err)
	return err
}

// PlanDownload returns the intent the current selection would dispatch.
func (s *Session) PlanDownload() (request.Intent, error) {
	if strings.TrimSpace(s.state.SourceURL) == "" {
		return request.Intent{}, request.ErrEmptyURL
	}
	if !s.state.HasCatalog() {
		return request.Intent{}, ErrNoCatalog
	}
	return s.builder.BuildDownloadRequest(s.state), nil
}

// BeginDownload builds the intent for the current selection. For playlist
// packages it marks the session busy; FinishDownload must follow.
func (s *Session) BeginDownload() (request.Intent, error) {
	in, err := s.PlanDownload()
	if err != nil {
		s.fail(err)
		return request.Intent{}, err
	}
	if !s.state.Offered() {
		s.log.Warn("selection is not among the offered options",
			"type", in.MediaKind, "quality", in.Quality, "format", in.ContainerFormat)
	}
	if in.Kind == request.PlaylistPackage {
		if s.busy {
			return request.Intent{}, ErrBusy
		}
		s.busy = true
	}
	return in, nil
}

// FinishDownload records the result of a download started by BeginDownload.
func (s *Session) FinishDownload(in request.Intent, err error) {
	if in.Kind == request.PlaylistPackage {
		s.busy = false
	}
	if err != nil {
		s.fail(err)
		return
	}
	s.lastError = ""
}

// Download dispatches the current selection: a direct download for single
// items, a playlist package otherwise. Direct downloads never report
// transfer failures.
func (s *Session) Download(ctx context.Context) (Outcome, error) {
	in, err := s.BeginDownload()
	if err != nil {
		return Outcome{}, err
	}
	out := Outcome{Kind: in.Kind}
	if in.Kind == request.PlaylistPackage {
		out.Path, err = s.dispatcher.RunPlaylistPackage(ctx, in)
	} else {
		out.URL, err = s.dispatcher.RunDirectDownload(in)
	}
	s.FinishDownload(in, err)
	if err != nil {
		return Outcome{}, err
	}
	return out, nil
}

// Close cancels any lookup in flight.
func (s *Session) Close() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Session) fail(err error) {
	s.lastError = Message(err)
	s.state.ClearCatalog()
	s.log.Debug("session error", "err", err)
}

// Message returns the user-facing text for err: the validation reason or the
// fetch message without transport detail.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ve *request.ValidationError
	if errors.As(err, &ve) {
		if ve.Field == "url" {
			return "Please enter a URL"
		}
		return ve.Error()
	}
	var fe *dispatch.FetchError
	if errors.As(err, &fe) {
		return fe.Message
	}
	if errors.Is(err, context.Canceled) {
		return "Cancelled"
	}
	return err.Error()
}
