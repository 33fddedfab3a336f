// Package dispatch executes request intents against the backend.
package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"vidfetch/internal/catalog"
	"vidfetch/internal/progress"
	"vidfetch/internal/request"
)

// UserAgent is sent with every backend call.
const UserAgent = "vidfetch/1"

// Dispatcher runs intents built by a request.Builder. Calls are independent
// and are never retried.
type Dispatcher struct {
	builder   *request.Builder
	api       *http.Client
	pkg       *http.Client
	navigator Navigator
	saver     Saver
	reporter  progress.Reporter
	log       *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithHTTPClient sets the client for metadata lookups.
func WithHTTPClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.api = c
	}
}

// WithPackageClient sets the client for playlist package downloads.
func WithPackageClient(c *http.Client) Option {
	return func(d *Dispatcher) {
		d.pkg = c
	}
}

// WithNavigator sets where direct download URLs are sent.
func WithNavigator(n Navigator) Option {
	return func(d *Dispatcher) {
		d.navigator = n
	}
}

// WithSaver sets where playlist packages are written.
func WithSaver(s Saver) Option {
	return func(d *Dispatcher) {
		d.saver = s
	}
}

// WithReporter attaches a progress reporter (used by the TUI).
func WithReporter(r progress.Reporter) Option {
	return func(d *Dispatcher) {
		d.reporter = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.log = l
	}
}

// New returns a Dispatcher bound to b's backend origin.
func New(b *request.Builder, opts ...Option) *Dispatcher {
	d := &Dispatcher{builder: b}
	for _, o := range opts {
		o(d)
	}
	if d.api == nil {
		d.api = NewAPIClient(DefaultAPITimeout)
	}
	if d.pkg == nil {
		d.pkg = NewPackageClient(DefaultPackageTimeout)
	}
	if d.log == nil {
		d.log = slog.Default()
	}
	if d.navigator == nil {
		d.navigator = NewOpenerNavigator("", nil, false)
	}
	if d.saver == nil {
		d.saver = DirSaver{Dir: "."}
	}
	if d.reporter == nil {
		d.reporter = progress.Nop{}
	}
	return d
}

// RunMetadataLookup posts the URL to /api/info and returns the parsed catalog.
func (d *Dispatcher) RunMetadataLookup(ctx context.Context, in request.Intent) (catalog.Catalog, error) {
	if in.Kind != request.MetadataLookup {
		return catalog.Catalog{}, fmt.Errorf("run metadata lookup with %v intent: %w", in.Kind, ErrWrongKind)
	}
	body, err := request.MetadataBody(in)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("encode info body: %w", err)
	}

	id := uuid.NewString()
	log := d.log.With("request_id", id)
	start := time.Now()
	log.Debug("fetching info", "url", in.URL)

	resp, err := d.post(ctx, d.api, d.builder.Endpoint(request.MetadataLookup), id, body)
	if err != nil {
		log.Warn("info request failed", "err", err)
		return catalog.Catalog{}, &FetchError{Op: OpInfo, Message: msgInfoFailed, Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		drain(resp.Body)
		log.Warn("info request rejected", "status", resp.StatusCode)
		return catalog.Catalog{}, &FetchError{Op: OpInfo, Status: resp.StatusCode, Message: msgInfoFailed}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxInfoBodyBytes))
	if err != nil {
		return catalog.Catalog{}, &FetchError{Op: OpInfo, Message: msgInfoFailed, Err: fmt.Errorf("read body: %w", err)}
	}
	c, err := catalog.Parse(data)
	if err != nil {
		log.Warn("info response unusable", "err", err)
		return catalog.Catalog{}, &FetchError{Op: OpInfo, Message: msgInfoFailed, Err: err}
	}

	log.Debug("info fetched", "kind", c.Kind(), "title", c.Title(), "duration", time.Since(start).Round(time.Millisecond))
	return c, nil
}

// RunDirectDownload hands the encoded /api/download URL to the navigator and
// returns it. This is fire-and-forget: the transfer happens outside this
// process and its outcome is never observed. The error is only non-nil for an
// intent of the wrong kind.
func (d *Dispatcher) RunDirectDownload(in request.Intent) (string, error) {
	if in.Kind != request.DirectDownload {
		return "", fmt.Errorf("run direct download with %v intent: %w", in.Kind, ErrWrongKind)
	}
	u := d.builder.DirectURL(in)
	if err := d.navigator.Open(u); err != nil {
		d.log.Warn("could not open download URL", "url", u, "err", err)
	} else {
		d.log.Debug("download handed off", "url", u)
	}
	return u, nil
}

// RunPlaylistPackage posts the selection to /api/download-playlist and saves
// the returned archive as playlist.zip. It returns the saved path.
func (d *Dispatcher) RunPlaylistPackage(ctx context.Context, in request.Intent) (string, error) {
	if in.Kind != request.PlaylistPackage {
		return "", fmt.Errorf("run playlist package with %v intent: %w", in.Kind, ErrWrongKind)
	}
	body, err := request.PlaylistBody(in)
	if err != nil {
		return "", fmt.Errorf("encode playlist body: %w", err)
	}

	id := uuid.NewString()
	log := d.log.With("request_id", id)
	start := time.Now()
	log.Info("requesting playlist package", "type", in.MediaKind, "quality", in.Quality, "format", in.ContainerFormat)
	d.reporter.Update(progress.Update{RequestID: id, Stage: progress.StageRequesting, Total: -1, Message: "Packaging playlist"})

	fail := func(err error) (string, error) {
		d.reporter.Result(progress.Result{RequestID: id, Err: err})
		return "", err
	}

	resp, err := d.post(ctx, d.pkg, d.builder.Endpoint(request.PlaylistPackage), id, body)
	if err != nil {
		log.Warn("playlist request failed", "err", err)
		return fail(&FetchError{Op: OpDownloadPlaylist, Message: msgPlaylistFailed, Err: err})
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		drain(resp.Body)
		log.Warn("playlist request rejected", "status", resp.StatusCode)
		return fail(&FetchError{Op: OpDownloadPlaylist, Status: resp.StatusCode, Message: msgPlaylistFailed})
	}

	cr := &countingReader{
		r:        resp.Body,
		id:       id,
		total:    resp.ContentLength,
		reporter: d.reporter,
	}
	path, n, err := d.saver.Save(ctx, PlaylistFilename, cr)
	if err != nil {
		if cr.readErr != nil {
			log.Warn("playlist transfer interrupted", "bytes", cr.n, "err", cr.readErr)
			return fail(&FetchError{Op: OpDownloadPlaylist, Message: msgPlaylistFailed, Err: cr.readErr})
		}
		return fail(fmt.Errorf("save %s: %w", PlaylistFilename, err))
	}

	d.reporter.Update(progress.Update{RequestID: id, Stage: progress.StageCompleted, Bytes: n, Total: n, Message: "Saved " + path})
	d.reporter.Result(progress.Result{RequestID: id, Path: path, Bytes: n})
	log.Info("playlist saved", "path", path, "bytes", n, "duration", time.Since(start).Round(time.Millisecond))
	return path, nil
}

func (d *Dispatcher) post(ctx context.Context, c *http.Client, endpoint, id string, body []byte) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-Request-ID", id)
	return c.Do(req)
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, maxErrorBodyDrainBytes))
}

// countingReader reports download progress and remembers read errors so
// that transport failures can be told apart from write failures.
type countingReader struct {
	r        io.Reader
	id       string
	n        int64
	total    int64
	reporter progress.Reporter
	readErr  error
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if n > 0 {
		c.reporter.Update(progress.Update{
			RequestID: c.id,
			Stage:     progress.StageDownloading,
			Bytes:     c.n,
			Total:     c.total,
			Message:   "Downloading playlist",
		})
	}
	if err != nil && err != io.EOF {
		c.readErr = err
	}
	return n, err
}
