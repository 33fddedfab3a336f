package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidfetch/internal/catalog"
	"vidfetch/internal/progress"
	"vidfetch/internal/request"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type playlistCall struct {
	URL     string `json:"url"`
	Type    string `json:"type"`
	Quality string `json:"quality"`
	Format  string `json:"format"`
}

// fakeBackend mimics the extraction backend's three endpoints.
type fakeBackend struct {
	mu sync.Mutex

	infoStatus int
	infoBody   string
	infoURLs   []string
	requestIDs []string

	playlistStatus int
	playlistBody   string
	playlistCalls  []playlistCall
}

func (f *fakeBackend) router() *gin.Engine {
	r := gin.New()
	api := r.Group("/api")
	{
		api.POST("/info", func(c *gin.Context) {
			var body struct {
				URL string `json:"url"`
			}
			if err := c.ShouldBindJSON(&body); err != nil {
				c.String(http.StatusBadRequest, err.Error())
				return
			}
			f.mu.Lock()
			f.infoURLs = append(f.infoURLs, body.URL)
			f.requestIDs = append(f.requestIDs, c.GetHeader("X-Request-ID"))
			status, resp := f.infoStatus, f.infoBody
			f.mu.Unlock()
			c.Data(status, "application/json", []byte(resp))
		})
		api.POST("/download-playlist", func(c *gin.Context) {
			var body playlistCall
			if err := c.ShouldBindJSON(&body); err != nil {
				c.String(http.StatusBadRequest, err.Error())
				return
			}
			f.mu.Lock()
			f.playlistCalls = append(f.playlistCalls, body)
			status, resp := f.playlistStatus, f.playlistBody
			f.mu.Unlock()
			if status != http.StatusOK {
				c.JSON(status, gin.H{"error": "boom"})
				return
			}
			c.Header("Content-Disposition", `attachment; filename="playlist.zip"`)
			c.Data(status, "application/zip", []byte(resp))
		})
	}
	return r
}

func newTestServer(t *testing.T, f *fakeBackend) *request.Builder {
	t.Helper()
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)
	b, err := request.NewBuilder(srv.URL)
	require.NoError(t, err)
	return b
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordingReporter struct {
	mu      sync.Mutex
	updates []progress.Update
	results []progress.Result
}

func (r *recordingReporter) Update(u progress.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recordingReporter) Result(res progress.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func TestRunMetadataLookup(t *testing.T) {
	f := &fakeBackend{
		infoStatus: http.StatusOK,
		infoBody:   `{"type":"video","title":"T","duration":125,"video_formats":[{"quality":"720p","ext":"mp4","filesize":0}],"audio_formats":[]}`,
	}
	b := newTestServer(t, f)
	d := New(b, WithLogger(quietLogger()))

	in, err := b.BuildMetadataRequest("https://youtu.be/abc")
	require.NoError(t, err)

	c, err := d.RunMetadataLookup(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, catalog.KindSingle, c.Kind())
	assert.Equal(t, "T", c.Title())
	assert.Equal(t, []catalog.FormatOption{{Quality: "720p", ContainerExt: "mp4"}}, c.ListFormats(catalog.MediaVideo))

	require.Len(t, f.infoURLs, 1)
	assert.Equal(t, "https://youtu.be/abc", f.infoURLs[0])
	assert.NotEmpty(t, f.requestIDs[0])
}

func TestRunMetadataLookupFailures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"x"}`, wantStatus: 500},
		{name: "bad request", status: http.StatusBadRequest, body: `invalid url`, wantStatus: 400},
		{name: "malformed body", status: http.StatusOK, body: `{"type":`},
		{name: "unknown type", status: http.StatusOK, body: `{"type":"channel"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeBackend{infoStatus: tt.status, infoBody: tt.body}
			b := newTestServer(t, f)
			d := New(b, WithLogger(quietLogger()))

			in, err := b.BuildMetadataRequest("https://youtu.be/abc")
			require.NoError(t, err)

			c, err := d.RunMetadataLookup(context.Background(), in)
			require.Error(t, err)
			assert.True(t, c.IsEmpty())

			var fe *FetchError
			require.True(t, errors.As(err, &fe), "want FetchError, got %T", err)
			assert.Equal(t, OpInfo, fe.Op)
			assert.Equal(t, tt.wantStatus, fe.Status)
			assert.Contains(t, fe.Error(), "failed to fetch video info")
		})
	}
}

func TestRunMetadataLookupTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	b, err := request.NewBuilder(srv.URL)
	require.NoError(t, err)
	srv.Close()

	d := New(b, WithLogger(quietLogger()), WithHTTPClient(&http.Client{Timeout: 2 * time.Second}))
	in, _ := b.BuildMetadataRequest("https://youtu.be/abc")
	_, err = d.RunMetadataLookup(context.Background(), in)
	require.Error(t, err)
	assert.True(t, IsFetch(err))
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Zero(t, fe.Status)
	assert.NotNil(t, fe.Err)
}

func TestRunDirectDownload(t *testing.T) {
	b, err := request.NewBuilder("https://backend.example")
	require.NoError(t, err)

	var opened []string
	nav := NavigatorFunc(func(u string) error {
		opened = append(opened, u)
		return nil
	})
	d := New(b, WithNavigator(nav), WithLogger(quietLogger()))

	in := request.Intent{
		Kind:            request.DirectDownload,
		URL:             "https://youtu.be/abc",
		MediaKind:       catalog.MediaVideo,
		Quality:         "best",
		ContainerFormat: "mp4",
	}
	got, err := d.RunDirectDownload(in)
	require.NoError(t, err)
	assert.Equal(t, "https://backend.example/api/download?url=https%3A%2F%2Fyoutu.be%2Fabc&type=video&quality=best&format=mp4", got)
	assert.Equal(t, []string{got}, opened)
}

func TestRunDirectDownloadIgnoresNavigatorFailure(t *testing.T) {
	b, err := request.NewBuilder("https://backend.example")
	require.NoError(t, err)
	nav := NavigatorFunc(func(string) error { return errors.New("no display") })
	d := New(b, WithNavigator(nav), WithLogger(quietLogger()))

	got, err := d.RunDirectDownload(request.Intent{Kind: request.DirectDownload, URL: "u"})
	assert.NoError(t, err)
	assert.NotEmpty(t, got)
}

func TestRunWrongKind(t *testing.T) {
	b, err := request.NewBuilder("https://backend.example")
	require.NoError(t, err)
	called := false
	d := New(b, WithLogger(quietLogger()), WithNavigator(NavigatorFunc(func(string) error {
		called = true
		return nil
	})))

	_, err = d.RunDirectDownload(request.Intent{Kind: request.PlaylistPackage})
	assert.ErrorIs(t, err, ErrWrongKind)
	assert.False(t, called)

	_, err = d.RunMetadataLookup(context.Background(), request.Intent{Kind: request.DirectDownload})
	assert.ErrorIs(t, err, ErrWrongKind)

	_, err = d.RunPlaylistPackage(context.Background(), request.Intent{Kind: request.DirectDownload})
	assert.ErrorIs(t, err, ErrWrongKind)
}

func TestRunPlaylistPackage(t *testing.T) {
	f := &fakeBackend{playlistStatus: http.StatusOK, playlistBody: "PK\x03\x04zipdata"}
	b := newTestServer(t, f)
	dir := t.TempDir()
	rep := &recordingReporter{}
	d := New(b, WithSaver(DirSaver{Dir: dir}), WithReporter(rep), WithLogger(quietLogger()))

	in := request.Intent{
		Kind:            request.PlaylistPackage,
		URL:             "https://youtube.com/playlist?list=PL1",
		MediaKind:       catalog.MediaAudio,
		Quality:         "320kbps",
		ContainerFormat: "mp3",
	}
	path, err := d.RunPlaylistPackage(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "playlist.zip"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PK\x03\x04zipdata", string(data))

	require.Len(t, f.playlistCalls, 1)
	assert.Equal(t, playlistCall{URL: in.URL, Type: "audio", Quality: "320kbps", Format: "mp3"}, f.playlistCalls[0])

	require.Len(t, rep.results, 1)
	assert.NoError(t, rep.results[0].Err)
	assert.Equal(t, int64(len(data)), rep.results[0].Bytes)
	assert.Equal(t, progress.StageRequesting, rep.updates[0].Stage)
	assert.Equal(t, progress.StageCompleted, rep.updates[len(rep.updates)-1].Stage)
}

func TestRunPlaylistPackageFailure(t *testing.T) {
	f := &fakeBackend{playlistStatus: http.StatusInternalServerError}
	b := newTestServer(t, f)
	dir := t.TempDir()
	rep := &recordingReporter{}
	d := New(b, WithSaver(DirSaver{Dir: dir}), WithReporter(rep), WithLogger(quietLogger()))

	_, err := d.RunPlaylistPackage(context.Background(), request.Intent{
		Kind:      request.PlaylistPackage,
		URL:       "https://youtube.com/playlist?list=PL1",
		MediaKind: catalog.MediaVideo,
	})
	require.Error(t, err)
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, OpDownloadPlaylist, fe.Op)
	assert.Equal(t, http.StatusInternalServerError, fe.Status)
	assert.Contains(t, err.Error(), "playlist download failed")

	entries, _ := os.ReadDir(dir)
	assert.Empty(t, entries)
	require.Len(t, rep.results, 1)
	assert.Error(t, rep.results[0].Err)
}

type failingSaver struct{}

func (failingSaver) Save(_ context.Context, _ string, r io.Reader) (string, int64, error) {
	_, _ = io.Copy(io.Discard, r)
	return "", 0, errors.New("disk full")
}

func TestRunPlaylistPackageSaveFailureIsNotFetchError(t *testing.T) {
	f := &fakeBackend{playlistStatus: http.StatusOK, playlistBody: "zip"}
	b := newTestServer(t, f)
	d := New(b, WithSaver(failingSaver{}), WithLogger(quietLogger()))

	_, err := d.RunPlaylistPackage(context.Background(), request.Intent{Kind: request.PlaylistPackage, URL: "u"})
	require.Error(t, err)
	assert.False(t, IsFetch(err))
	assert.Contains(t, err.Error(), "disk full")
}

func TestFetchErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *FetchError
		want string
	}{
		{name: "status", err: &FetchError{Message: "m", Status: 502}, want: "m: 502 Bad Gateway"},
		{name: "wrapped", err: &FetchError{Message: "m", Err: errors.New("eof")}, want: "m: eof"},
		{name: "bare", err: &FetchError{Message: "m"}, want: "m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}
