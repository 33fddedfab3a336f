package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidfetch/internal/dispatch"
	"vidfetch/internal/request"
)

const (
	videoJSON    = `{"type":"video","title":"T","duration":125,"video_formats":[{"quality":"720p","ext":"mp4","filesize":0}],"audio_formats":[{"quality":"128kbps","ext":"m4a"}]}`
	playlistJSON = `{"type":"playlist","title":"P","video_count":10,"videos":[{"title":"a"},{"title":"b"},{"title":"c"},{"title":"d"},{"title":"e"},{"title":"f"}]}`
)

type backend struct {
	info           string
	infoStatus     int
	playlistStatus int
	playlistBodies []map[string]string
}

func newBackend(t *testing.T, b *backend) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/info", func(c *gin.Context) {
		status := b.infoStatus
		if status == 0 {
			status = http.StatusOK
		}
		c.Data(status, "application/json", []byte(b.info))
	})
	r.POST("/api/download-playlist", func(c *gin.Context) {
		var body map[string]string
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		b.playlistBodies = append(b.playlistBodies, body)
		status := b.playlistStatus
		if status == 0 {
			status = http.StatusOK
		}
		c.Data(status, "application/zip", []byte("PKzip"))
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	return ee.Code
}

func TestInfoJSON(t *testing.T) {
	api := newBackend(t, &backend{info: videoJSON})
	out, _, err := execute(t, "info", "https://youtu.be/abc", "--json", "--api-url", api)
	require.NoError(t, err)

	var doc catalogJSON
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "single", doc.Type)
	assert.Equal(t, "T", doc.Title)
	assert.Equal(t, "https://youtu.be/abc", doc.URL)
	require.NotNil(t, doc.Item)
	assert.Equal(t, 125, doc.Item.Duration)
	assert.Equal(t, "video", doc.Defaults.Type)
	assert.Equal(t, "720p", doc.Defaults.Quality)
	assert.Equal(t, "mp4", doc.Defaults.Format)
}

func TestInfoPlaylistText(t *testing.T) {
	api := newBackend(t, &backend{info: playlistJSON})
	out, _, err := execute(t, "info", "https://youtube.com/playlist?list=A", "--api-url", api)
	require.NoError(t, err)
	assert.Contains(t, out, "Playlist:  P")
	assert.Contains(t, out, "Videos:    10")
	assert.Contains(t, out, "6. f")
	assert.Contains(t, out, "...and 4 more")
}

func TestInfoErrors(t *testing.T) {
	api := newBackend(t, &backend{info: `{}`, infoStatus: http.StatusInternalServerError})

	_, _, err := execute(t, "info", "https://youtu.be/abc", "--api-url", api)
	require.Error(t, err)
	assert.Equal(t, ExitFetchError, exitCode(t, err))
	assert.True(t, dispatch.IsFetch(err))

	_, _, err = execute(t, "info", "   ", "--api-url", api)
	require.Error(t, err)
	assert.Equal(t, ExitCLIError, exitCode(t, err))
	assert.True(t, request.IsValidation(err))
}

func TestBadAPIURL(t *testing.T) {
	_, _, err := execute(t, "info", "https://youtu.be/abc", "--api-url", "localhost:5000")
	require.Error(t, err)
	assert.Equal(t, ExitCLIError, exitCode(t, err))
}

func TestPlanAudioOverride(t *testing.T) {
	api := newBackend(t, &backend{info: videoJSON})
	out, _, err := execute(t, "plan", "https://youtu.be/abc", "--type", "audio", "--api-url", api)
	require.NoError(t, err)
	assert.Contains(t, out, "- Kind:     direct-download")
	assert.Contains(t, out, fmt.Sprintf("GET %s/api/download?url=https%%3A%%2F%%2Fyoutu.be%%2Fabc&type=audio&quality=128kbps&format=m4a", api))
}

func TestPlanPlaylist(t *testing.T) {
	api := newBackend(t, &backend{info: playlistJSON})
	out, _, err := execute(t, "plan", "https://youtube.com/playlist?list=A", "-q", "720p", "--api-url", api)
	require.NoError(t, err)
	assert.Contains(t, out, "- Kind:     playlist-package")
	assert.Contains(t, out, "POST "+api+"/api/download-playlist")
	assert.Contains(t, out, `"quality":"720p"`)
}

func TestDownloadDirectNoOpen(t *testing.T) {
	api := newBackend(t, &backend{info: videoJSON})
	out, _, err := execute(t, "download", "https://youtu.be/abc", "--no-open", "--api-url", api)
	require.NoError(t, err)
	assert.Equal(t, api+"/api/download?url=https%3A%2F%2Fyoutu.be%2Fabc&type=video&quality=720p&format=mp4\n", out)
}

func TestDownloadPlaylist(t *testing.T) {
	b := &backend{info: playlistJSON}
	api := newBackend(t, b)
	dir := t.TempDir()

	out, _, err := execute(t, "download", "https://youtube.com/playlist?list=A", "--type", "audio", "--out-dir", dir, "--api-url", api)
	require.NoError(t, err)

	path := filepath.Join(dir, "playlist.zip")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PKzip", string(data))
	assert.Contains(t, out, "Saved: "+path)

	require.Len(t, b.playlistBodies, 1)
	assert.Equal(t, map[string]string{
		"url":     "https://youtube.com/playlist?list=A",
		"type":    "audio",
		"quality": "best",
		"format":  "mp3",
	}, b.playlistBodies[0])
}

func TestDownloadPlaylistFailure(t *testing.T) {
	api := newBackend(t, &backend{info: playlistJSON, playlistStatus: http.StatusInternalServerError})
	dir := t.TempDir()

	_, _, err := execute(t, "download", "https://youtube.com/playlist?list=A", "--out-dir", dir, "--api-url", api)
	require.Error(t, err)
	assert.Equal(t, ExitFetchError, exitCode(t, err))
	_, statErr := os.Stat(filepath.Join(dir, "playlist.zip"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestInvalidSelectionFlag(t *testing.T) {
	_, _, err := execute(t, "download", "https://youtu.be/abc", "--type", "gif")
	require.Error(t, err)
	assert.Equal(t, ExitCLIError, exitCode(t, err))
}

func TestRootWithoutURL(t *testing.T) {
	if isTerminal() {
		t.Skip("stdout is a terminal")
	}
	_, _, err := execute(t, "--no-ui")
	require.Error(t, err)
	assert.Equal(t, ExitCLIError, exitCode(t, err))
}

func TestRootFallsBackToInfo(t *testing.T) {
	api := newBackend(t, &backend{info: videoJSON})
	out, _, err := execute(t, "https://youtu.be/abc", "--no-ui", "--api-url", api)
	require.NoError(t, err)
	assert.Contains(t, out, "Title:     T")
	assert.Contains(t, out, "720p")
}

func fakeOpener(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "my-opener")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"), 0o755))
	return p
}

func TestDoctor(t *testing.T) {
	t.Run("backend reachable", func(t *testing.T) {
		api := newBackend(t, &backend{info: videoJSON})
		opener := fakeOpener(t)
		out, _, err := execute(t, "doctor", "--opener", opener, "--api-url", api)
		require.NoError(t, err)
		assert.Contains(t, out, "Opener:    "+opener)
		assert.Contains(t, out, "(HTTP 404)")
	})

	t.Run("opener missing", func(t *testing.T) {
		api := newBackend(t, &backend{info: videoJSON})
		_, _, err := execute(t, "doctor", "--opener", filepath.Join(t.TempDir(), "nope"), "--api-url", api)
		require.Error(t, err)
		assert.Equal(t, ExitMissingDep, exitCode(t, err))
	})

	t.Run("backend unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		api := srv.URL
		srv.Close()

		out, _, err := execute(t, "doctor", "--opener", fakeOpener(t), "--api-url", api)
		require.Error(t, err)
		assert.Equal(t, ExitFetchError, exitCode(t, err))
		assert.Contains(t, out, "(unreachable)")
	})
}

func TestCompletion(t *testing.T) {
	out, _, err := execute(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "vidfetch")

	_, _, err = execute(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: request.ErrEmptyURL, want: ExitCLIError},
		{name: "fetch", err: &dispatch.FetchError{Op: dispatch.OpInfo, Status: 500, Message: "m"}, want: ExitFetchError},
		{name: "wrapped fetch", err: fmt.Errorf("x: %w", &dispatch.FetchError{Message: "m"}), want: ExitFetchError},
		{name: "canceled", err: context.Canceled, want: ExitCLIError},
		{name: "fetch interrupted", err: &dispatch.FetchError{Op: dispatch.OpInfo, Message: "m", Err: context.Canceled}, want: ExitCLIError},
		{name: "save", err: errors.New("save playlist.zip: disk full"), want: ExitSaveError},
		{name: "passthrough", err: &ExitError{Code: ExitMissingDep}, want: ExitMissingDep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(t, exitError(tt.err)))
		})
	}
	assert.NoError(t, exitError(nil))
}
