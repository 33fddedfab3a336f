package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	AddFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

// unsetAfter removes variables a .env file may have exported.
func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		k := k
		prev, had := os.LookupEnv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, prev)
			} else {
				os.Unsetenv(k)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := load(newFlags(t), t.TempDir(), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, ".", cfg.OutDir)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultDownloadTimeout, cfg.DownloadTimeout)
	assert.Empty(t, cfg.Opener)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.NoUI)
	assert.Empty(t, cfg.ConfigFile)
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", "api_url: http://from-file:5000\nout_dir: /from/file\ntimeout: 10s\nopener: file-opener\n")

	t.Run("config file", func(t *testing.T) {
		cfg, err := load(newFlags(t), dir, nil)
		require.NoError(t, err)
		assert.Equal(t, "http://from-file:5000", cfg.APIURL)
		assert.Equal(t, "/from/file", cfg.OutDir)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
		assert.Equal(t, "file-opener", cfg.Opener)
		assert.Equal(t, filepath.Join(dir, "config.yaml"), cfg.ConfigFile)
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("VIDFETCH_API_URL", "http://from-env:5000")
		t.Setenv("VIDFETCH_TIMEOUT", "45s")
		cfg, err := load(newFlags(t), dir, nil)
		require.NoError(t, err)
		assert.Equal(t, "http://from-env:5000", cfg.APIURL)
		assert.Equal(t, 45*time.Second, cfg.Timeout)
		assert.Equal(t, "/from/file", cfg.OutDir)
	})

	t.Run("flag over env", func(t *testing.T) {
		t.Setenv("VIDFETCH_API_URL", "http://from-env:5000")
		cfg, err := load(newFlags(t, "--api-url", "http://from-flag:5000", "-o", "/from/flag", "--no-ui"), dir, nil)
		require.NoError(t, err)
		assert.Equal(t, "http://from-flag:5000", cfg.APIURL)
		assert.Equal(t, "/from/flag", cfg.OutDir)
		assert.True(t, cfg.NoUI)
	})
}

func TestLoadDotEnv(t *testing.T) {
	unsetAfter(t, "VIDFETCH_OPENER", "VIDFETCH_VERBOSE")
	os.Unsetenv("VIDFETCH_OPENER")
	t.Setenv("VIDFETCH_VERBOSE", "false")

	dir := t.TempDir()
	env := writeFile(t, dir, ".env", "VIDFETCH_OPENER=firefox\nVIDFETCH_VERBOSE=true\n")

	cfg, err := load(newFlags(t), "", []string{filepath.Join(dir, "missing.env"), env})
	require.NoError(t, err)
	assert.Equal(t, "firefox", cfg.Opener)
	assert.False(t, cfg.Verbose, "real environment wins over .env")
}

func TestLoadExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "custom.json", `{"download_timeout":"1h","verbose":true}`)

	cfg, err := load(newFlags(t, "--config", p), "", nil)
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.DownloadTimeout)
	assert.True(t, cfg.Verbose)

	_, err = load(newFlags(t, "--config", filepath.Join(dir, "nope.yaml")), "", nil)
	assert.Error(t, err)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "empty api url", args: []string{"--api-url", " "}},
		{name: "zero timeout", args: []string{"--timeout", "0s"}},
		{name: "negative download timeout", args: []string{"--download-timeout", "-1m"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(newFlags(t, tt.args...), "", nil)
			assert.Error(t, err)
		})
	}
}
