package dirs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
)

const appName = "vidfetch"

// AppName returns the canonical application name for directory paths.
func AppName() string {
	return appName
}

// ConfigDir returns the directory holding config.{yaml,json,toml} and an
// optional .env file.
// - Linux: $XDG_CONFIG_HOME/vidfetch or ~/.config/vidfetch
// - macOS: ~/Library/Application Support/vidfetch
// - Windows: %AppData%/vidfetch (via os.UserConfigDir)
func ConfigDir() (string, error) {
	return configDir(runtime.GOOS, os.Getenv, os.UserHomeDir, os.UserConfigDir)
}

func configDir(goos string, getenv func(string) string, home, userConfig func() (string, error)) (string, error) {
	switch goos {
	case "darwin":
		h, err := home()
		if err != nil {
			return "", err
		}
		return filepath.Join(h, "Library", "Application Support", appName), nil
	case "linux":
		if xdg := getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		h, err := home()
		if err != nil {
			return "", err
		}
		return filepath.Join(h, ".config", appName), nil
	default:
		cfg, err := userConfig()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfg, appName), nil
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !hasHomePrefix(path) {
		return path, nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if path == "~" {
		return h, nil
	}
	return filepath.Join(h, path[2:]), nil
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && (path[1] == '/' || path[1] == filepath.Separator)
}

// Ensure creates the directory if it doesn't exist.
func Ensure(path string) error {
	if path == "" {
		return errors.New("empty path")
	}
	return os.MkdirAll(path, 0o755)
}
