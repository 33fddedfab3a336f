package deps

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Opener is a command that hands a URL to the desktop's default handler.
// The URL is appended after Args.
type Opener struct {
	Path string
	Args []string
}

// FindOpener returns the URL opener for this platform.
// If customPath is non-empty, it tries that path or looks it up in PATH.
func FindOpener(customPath string) (Opener, error) {
	return findOpener(customPath, runtime.GOOS, exec.LookPath)
}

func findOpener(customPath, goos string, lookPath func(string) (string, error)) (Opener, error) {
	if customPath != "" {
		if _, err := os.Stat(customPath); err == nil {
			return Opener{Path: customPath}, nil
		}
		if p, err := lookPath(customPath); err == nil {
			return Opener{Path: p}, nil
		}
		return Opener{}, fmt.Errorf("could not find opener at %q", customPath)
	}
	switch goos {
	case "darwin":
		if p, err := lookPath("open"); err == nil {
			return Opener{Path: p}, nil
		}
	case "windows":
		if p, err := lookPath("rundll32"); err == nil {
			return Opener{Path: p, Args: []string{"url.dll,FileProtocolHandler"}}, nil
		}
	default:
		for _, name := range []string{"xdg-open", "wslview", "sensible-browser"} {
			if p, err := lookPath(name); err == nil {
				return Opener{Path: p}, nil
			}
		}
	}
	return Opener{}, fmt.Errorf("could not find a URL opener for %s. Install xdg-utils or pass --opener", goos)
}
