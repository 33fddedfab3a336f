package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"vidfetch/internal/catalog"
	"vidfetch/internal/selection"
)

// SelectionFlags are the user's overrides on top of the catalog defaults.
// Empty fields leave the derived value alone.
type SelectionFlags struct {
	MediaKind catalog.MediaKind
	Quality   string
	Format    string
}

// BindSelectionFlags registers --type, --quality and --format.
func BindSelectionFlags(fs *pflag.FlagSet) {
	fs.StringP("type", "t", "", "Media type: video, audio (default video)")
	fs.StringP("quality", "q", "", "Quality label, e.g. 720p, 320kbps, best (default: first offered)")
	fs.StringP("format", "f", "", "Container format, e.g. mp4, webm, mp3 (default: first offered)")
}

// ParseSelectionFlags reads and validates the flags registered by
// BindSelectionFlags.
func ParseSelectionFlags(fs *pflag.FlagSet) (SelectionFlags, error) {
	var sf SelectionFlags
	typ, err := fs.GetString("type")
	if err != nil {
		return SelectionFlags{}, err
	}
	if typ = strings.ToLower(strings.TrimSpace(typ)); typ != "" {
		k, err := catalog.ParseMediaKind(typ)
		if err != nil {
			return SelectionFlags{}, fmt.Errorf("invalid --type: %w", err)
		}
		sf.MediaKind = k
	}
	if sf.Quality, err = fs.GetString("quality"); err != nil {
		return SelectionFlags{}, err
	}
	if sf.Format, err = fs.GetString("format"); err != nil {
		return SelectionFlags{}, err
	}
	sf.Quality = strings.TrimSpace(sf.Quality)
	sf.Format = strings.ToLower(strings.TrimSpace(sf.Format))
	return sf, nil
}

// Apply writes the overrides into s. The media kind goes first since
// switching it resets quality and format.
func (sf SelectionFlags) Apply(s *selection.State) {
	if sf.MediaKind != "" && sf.MediaKind != s.MediaKind {
		s.SetMediaKind(sf.MediaKind)
	}
	if sf.Quality != "" {
		s.SetQuality(sf.Quality)
	}
	if sf.Format != "" {
		s.SetContainerFormat(sf.Format)
	}
}
