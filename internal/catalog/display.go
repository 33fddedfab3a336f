package catalog

import (
	"fmt"
	"strconv"

	"vidfetch/internal/util/format"
)

// PreviewLimit is the number of playlist entries shown before "...and N more".
const PreviewLimit = 6

// Label renders the option as shown in a quality picker, e.g. "720p (12.3 MB)".
func (f FormatOption) Label() string {
	if f.FileSizeBytes > 0 {
		return fmt.Sprintf("%s (%s)", f.Quality, format.Megabytes(f.FileSizeBytes))
	}
	return f.Quality
}

// DurationText renders the duration as m:ss.
func (m MediaItem) DurationText() string {
	d := m.DurationSeconds
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%d:%02d", d/60, d%60)
}

// ViewsText renders the view count with thousands separators, or "" when the
// backend did not report one.
func (m MediaItem) ViewsText() string {
	if m.ViewCount == nil {
		return ""
	}
	return groupThousands(*m.ViewCount)
}

// Preview returns at most limit preview items.
func (p PlaylistSummary) Preview(limit int) []MediaItem {
	if limit < 0 || limit >= len(p.PreviewItems) {
		return p.PreviewItems
	}
	return p.PreviewItems[:limit]
}

// Remaining returns how many playlist items are not covered by a preview of
// the given size.
func (p PlaylistSummary) Remaining(limit int) int {
	if p.ItemCount <= limit {
		return 0
	}
	return p.ItemCount - limit
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}
	var out []byte
	pre := len(s) % 3
	if pre > 0 {
		out = append(out, s[:pre]...)
	}
	for i := pre; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
