package selection

import (
	"vidfetch/internal/catalog"
)

// Option is one entry of a picker: the value sent to the backend and the
// label shown to the user.
type Option struct {
	Value string
	Label string
}

var (
	playlistVideoQualities = []Option{
		{Value: "2160p", Label: "4K (2160p)"},
		{Value: "1440p", Label: "2K (1440p)"},
		{Value: "1080p", Label: "Full HD (1080p)"},
		{Value: "720p", Label: "HD (720p)"},
		{Value: "480p", Label: "SD (480p)"},
		{Value: "360p", Label: "360p"},
	}
	playlistAudioQualities = []Option{
		{Value: "320kbps", Label: "320 kbps"},
		{Value: "256kbps", Label: "256 kbps"},
		{Value: "192kbps", Label: "192 kbps"},
		{Value: "128kbps", Label: "128 kbps"},
	}
	playlistVideoContainers = []string{"mp4", "webm", "mkv"}
	playlistAudioContainers = []string{"mp3", "m4a", "opus", "wav"}
)

// QualityOptions lists the qualities offered for the active media kind,
// always starting with "best". Single items offer the catalog's formats;
// playlists offer a fixed ladder.
func (s *State) QualityOptions() []Option {
	best := Option{Value: QualityBest, Label: "Best Available"}
	if s.ItemKind == ItemPlaylist {
		best.Label = "Best"
		ladder := playlistVideoQualities
		if s.MediaKind == catalog.MediaAudio {
			ladder = playlistAudioQualities
		}
		return append([]Option{best}, ladder...)
	}
	out := []Option{best}
	for _, f := range s.catalog.ListFormats(s.MediaKind) {
		out = append(out, Option{Value: f.Quality, Label: f.Label()})
	}
	return out
}

// ContainerOptions lists the container extensions offered for the active
// media kind. A single item without formats for the kind offers none.
func (s *State) ContainerOptions() []string {
	if s.ItemKind == ItemPlaylist {
		if s.MediaKind == catalog.MediaAudio {
			return append([]string(nil), playlistAudioContainers...)
		}
		return append([]string(nil), playlistVideoContainers...)
	}
	return s.catalog.DistinctContainers(s.MediaKind)
}

// Offered reports whether the current quality and container are among the
// offered options. The kind-default container counts as offered when the
// catalog lists no formats for the kind.
func (s *State) Offered() bool {
	qualityOK := false
	for _, o := range s.QualityOptions() {
		if o.Value == s.Quality {
			qualityOK = true
			break
		}
	}
	if !qualityOK {
		return false
	}
	containers := s.ContainerOptions()
	if len(containers) == 0 {
		return s.ContainerFormat == DefaultContainer(s.MediaKind)
	}
	for _, c := range containers {
		if c == s.ContainerFormat {
			return true
		}
	}
	return false
}

// CycleQuality moves the quality selection by delta positions through
// QualityOptions, wrapping around. An unlisted current value starts from the
// first option.
func (s *State) CycleQuality(delta int) {
	opts := s.QualityOptions()
	values := make([]string, len(opts))
	for i, o := range opts {
		values[i] = o.Value
	}
	if v, ok := cycle(values, s.Quality, delta); ok {
		s.Quality = v
	}
}

// CycleContainer moves the container selection by delta positions through
// ContainerOptions, wrapping around.
func (s *State) CycleContainer(delta int) {
	if v, ok := cycle(s.ContainerOptions(), s.ContainerFormat, delta); ok {
		s.ContainerFormat = v
	}
}

func cycle(values []string, current string, delta int) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	idx := -1
	for i, v := range values {
		if v == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		return values[0], true
	}
	n := len(values)
	return values[((idx+delta)%n+n)%n], true
}
