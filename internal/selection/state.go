// Package selection holds the user's current download configuration and the
// rules that keep it consistent with the catalog.
package selection

import (
	"vidfetch/internal/catalog"
)

// QualityBest is the sentinel quality that lets the backend pick.
const QualityBest = "best"

// ItemKind distinguishes single-item downloads from playlist packages.
type ItemKind string

const (
	ItemSingle   ItemKind = "single"
	ItemPlaylist ItemKind = "playlist"
)

// DefaultContainer returns the container a media kind falls back to.
func DefaultContainer(kind catalog.MediaKind) string {
	if kind == catalog.MediaAudio {
		return "mp3"
	}
	return "mp4"
}

// State is the current download configuration. ItemKind is derived from the
// catalog and cannot be set directly. Quality and ContainerFormat are not
// validated against the catalog when set.
type State struct {
	SourceURL       string
	ItemKind        ItemKind
	MediaKind       catalog.MediaKind
	Quality         string
	ContainerFormat string

	catalog catalog.Catalog
}

// New returns a State with session defaults: single item, video, "best", mp4.
func New() *State {
	return &State{
		ItemKind:        ItemSingle,
		MediaKind:       catalog.MediaVideo,
		Quality:         QualityBest,
		ContainerFormat: DefaultContainer(catalog.MediaVideo),
	}
}

// Catalog returns the catalog the state was last derived from. It is empty
// before the first lookup and after a failed one.
func (s *State) Catalog() catalog.Catalog {
	return s.catalog
}

// HasCatalog reports whether a catalog is currently held.
func (s *State) HasCatalog() bool {
	return !s.catalog.IsEmpty()
}

// SetSourceURL records the user-supplied URL.
func (s *State) SetSourceURL(u string) {
	s.SourceURL = u
}

// SetMediaKind switches between video and audio. The container is reset to
// the kind's default and the quality to "best", unless a single-item catalog
// offers formats for the kind, in which case the first one is adopted.
func (s *State) SetMediaKind(kind catalog.MediaKind) {
	s.MediaKind = kind
	s.applyDefaults()
}

// SetQuality sets the quality label verbatim.
func (s *State) SetQuality(q string) {
	s.Quality = q
}

// SetContainerFormat sets the container extension verbatim.
func (s *State) SetContainerFormat(f string) {
	s.ContainerFormat = f
}

// OnCatalogArrived adopts a freshly fetched catalog. ItemKind follows the
// catalog tag; single items re-derive quality and container for the current
// media kind. Playlists keep the current values only where the fixed
// playlist options list them, otherwise fall back to "best" and the kind
// default.
func (s *State) OnCatalogArrived(c catalog.Catalog) {
	s.catalog = c
	switch c.Kind() {
	case catalog.KindPlaylist:
		s.ItemKind = ItemPlaylist
		s.keepOffered()
	case catalog.KindSingle:
		s.ItemKind = ItemSingle
		s.applyDefaults()
	}
}

// ClearCatalog drops the held catalog. ItemKind keeps its last value until
// the next catalog arrives.
func (s *State) ClearCatalog() {
	s.catalog = catalog.Catalog{}
}

func (s *State) keepOffered() {
	qualityOK := false
	for _, o := range s.QualityOptions() {
		if o.Value == s.Quality {
			qualityOK = true
			break
		}
	}
	if !qualityOK {
		s.Quality = QualityBest
	}
	containerOK := false
	for _, c := range s.ContainerOptions() {
		if c == s.ContainerFormat {
			containerOK = true
			break
		}
	}
	if !containerOK {
		s.ContainerFormat = DefaultContainer(s.MediaKind)
	}
}

func (s *State) applyDefaults() {
	s.Quality = QualityBest
	s.ContainerFormat = DefaultContainer(s.MediaKind)
	if s.catalog.Kind() != catalog.KindSingle {
		return
	}
	if formats := s.catalog.ListFormats(s.MediaKind); len(formats) > 0 {
		s.Quality = formats[0].Quality
		s.ContainerFormat = formats[0].ContainerExt
	}
}
