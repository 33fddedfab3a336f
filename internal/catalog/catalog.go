// Package catalog models the backend's description of what can be downloaded
// for a URL: either one media item with its formats, or a playlist summary.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// MediaKind selects between the video and audio format lists.
type MediaKind string

const (
	MediaVideo MediaKind = "video"
	MediaAudio MediaKind = "audio"
)

// Valid reports whether k is one of the known media kinds.
func (k MediaKind) Valid() bool {
	return k == MediaVideo || k == MediaAudio
}

// ParseMediaKind converts a user-supplied string into a MediaKind.
func ParseMediaKind(s string) (MediaKind, error) {
	k := MediaKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("invalid media kind %q (valid: video|audio)", s)
	}
	return k, nil
}

// Kind is the catalog tag.
type Kind int

const (
	KindNone Kind = iota
	KindSingle
	KindPlaylist
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindPlaylist:
		return "playlist"
	default:
		return "none"
	}
}

// FormatOption is one concrete encoding offered for a media item.
type FormatOption struct {
	Quality       string
	ContainerExt  string
	FileSizeBytes int64 // 0 if unknown
}

// MediaItem is one downloadable unit.
type MediaItem struct {
	Title           string
	ThumbnailURL    string
	DurationSeconds int
	Author          string // empty if not reported
	ViewCount       *int64 // nil if not reported
	VideoFormats    []FormatOption
	AudioFormats    []FormatOption
}

// Formats returns the format list for the given kind.
func (m MediaItem) Formats(kind MediaKind) []FormatOption {
	switch kind {
	case MediaVideo:
		return m.VideoFormats
	case MediaAudio:
		return m.AudioFormats
	default:
		return nil
	}
}

// PlaylistSummary describes a collection. PreviewItems may be a truncated
// prefix of the playlist; ItemCount is the full size.
type PlaylistSummary struct {
	Title        string
	ItemCount    int
	PreviewItems []MediaItem
}

// Catalog is either a single MediaItem or a PlaylistSummary. The zero value is
// an empty catalog (KindNone). A Catalog is never mutated after Parse.
type Catalog struct {
	kind     Kind
	item     MediaItem
	playlist PlaylistSummary
}

// ErrUnknownType is returned by Parse when the discriminator is missing or
// not recognised.
var ErrUnknownType = errors.New("unknown catalog type")

// NewSingle wraps a media item.
func NewSingle(item MediaItem) Catalog {
	return Catalog{kind: KindSingle, item: cloneItem(item)}
}

// NewPlaylist wraps a playlist summary.
func NewPlaylist(p PlaylistSummary) Catalog {
	items := make([]MediaItem, len(p.PreviewItems))
	for i, it := range p.PreviewItems {
		items[i] = cloneItem(it)
	}
	p.PreviewItems = items
	return Catalog{kind: KindPlaylist, playlist: p}
}

// Parse decodes an /api/info response body and classifies it by its "type"
// field.
func Parse(data []byte) (Catalog, error) {
	var w wireItem
	if err := json.Unmarshal(data, &w); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	switch w.Type {
	case wireTypeVideo:
		return NewSingle(w.toItem()), nil
	case wireTypePlaylist:
		p := PlaylistSummary{
			Title:     w.Title,
			ItemCount: toInt(w.VideoCount),
		}
		for _, v := range w.Videos {
			p.PreviewItems = append(p.PreviewItems, v.toItem())
		}
		if p.ItemCount == 0 {
			p.ItemCount = len(p.PreviewItems)
		}
		return NewPlaylist(p), nil
	default:
		return Catalog{}, fmt.Errorf("%w: %q", ErrUnknownType, w.Type)
	}
}

// Kind returns the catalog tag.
func (c Catalog) Kind() Kind { return c.kind }

// IsEmpty reports whether c carries no data.
func (c Catalog) IsEmpty() bool { return c.kind == KindNone }

// Item returns the media item; ok is false unless the catalog is single.
func (c Catalog) Item() (MediaItem, bool) {
	if c.kind != KindSingle {
		return MediaItem{}, false
	}
	return cloneItem(c.item), true
}

// Playlist returns the playlist summary; ok is false unless the catalog is a
// playlist.
func (c Catalog) Playlist() (PlaylistSummary, bool) {
	if c.kind != KindPlaylist {
		return PlaylistSummary{}, false
	}
	p := c.playlist
	p.PreviewItems = append([]MediaItem(nil), c.playlist.PreviewItems...)
	return p, true
}

// Title returns the item or playlist title.
func (c Catalog) Title() string {
	switch c.kind {
	case KindSingle:
		return c.item.Title
	case KindPlaylist:
		return c.playlist.Title
	default:
		return ""
	}
}

// ListFormats returns the formats offered for kind. Playlists are not
// queried per item, so they always yield an empty list.
func (c Catalog) ListFormats(kind MediaKind) []FormatOption {
	if c.kind != KindSingle {
		return []FormatOption{}
	}
	return append([]FormatOption{}, c.item.Formats(kind)...)
}

// DistinctContainers returns the container extensions offered for kind in
// first-seen order.
func (c Catalog) DistinctContainers(kind MediaKind) []string {
	return DistinctContainers(c.ListFormats(kind))
}

// DistinctContainers projects formats onto their container extension and
// removes duplicates, keeping the first occurrence.
func DistinctContainers(formats []FormatOption) []string {
	out := make([]string, 0, len(formats))
	seen := make(map[string]struct{}, len(formats))
	for _, f := range formats {
		if _, ok := seen[f.ContainerExt]; ok {
			continue
		}
		seen[f.ContainerExt] = struct{}{}
		out = append(out, f.ContainerExt)
	}
	return out
}

func (w wireItem) toItem() MediaItem {
	item := MediaItem{
		Title:           w.Title,
		ThumbnailURL:    w.Thumbnail,
		DurationSeconds: toInt(w.Duration),
		VideoFormats:    toFormats(w.VideoFormats),
		AudioFormats:    toFormats(w.AudioFormats),
	}
	if w.Author != nil {
		item.Author = *w.Author
	}
	if w.ViewCount != nil {
		v := int64(math.Trunc(*w.ViewCount))
		item.ViewCount = &v
	}
	return item
}

func toFormats(in []wireFormat) []FormatOption {
	out := make([]FormatOption, 0, len(in))
	for _, f := range in {
		var size int64
		if f.Filesize != nil && *f.Filesize > 0 {
			size = int64(math.Trunc(*f.Filesize))
		}
		out = append(out, FormatOption{
			Quality:       f.Quality,
			ContainerExt:  f.Ext,
			FileSizeBytes: size,
		})
	}
	return out
}

func toInt(v *float64) int {
	if v == nil || *v < 0 {
		return 0
	}
	return int(math.Trunc(*v))
}

func cloneItem(m MediaItem) MediaItem {
	m.VideoFormats = append([]FormatOption{}, m.VideoFormats...)
	m.AudioFormats = append([]FormatOption{}, m.AudioFormats...)
	if m.ViewCount != nil {
		v := *m.ViewCount
		m.ViewCount = &v
	}
	return m
}
