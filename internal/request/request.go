// Package request turns a selection into a concrete, not yet executed
// backend call. It performs no network I/O.
package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"vidfetch/internal/catalog"
	"vidfetch/internal/selection"
)

// Kind identifies which backend call an Intent describes.
type Kind int

const (
	MetadataLookup Kind = iota + 1
	DirectDownload
	PlaylistPackage
)

func (k Kind) String() string {
	switch k {
	case MetadataLookup:
		return "metadata-lookup"
	case DirectDownload:
		return "direct-download"
	case PlaylistPackage:
		return "playlist-package"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Backend paths, relative to the configured origin.
const (
	PathInfo             = "/api/info"
	PathDownload         = "/api/download"
	PathDownloadPlaylist = "/api/download-playlist"
)

// Intent is a fully specified backend call. Values are carried verbatim,
// including the "best" sentinel.
type Intent struct {
	Kind            Kind
	URL             string
	MediaKind       catalog.MediaKind
	Quality         string
	ContainerFormat string
}

// ValidationError reports input rejected before any network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ErrEmptyURL is the ValidationError for a missing source URL.
var ErrEmptyURL = &ValidationError{Field: "url", Reason: "is required"}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Builder builds intents against one backend origin.
type Builder struct {
	origin string
}

// NewBuilder validates origin (scheme and host required) and returns a
// Builder bound to it.
func NewBuilder(origin string) (*Builder, error) {
	u, err := url.Parse(strings.TrimSpace(origin))
	if err != nil {
		return nil, fmt.Errorf("invalid api url %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host are required", origin)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url %q: unsupported scheme %q", origin, u.Scheme)
	}
	return &Builder{origin: strings.TrimRight(u.String(), "/")}, nil
}

// Origin returns the backend base URL without a trailing slash.
func (b *Builder) Origin() string {
	return b.origin
}

// BuildMetadataRequest returns a metadata lookup for rawURL. The URL is kept
// verbatim; only empty or blank input is rejected.
func (b *Builder) BuildMetadataRequest(rawURL string) (Intent, error) {
	if strings.TrimSpace(rawURL) == "" {
		return Intent{}, ErrEmptyURL
	}
	return Intent{Kind: MetadataLookup, URL: rawURL}, nil
}

// BuildDownloadRequest returns a playlist package intent when the selection
// targets a playlist and a direct download intent otherwise.
func (b *Builder) BuildDownloadRequest(s *selection.State) Intent {
	kind := DirectDownload
	if s.ItemKind == selection.ItemPlaylist {
		kind = PlaylistPackage
	}
	return Intent{
		Kind:            kind,
		URL:             s.SourceURL,
		MediaKind:       s.MediaKind,
		Quality:         s.Quality,
		ContainerFormat: s.ContainerFormat,
	}
}

// Endpoint returns the absolute endpoint URL for an intent kind.
func (b *Builder) Endpoint(kind Kind) string {
	switch kind {
	case MetadataLookup:
		return b.origin + PathInfo
	case DirectDownload:
		return b.origin + PathDownload
	case PlaylistPackage:
		return b.origin + PathDownloadPlaylist
	default:
		return b.origin
	}
}

// DirectURL encodes a direct download intent as a query-string URL.
func (b *Builder) DirectURL(in Intent) string {
	q := url.Values{}
	q.Set("url", in.URL)
	q.Set("type", string(in.MediaKind))
	q.Set("quality", in.Quality)
	q.Set("format", in.ContainerFormat)
	return b.Endpoint(DirectDownload) + "?" + encodeOrdered(q, "url", "type", "quality", "format")
}

type metadataBody struct {
	URL string `json:"url"`
}

type playlistBody struct {
	URL     string `json:"url"`
	Type    string `json:"type"`
	Quality string `json:"quality"`
	Format  string `json:"format"`
}

// MetadataBody returns the JSON body for POST /api/info.
func MetadataBody(in Intent) ([]byte, error) {
	return json.Marshal(metadataBody{URL: in.URL})
}

// PlaylistBody returns the JSON body for POST /api/download-playlist.
func PlaylistBody(in Intent) ([]byte, error) {
	return json.Marshal(playlistBody{
		URL:     in.URL,
		Type:    string(in.MediaKind),
		Quality: in.Quality,
		Format:  in.ContainerFormat,
	})
}

// encodeOrdered is url.Values.Encode with a fixed key order instead of a
// sorted one, so URLs read like the backend documents them.
func encodeOrdered(v url.Values, keys ...string) string {
	var b strings.Builder
	for _, k := range keys {
		for _, val := range v[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
		}
	}
	return b.String()
}
