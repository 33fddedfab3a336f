package dispatch

import (
	"errors"
	"fmt"
	"net/http"
)

// Operation names carried by FetchError.
const (
	OpInfo             = "info"
	OpDownloadPlaylist = "download-playlist"
)

// User-facing messages, one per failing operation.
const (
	msgInfoFailed     = "failed to fetch video info"
	msgPlaylistFailed = "playlist download failed"
)

// ErrWrongKind is returned when an intent is passed to the wrong Run method.
var ErrWrongKind = errors.New("intent kind does not match operation")

// FetchError reports a backend call that did not succeed: a non-2xx status
// (Status > 0) or a transport/decoding failure (Err != nil).
type FetchError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status > 0 && e.Err != nil:
		return fmt.Sprintf("%s: %d %s: %v", e.Message, e.Status, http.StatusText(e.Status), e.Err)
	case e.Status > 0:
		return fmt.Sprintf("%s: %d %s", e.Message, e.Status, http.StatusText(e.Status))
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetch reports whether err is (or wraps) a FetchError.
func IsFetch(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
