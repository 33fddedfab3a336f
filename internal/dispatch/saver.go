package dispatch

import (
	"context"
	"io"

	"vidfetch/internal/util"
)

// PlaylistFilename is the name a playlist package is saved under.
const PlaylistFilename = "playlist.zip"

// Saver delivers a payload to the user as a named file and returns where it
// ended up.
type Saver interface {
	Save(ctx context.Context, name string, r io.Reader) (path string, n int64, err error)
}

// DirSaver writes files into Dir, replacing existing files of the same name.
type DirSaver struct {
	Dir string
}

func (s DirSaver) Save(ctx context.Context, name string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	dir := s.Dir
	if dir == "" {
		dir = "."
	}
	return util.WriteFileAtomic(dir, name, r)
}
