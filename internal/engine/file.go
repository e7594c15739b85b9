package engine

import (
	"context"
	"path/filepath"

	"github.com/san-kum/nbodyval/internal/snapshot"
)

// File serves a snapshot already written to Path.
type File struct {
	Label string
	Path  string
	Width int
}

func (f *File) Name() string {
	if f.Label != "" {
		return f.Label
	}
	return filepath.Base(f.Path)
}

func (f *File) Acquire(ctx context.Context, req Request) (snapshot.Snapshot, error) {
	width := f.Width
	if width == 0 {
		width = snapshot.WidthResult
	}
	return snapshot.Read(f.Path, req.Particles, width)
}
