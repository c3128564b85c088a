package imagesource

import "context"

// LibrarySource acquires an already-saved image from disk, the CLI
// equivalent of a gallery pick. An empty path means the user made no
// selection.
type LibrarySource struct {
	Path string
}

// Acquire loads and re-encodes the picked file.
func (s LibrarySource) Acquire(ctx context.Context) Acquisition {
	if s.Path == "" {
		return Acquisition{Status: StatusCancelled}
	}
	if err := ctx.Err(); err != nil {
		return Acquisition{Status: StatusCancelled}
	}
	return loadAsset(s.Path)
}
