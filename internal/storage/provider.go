package storage

import (
	"context"
	"io"
)

// Reader is a forward-only byte stream opened by a provider.
type Reader interface {
	io.ReadCloser
	// Size is the length known at open time, -1 when unknown. It is a hint only.
	Size() int64
}

// Provider is the capability set shared by every storage backend.
type Provider interface {
	// Name identifies the backend in the UI, e.g. "local" or the bucket name.
	Name() string
	// Root is the location browsing starts from.
	Root() string
	// List returns the immediate children of location.
	List(ctx context.Context, location string) ([]Entry, error)
	// Open streams the content stored at path.
	Open(ctx context.Context, path string) (Reader, error)
	// Create returns a sink for path. Content is only durable once Close returns nil.
	Create(ctx context.Context, path string) (io.WriteCloser, error)
	// Delete removes a single file or object.
	Delete(ctx context.Context, path string) error
	// Join addresses entry name under location.
	Join(location, name string) string
	// Parent returns the location above location, or location itself at the top.
	Parent(location string) string
}

type sizedReader struct {
	io.ReadCloser
	size int64
}

func (r sizedReader) Size() int64 {
	return r.size
}

// NewReader pairs a stream with its size hint
func NewReader(rc io.ReadCloser, size int64) Reader {
	return sizedReader{ReadCloser: rc, size: size}
}
