package storage

import (
	"context"
	"io"
)

// Storage defines the interface for stored assets (structure photos).
type Storage interface {
	// Save writes content at the given relative path, creating parents as needed.
	Save(ctx context.Context, path string, content io.Reader) error

	// Get opens the asset at the given relative path.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the asset at the given relative path. Missing files are not an error.
	Delete(ctx context.Context, path string) error
}
