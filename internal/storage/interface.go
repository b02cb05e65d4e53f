package storage

import (
	"context"
	"io"
)

// Storage is the remote object store the pipeline writes image assets to.
type Storage interface {
	Upload(ctx context.Context, key string, data io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]string, error)
	// EnsureDir makes the destination directory exist. Creating an existing
	// directory is success, not error.
	EnsureDir(ctx context.Context, prefix string) error
	// PublicURL synthesizes the externally reachable URL for a stored key.
	PublicURL(key string) string
}
