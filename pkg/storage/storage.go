package storage

import (
	"context"
	"io"
)

// BlobStore abstracts the object store used for media uploads.
type BlobStore interface {
	// Store writes the object and returns its public URL.
	Store(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, objectName string) error
	Ping(ctx context.Context) error
}
