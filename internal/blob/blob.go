// Package blob stores card images in object storage.
package blob

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates no object exists under the requested key.
var ErrNotFound = errors.New("object not found")

// Store is the object storage contract card images go through.
type Store interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}
