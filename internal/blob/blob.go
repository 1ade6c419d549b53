// Package blob provides the object-store surface consumed by the gateway.
package blob

import (
	"context"
	"errors"
)

// ErrExists is returned by Upload when the path is taken and Upsert is false.
var ErrExists = errors.New("object already exists")

// UploadOptions control a single upload.
type UploadOptions struct {
	ContentType string
	// Upsert allows overwriting an existing object at the same path.
	Upsert bool
}

// Store is the object-store contract: upload, public URL composition, and
// best-effort removal.
type Store interface {
	// Upload writes data at path and returns the stored path.
	Upload(ctx context.Context, path string, data []byte, opts UploadOptions) (string, error)
	PublicURL(path string) string
	Remove(ctx context.Context, paths ...string) error
}
