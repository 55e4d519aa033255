// Package storage defines the interface for object storage operations.
// Swap implementations by changing the concrete type injected at startup —
// the MinIO implementation works with any S3-compatible provider.
package storage

import (
	"context"
	"io"
)

// Storage is the interface for uploading and addressing objects.
type Storage interface {
	// Upload streams data to the store under the given key. Writing to an
	// existing key overwrites the object (upsert), so callers that reuse a
	// key get replace semantics without a separate delete.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}
