// Package storage abstracts where uploaded media bytes live. The rest of
// the application only sees opaque locators and bounded byte windows.
package storage

import (
	"context"
	"fmt"
	"io"

	"mediavault/internal/config"
)

// Supported backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// BlobStore stores and serves opaque byte blobs keyed by locator.
type BlobStore interface {
	// Put stores the content and returns a locator for later retrieval.
	// The original filename is used only to preserve the extension.
	Put(ctx context.Context, r io.Reader, size int64, filename string) (string, error)
	// Exists reports whether the locator references stored bytes.
	Exists(ctx context.Context, locator string) (bool, error)
	// Size returns the total byte length of the blob.
	Size(ctx context.Context, locator string) (int64, error)
	// OpenRange opens the inclusive [start, end] window as a sequential
	// stream. The caller must close it.
	OpenRange(ctx context.Context, locator string, start, end int64) (io.ReadCloser, error)
	// Remove deletes the blob. Used to roll back failed uploads.
	Remove(ctx context.Context, locator string) error
}

// New selects and constructs the configured backend.
func New(cfg *config.Config) (BlobStore, error) {
	switch cfg.StorageBackend {
	case BackendS3:
		return NewS3(S3Config{
			Endpoint:  cfg.S3Endpoint,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
		})
	case BackendLocal:
		return NewLocal(cfg.UploadDir)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.StorageBackend)
	}
}
