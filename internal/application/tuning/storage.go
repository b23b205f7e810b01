package tuning

import (
	"context"
	"time"
)

// ObjectStorageService abstracts the object store holding original and
// modified tuning files. Implemented by the S3 adapter in the
// infrastructure layer; a stub exists for development.
type ObjectStorageService interface {
	// Upload stores a file under storageKey
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	// Download fetches the full contents of a stored file
	Download(ctx context.Context, storageKey string) ([]byte, error)
	// GenerateDownloadURL returns a time-limited URL for direct
	// download. Callers must verify ownership before handing it out.
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	// DeleteObject removes a stored file
	DeleteObject(ctx context.Context, storageKey string) error
	// ObjectExists reports whether a key is present
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}
