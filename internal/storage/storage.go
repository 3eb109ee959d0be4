// Package storage contains the object-store abstraction used by the image services.
// Clients never stream image bytes through the server: writes and reads go through presigned URLs,
// and the server only signs, batch-deletes, polls for absence and lists.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"imagevault/internal/config"
)

var (
	// ErrBucketNotFound is returned when the configured bucket does not exist.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrDeleteFailed wraps per-key failures reported by a batch delete.
	ErrDeleteFailed = errors.New("object delete failed")
	// ErrNotConfirmed is returned when an object is still visible after the wait window.
	ErrNotConfirmed = errors.New("object removal not confirmed")
)

// defaultPollInterval is the delay between existence checks while waiting for removal.
const defaultPollInterval = 500 * time.Millisecond

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// Storage is a reusable, S3-compatible object storage client interface.
// Implementations are safe for concurrent use.
type Storage interface {
	// PresignPut returns a time-limited URL that accepts a single PUT of the object.
	PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error)
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// DeleteObjects removes keys in batch and returns the keys the store reports as deleted.
	// Per-key failures are joined into the error and wrap ErrDeleteFailed.
	DeleteObjects(ctx context.Context, keys []string) ([]string, error)
	// WaitUntilAbsent polls until key no longer exists or maxWait elapses (ErrNotConfirmed).
	WaitUntilAbsent(ctx context.Context, key string, maxWait time.Duration) error
	// List returns every object whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// New builds the storage driver selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (Storage, error) {
	switch cfg.Driver {
	case "", "minio":
		return NewMinIO(ctx, cfg, log)
	case "s3":
		return NewS3(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func validate(cfg config.StorageConfig) error {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return fmt.Errorf("storage credentials are required")
	}
	if cfg.Bucket == "" {
		return fmt.Errorf("storage bucket is required")
	}
	return nil
}

func deleteFailure(key, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrDeleteFailed, key, reason)
}
