package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"imagevault/internal/config"
)

// minioStorage implements the Storage interface using an S3-compatible backend through minio-go.
// It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client       *minio.Client
	bucket       string
	pollInterval time.Duration
}

func newMinIOClient(cfg config.StorageConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage endpoint is required")
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	// Region is set explicitly so presigning never needs a bucket-location round trip.
	return minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
}

// NewMinIO creates a new S3-compatible storage client backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (Storage, error) {
	cli, err := newMinIOClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
		log.Info("storage_bucket_created", "bucket", cfg.Bucket)
	}

	log.Info("storage_connected", "driver", "minio", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	return &minioStorage{client: cli, bucket: cfg.Bucket, pollInterval: defaultPollInterval}, nil
}

// PresignPut generates a pre-signed URL for PUT with the specified expiry.
func (m *minioStorage) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedPutObject(ctx, m.bucket, key, expiry)
	if err != nil {
		return "", mapMinIOError(err)
	}
	return u.String(), nil
}

// PresignGet generates a pre-signed URL for GET with the specified expiry.
func (m *minioStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, expiry, url.Values{})
	if err != nil {
		return "", mapMinIOError(err)
	}
	return u.String(), nil
}

// DeleteObjects removes keys through the multi-object delete API.
// minio-go only reports failures, so every key without one counts as deleted.
func (m *minioStorage) DeleteObjects(ctx context.Context, keys []string) ([]string, error) {
	if len(keys) == 0 {
		return []string{}, nil
	}

	objects := make(chan minio.ObjectInfo, len(keys))
	for _, k := range keys {
		objects <- minio.ObjectInfo{Key: k}
	}
	close(objects)

	failed := make(map[string]struct{})
	var errs []error
	for rErr := range m.client.RemoveObjects(ctx, m.bucket, objects, minio.RemoveObjectsOptions{}) {
		if isMinIOCode(rErr.Err, "NoSuchBucket") {
			return nil, ErrBucketNotFound
		}
		failed[rErr.ObjectName] = struct{}{}
		errs = append(errs, deleteFailure(rErr.ObjectName, rErr.Err.Error()))
	}

	deleted := make([]string, 0, len(keys))
	for _, k := range keys {
		if _, ok := failed[k]; !ok {
			deleted = append(deleted, k)
		}
	}
	return deleted, errors.Join(errs...)
}

// WaitUntilAbsent stats the key until the store answers NoSuchKey.
// Transient stat errors are retried until the deadline.
func (m *minioStorage) WaitUntilAbsent(ctx context.Context, key string, maxWait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, maxWait)
	defer cancel()

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		_, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{})
		switch {
		case isMinIOCode(err, "NoSuchKey"):
			return nil
		case isMinIOCode(err, "NoSuchBucket"):
			return ErrBucketNotFound
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %s", ErrNotConfirmed, key)
		case <-ticker.C:
		}
	}
}

// List walks every object below prefix.
func (m *minioStorage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	out := make([]ObjectInfo, 0)
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, mapMinIOError(obj.Err)
		}
		out = append(out, ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
		})
	}
	return out, nil
}

func isMinIOCode(err error, code string) bool {
	if err == nil {
		return false
	}
	return minio.ToErrorResponse(err).Code == code
}

func mapMinIOError(err error) error {
	if isMinIOCode(err, "NoSuchBucket") {
		return ErrBucketNotFound
	}
	return err
}
