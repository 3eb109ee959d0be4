package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"imagevault/internal/config"
)

// maxDeleteBatch is the S3 limit of keys per DeleteObjects call.
const maxDeleteBatch = 1000

// s3Storage implements Storage on aws-sdk-go-v2. It targets AWS S3 and
// S3-compatible services such as Cloudflare R2 through a custom base endpoint.
type s3Storage struct {
	client       *s3.Client
	presign      *s3.PresignClient
	bucket       string
	pollInterval time.Duration
}

func newS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(endpointURL(cfg.Endpoint, cfg.UseSSL))
		}
		o.UsePathStyle = cfg.ForcePathStyle
	}), nil
}

// NewS3 creates a storage client on aws-sdk-go-v2 and verifies the bucket is reachable.
// Unlike the MinIO driver it never creates the bucket.
func NewS3(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (Storage, error) {
	client, err := newS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		return nil, fmt.Errorf("access bucket %q: %w", cfg.Bucket, mapS3Error(err))
	}

	log.Info("storage_connected", "driver", "s3", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket, "region", cfg.Region)
	return newS3Storage(client, cfg.Bucket), nil
}

func newS3Storage(client *s3.Client, bucket string) *s3Storage {
	return &s3Storage{
		client:       client,
		presign:      s3.NewPresignClient(client),
		bucket:       bucket,
		pollInterval: defaultPollInterval,
	}
}

// endpointURL accepts either a bare host:port (the MinIO convention) or a full URL.
func endpointURL(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

func (s *s3Storage) PresignPut(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

func (s *s3Storage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// DeleteObjects issues DeleteObjects in batches of maxDeleteBatch.
// Deleted keys are taken from the response, not assumed.
func (s *s3Storage) DeleteObjects(ctx context.Context, keys []string) ([]string, error) {
	deleted := make([]string, 0, len(keys))
	var errs []error

	for _, batch := range chunk(keys, maxDeleteBatch) {
		ids := make([]types.ObjectIdentifier, len(batch))
		for i, k := range batch {
			ids[i] = types.ObjectIdentifier{Key: aws.String(k)}
		}

		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(false)},
		})
		if err != nil {
			return deleted, mapS3Error(err)
		}
		for _, d := range out.Deleted {
			deleted = append(deleted, aws.ToString(d.Key))
		}
		for _, e := range out.Errors {
			errs = append(errs, deleteFailure(aws.ToString(e.Key), aws.ToString(e.Code)+" "+aws.ToString(e.Message)))
		}
	}
	return deleted, errors.Join(errs...)
}

// WaitUntilAbsent uses the SDK's ObjectNotExists waiter.
func (s *s3Storage) WaitUntilAbsent(ctx context.Context, key string, maxWait time.Duration) error {
	waiter := s3.NewObjectNotExistsWaiter(s.client, func(o *s3.ObjectNotExistsWaiterOptions) {
		o.MinDelay = s.pollInterval
		o.MaxDelay = 5 * s.pollInterval
	})
	err := waiter.Wait(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, maxWait)
	if err == nil {
		return nil
	}
	if mapped := mapS3Error(err); errors.Is(mapped, ErrBucketNotFound) {
		return mapped
	}
	return fmt.Errorf("%w: %s: %v", ErrNotConfirmed, key, err)
}

func (s *s3Storage) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	out := make([]ObjectInfo, 0)
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, mapS3Error(err)
		}
		for _, obj := range page.Contents {
			out = append(out, ObjectInfo{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				ETag:         strings.Trim(aws.ToString(obj.ETag), `"`),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
	}
	return out, nil
}

func mapS3Error(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NoSuchBucket" {
		return ErrBucketNotFound
	}
	return err
}

func chunk(keys []string, size int) [][]string {
	var out [][]string
	for len(keys) > size {
		out = append(out, keys[:size])
		keys = keys[size:]
	}
	if len(keys) > 0 {
		out = append(out, keys)
	}
	return out
}
