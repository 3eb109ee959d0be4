package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aws/smithy-go"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagevault/internal/config"
	"imagevault/internal/logging"
)

func testConfig(endpoint string) config.StorageConfig {
	return config.StorageConfig{
		Endpoint:       endpoint,
		AccessKey:      "access",
		SecretKey:      "secret",
		Bucket:         "images",
		Region:         "us-east-1",
		ForcePathStyle: true,
	}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	cfg := testConfig("localhost:9000")
	cfg.Driver = "ftp"

	s, err := New(context.Background(), cfg, logging.Discard())

	assert.Nil(t, s)
	assert.EqualError(t, err, `unsupported storage driver "ftp"`)
}

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing endpoint", func(c *config.StorageConfig) { c.Endpoint = "" }, "storage endpoint is required"},
		{"missing credentials", func(c *config.StorageConfig) { c.SecretKey = "" }, "storage credentials are required"},
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "storage bucket is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("localhost:9000")
			tt.mutate(&cfg)

			s, err := NewMinIO(context.Background(), cfg, logging.Discard())

			assert.Nil(t, s)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMinIO_Presign(t *testing.T) {
	cli, err := newMinIOClient(testConfig("localhost:9000"))
	require.NoError(t, err)
	s := &minioStorage{client: cli, bucket: "images", pollInterval: time.Millisecond}
	ctx := context.Background()

	put, err := s.PresignPut(ctx, "u1/a.png", 600*time.Second)
	require.NoError(t, err)
	u, err := url.Parse(put)
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/images/u1/a.png", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))

	get, err := s.PresignGet(ctx, "u1/thumbnails/thumb-a.png", time.Minute)
	require.NoError(t, err)
	u, err = url.Parse(get)
	require.NoError(t, err)
	assert.Equal(t, "/images/u1/thumbnails/thumb-a.png", u.Path)
	assert.Equal(t, "60", u.Query().Get("X-Amz-Expires"))
}

func TestS3_Presign(t *testing.T) {
	client, err := newS3Client(context.Background(), testConfig("localhost:9000"))
	require.NoError(t, err)
	s := newS3Storage(client, "images")
	ctx := context.Background()

	put, err := s.PresignPut(ctx, "u1/a.png", 600*time.Second)
	require.NoError(t, err)
	u, err := url.Parse(put)
	require.NoError(t, err)
	assert.Equal(t, "http", u.Scheme)
	assert.Equal(t, "localhost:9000", u.Host)
	assert.Equal(t, "/images/u1/a.png", u.Path)
	assert.Equal(t, "600", u.Query().Get("X-Amz-Expires"))

	get, err := s.PresignGet(ctx, "u1/a.png", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, get, "X-Amz-Expires=60")
}

// fakeS3 serves just enough of the S3 API for the minio driver.
type fakeS3 struct {
	headCalls   atomic.Int32
	goneAfter   int32
	headStatus  int
	deleteBody  string
	deleteCalls atomic.Int32
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodHead:
		n := f.headCalls.Add(1)
		if f.headStatus != 0 {
			w.WriteHeader(f.headStatus)
			return
		}
		if f.goneAfter > 0 && n > f.goneAfter {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("ETag", `"abc"`)
		w.Header().Set("Content-Length", "3")
		w.Header().Set("Last-Modified", time.Now().UTC().Format(http.TimeFormat))
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodPost && r.URL.Query().Has("delete"):
		f.deleteCalls.Add(1)
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = io.WriteString(w, f.deleteBody)
	case r.Method == http.MethodDelete:
		f.deleteCalls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotImplemented)
	}
}

func newFakeMinIO(t *testing.T, f *fakeS3) *minioStorage {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	cli, err := newMinIOClient(testConfig(strings.TrimPrefix(srv.URL, "http://")))
	require.NoError(t, err)
	return &minioStorage{client: cli, bucket: "images", pollInterval: 5 * time.Millisecond}
}

func TestMinIO_WaitUntilAbsent(t *testing.T) {
	t.Run("returns once the object is gone", func(t *testing.T) {
		f := &fakeS3{goneAfter: 2}
		s := newFakeMinIO(t, f)

		err := s.WaitUntilAbsent(context.Background(), "u1/a.png", 2*time.Second)

		assert.NoError(t, err)
		assert.Equal(t, int32(3), f.headCalls.Load())
	})

	t.Run("times out while the object is still visible", func(t *testing.T) {
		f := &fakeS3{}
		s := newFakeMinIO(t, f)

		err := s.WaitUntilAbsent(context.Background(), "u1/a.png", 50*time.Millisecond)

		assert.ErrorIs(t, err, ErrNotConfirmed)
		assert.Contains(t, err.Error(), "u1/a.png")
	})
}

func TestMinIO_DeleteObjects(t *testing.T) {
	t.Run("partial failure reports deleted and failed keys", func(t *testing.T) {
		f := &fakeS3{deleteBody: `<?xml version="1.0" encoding="UTF-8"?>
<DeleteResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Deleted><Key>u1/a.png</Key></Deleted><Error><Key>u1/b.png</Key><Code>AccessDenied</Code><Message>denied</Message></Error></DeleteResult>`}
		s := newFakeMinIO(t, f)

		deleted, err := s.DeleteObjects(context.Background(), []string{"u1/a.png", "u1/b.png"})

		assert.Equal(t, []string{"u1/a.png"}, deleted)
		assert.ErrorIs(t, err, ErrDeleteFailed)
		assert.Contains(t, err.Error(), "u1/b.png")
	})

	t.Run("empty input does not call the store", func(t *testing.T) {
		f := &fakeS3{}
		s := newFakeMinIO(t, f)

		deleted, err := s.DeleteObjects(context.Background(), nil)

		assert.NoError(t, err)
		assert.Empty(t, deleted)
		assert.Zero(t, f.deleteCalls.Load())
	})
}

func TestErrorMapping(t *testing.T) {
	assert.True(t, isMinIOCode(minio.ErrorResponse{Code: "NoSuchKey"}, "NoSuchKey"))
	assert.False(t, isMinIOCode(nil, "NoSuchKey"))
	assert.ErrorIs(t, mapMinIOError(minio.ErrorResponse{Code: "NoSuchBucket"}), ErrBucketNotFound)

	wrapped := fmt.Errorf("operation error S3: DeleteObjects: %w", &smithy.GenericAPIError{Code: "NoSuchBucket"})
	assert.ErrorIs(t, mapS3Error(wrapped), ErrBucketNotFound)

	other := errors.New("boom")
	assert.Equal(t, other, mapS3Error(other))
}

func TestEndpointURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000", endpointURL("localhost:9000", false))
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", endpointURL("acct.r2.cloudflarestorage.com", true))
	assert.Equal(t, "https://acct.r2.cloudflarestorage.com", endpointURL("https://acct.r2.cloudflarestorage.com", false))
}

func TestChunk(t *testing.T) {
	keys := make([]string, 2500)
	for i := range keys {
		keys[i] = fmt.Sprintf("k%d", i)
	}

	batches := chunk(keys, maxDeleteBatch)

	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 1000)
	assert.Len(t, batches[2], 500)
	assert.Nil(t, chunk(nil, maxDeleteBatch))
}
