package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"imagevault/internal/model"
	"imagevault/internal/policy"
	"imagevault/internal/storage"
)

// DefaultURLExpiry is the lifetime of every presigned URL.
const DefaultURLExpiry = 600 * time.Second

// UploadURLRequest describes one file the caller intends to PUT.
type UploadURLRequest struct {
	UserID        string
	Filename      string
	Size          int64
	MimeType      string
	WithThumbnail bool
}

// UploadURLs holds the write URL for the original and, when requested, its thumbnail.
type UploadURLs struct {
	Key          string
	URL          string
	ThumbnailKey string
	ThumbnailURL string
}

// PresignService issues time-limited URLs. It never touches object bytes.
type PresignService interface {
	// IssueUploadURL validates the request against the upload policy and signs PUT URLs
	// for the deterministic keys.
	IssueUploadURL(ctx context.Context, req UploadURLRequest) (*UploadURLs, error)

	// IssueDownloadURL signs a GET URL for a key in the caller's namespace.
	// Existence is checked by the store when the URL is used.
	IssueDownloadURL(ctx context.Context, userID, key string) (string, error)
}

type presignService struct {
	store  storage.Storage
	policy policy.Policy
	expiry time.Duration
}

// NewPresignService constructs a PresignService. expiry <= 0 selects DefaultURLExpiry.
func NewPresignService(store storage.Storage, pol policy.Policy, expiry time.Duration) PresignService {
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	return &presignService{store: store, policy: pol, expiry: expiry}
}

func (s *presignService) IssueUploadURL(ctx context.Context, req UploadURLRequest) (*UploadURLs, error) {
	if req.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if err := model.ValidateFilename(req.Filename); err != nil {
		return nil, err
	}
	if req.Size < 0 {
		return nil, fmt.Errorf("%w: negative size", ErrInvalidInput)
	}
	if err := s.policy.Validate(req.Size, req.MimeType); err != nil {
		return nil, err
	}

	out := &UploadURLs{Key: model.StoragePath(req.UserID, req.Filename)}
	u, err := s.store.PresignPut(ctx, out.Key, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign upload: %w", err)
	}
	out.URL = u

	if req.WithThumbnail {
		out.ThumbnailKey = model.ThumbnailPath(req.UserID, req.Filename)
		tu, err := s.store.PresignPut(ctx, out.ThumbnailKey, s.expiry)
		if err != nil {
			return nil, fmt.Errorf("presign thumbnail upload: %w", err)
		}
		out.ThumbnailURL = tu
	}
	return out, nil
}

func (s *presignService) IssueDownloadURL(ctx context.Context, userID, key string) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	if key == "" {
		return "", fmt.Errorf("%w: path is required", ErrInvalidInput)
	}
	if !strings.HasPrefix(key, model.UserPrefix(userID)) || strings.Contains(key, "..") {
		return "", ErrForbiddenKey
	}

	u, err := s.store.PresignGet(ctx, key, s.expiry)
	if err != nil {
		return "", fmt.Errorf("presign download: %w", err)
	}
	return u, nil
}
