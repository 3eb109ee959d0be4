// Package service holds the image use cases: URL issuance, metadata registration,
// gallery pagination, paired deletion and orphan reconciliation.
package service

import (
	"errors"

	"imagevault/internal/model"
	"imagevault/internal/policy"
	"imagevault/internal/storage"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrInvalidInput    = errors.New("invalid input")
	ErrForbiddenKey    = errors.New("key is outside the caller's namespace")
	ErrPathMismatch    = errors.New("storage paths do not match filename")
	ErrDuplicateImage  = errors.New("image with this filename already exists")

	// Re-exported so callers can classify without importing lower layers.
	ErrInvalidFilename = model.ErrInvalidFilename
	ErrPayloadTooLarge = policy.ErrPayloadTooLarge
	ErrUnsupportedType = policy.ErrUnsupportedType
	ErrBucketNotFound  = storage.ErrBucketNotFound
)
