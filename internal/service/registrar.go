package service

import (
	"context"
	"errors"
	"fmt"

	"imagevault/internal/model"
	"imagevault/internal/repository"
)

// RegisterInput is the metadata reported after both objects were uploaded.
type RegisterInput struct {
	UserID        string
	Filename      string
	Size          int64
	MimeType      string
	StoragePath   string
	ThumbnailPath string
}

// RegistrarService writes image metadata once the objects exist.
type RegistrarService interface {
	// Register inserts a record for (UserID, Filename). A live record for the same pair
	// yields ErrDuplicateImage and leaves the existing record unchanged.
	Register(ctx context.Context, in RegisterInput) (*model.ImageRecord, error)
}

type registrarService struct {
	repo repository.ImageRepository
}

// NewRegistrarService constructs a RegistrarService.
func NewRegistrarService(repo repository.ImageRepository) RegistrarService {
	return &registrarService{repo: repo}
}

func (s *registrarService) Register(ctx context.Context, in RegisterInput) (*model.ImageRecord, error) {
	if in.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if err := model.ValidateFilename(in.Filename); err != nil {
		return nil, err
	}
	if in.Size < 0 {
		return nil, fmt.Errorf("%w: negative size", ErrInvalidInput)
	}

	storagePath := model.StoragePath(in.UserID, in.Filename)
	thumbnailPath := model.ThumbnailPath(in.UserID, in.Filename)
	if (in.StoragePath != "" && in.StoragePath != storagePath) ||
		(in.ThumbnailPath != "" && in.ThumbnailPath != thumbnailPath) {
		return nil, ErrPathMismatch
	}

	// Fast path only; the unique index decides under concurrency.
	if _, err := s.repo.FindByUserAndFilename(ctx, in.UserID, in.Filename); err == nil {
		return nil, ErrDuplicateImage
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("register image: %w", err)
	}

	stored, err := s.repo.Create(ctx, &model.ImageRecord{
		UserID:        in.UserID,
		Filename:      in.Filename,
		Size:          in.Size,
		MimeType:      in.MimeType,
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateImage
		}
		return nil, fmt.Errorf("register image: %w", err)
	}
	return stored, nil
}
