package service

import (
	"context"
	"fmt"

	"imagevault/internal/model"
	"imagevault/internal/repository"
)

// DefaultPageSize is the gallery page size.
const DefaultPageSize = 10

// PageResult is one gallery page. It is recomputed on every query.
type PageResult struct {
	Images      []model.ImageRecord `json:"images"`
	TotalPages  int                 `json:"totalPages"`
	CurrentPage int                 `json:"currentPage"`
}

// GalleryService lists a user's images newest first.
type GalleryService interface {
	// List returns the 1-based page. Pages past the end are empty with TotalPages unchanged.
	List(ctx context.Context, userID string, page, pageSize int) (*PageResult, error)
}

type galleryService struct {
	repo repository.ImageRepository
}

// NewGalleryService constructs a GalleryService.
func NewGalleryService(repo repository.ImageRepository) GalleryService {
	return &galleryService{repo: repo}
}

func (s *galleryService) List(ctx context.Context, userID string, page, pageSize int) (*PageResult, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	res, err := s.repo.ListByUser(ctx, userID, repository.PageQuery{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	images := res.Items
	if images == nil {
		images = []model.ImageRecord{}
	}
	return &PageResult{
		Images:      images,
		TotalPages:  TotalPages(res.Total, pageSize),
		CurrentPage: page,
	}, nil
}

// TotalPages returns ceil(total/pageSize).
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
