package mocks

import (
	"context"

	"imagevault/internal/model"
	"imagevault/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockPresignService struct {
	mock.Mock
}

func (m *MockPresignService) IssueUploadURL(ctx context.Context, req service.UploadURLRequest) (*service.UploadURLs, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.UploadURLs), args.Error(1)
}

func (m *MockPresignService) IssueDownloadURL(ctx context.Context, userID, key string) (string, error) {
	args := m.Called(ctx, userID, key)
	return args.String(0), args.Error(1)
}

type MockRegistrarService struct {
	mock.Mock
}

func (m *MockRegistrarService) Register(ctx context.Context, in service.RegisterInput) (*model.ImageRecord, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ImageRecord), args.Error(1)
}

type MockGalleryService struct {
	mock.Mock
}

func (m *MockGalleryService) List(ctx context.Context, userID string, page, pageSize int) (*service.PageResult, error) {
	args := m.Called(ctx, userID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PageResult), args.Error(1)
}

type MockDeletionService struct {
	mock.Mock
}

func (m *MockDeletionService) DeleteImages(ctx context.Context, userID string, records []model.ImageRecord) (*service.DeleteResult, error) {
	args := m.Called(ctx, userID, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DeleteResult), args.Error(1)
}

var (
	_ service.PresignService   = (*MockPresignService)(nil)
	_ service.RegistrarService = (*MockRegistrarService)(nil)
	_ service.GalleryService   = (*MockGalleryService)(nil)
	_ service.DeletionService  = (*MockDeletionService)(nil)
)
