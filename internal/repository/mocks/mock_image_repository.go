package mocks

import (
	"context"

	"imagevault/internal/model"
	"imagevault/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockImageRepository struct {
	mock.Mock
}

var _ repository.ImageRepository = (*MockImageRepository)(nil)

func (m *MockImageRepository) Create(ctx context.Context, img *model.ImageRecord) (*model.ImageRecord, error) {
	args := m.Called(ctx, img)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ImageRecord), args.Error(1)
}

func (m *MockImageRepository) FindByUserAndFilename(ctx context.Context, userID, filename string) (*model.ImageRecord, error) {
	args := m.Called(ctx, userID, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ImageRecord), args.Error(1)
}

func (m *MockImageRepository) ListByUser(ctx context.Context, userID string, pq repository.PageQuery) (*repository.PageResult[model.ImageRecord], error) {
	args := m.Called(ctx, userID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.ImageRecord]), args.Error(1)
}

func (m *MockImageRepository) DeleteByIDs(ctx context.Context, userID string, ids []string) ([]model.ImageRecord, error) {
	args := m.Called(ctx, userID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ImageRecord), args.Error(1)
}

func (m *MockImageRepository) PathsByUser(ctx context.Context, userID string) (map[string]struct{}, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]struct{}), args.Error(1)
}
