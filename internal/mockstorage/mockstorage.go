// Package mockstorage provides a testify-based mock implementation
// of the storage interfaces used by the service and router packages.
// It is used for unit testing storage failure paths.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/patric-chuzhbe/videocatalog/internal/models"
)

// StorageMock is a testify mock that implements every storage
// operation the video catalog needs.
type StorageMock struct {
	mock.Mock
}

// Ping mocks the pinger interface to simulate a health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *StorageMock) CreateUser(ctx context.Context, usr *models.User) error {
	args := m.Called(ctx, usr)
	return args.Error(0)
}

func (m *StorageMock) ListUsers(ctx context.Context) ([]models.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *StorageMock) GetNumberOfUsers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *StorageMock) InsertVideo(ctx context.Context, video *models.Video) error {
	args := m.Called(ctx, video)
	return args.Error(0)
}

func (m *StorageMock) FindVideoByID(ctx context.Context, id string) (models.Video, bool, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Video), args.Bool(1), args.Error(2)
}

func (m *StorageMock) ListVideos(
	ctx context.Context,
	userID string,
	offset,
	limit int,
) ([]models.Video, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	videos, _ := args.Get(0).([]models.Video)
	return videos, args.Int(1), args.Error(2)
}

func (m *StorageMock) UpdateVideo(
	ctx context.Context,
	id string,
	patch models.VideoPatch,
) (models.Video, bool, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(models.Video), args.Bool(1), args.Error(2)
}

func (m *StorageMock) GetNumberOfVideos(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
