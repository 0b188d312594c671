// Package memorystorage keeps users and videos in process memory.
// Both collections keep insertion order and never lose members.
// Each MemoryStorage is independent, so every App and every test owns its own.
package memorystorage

import (
	"context"
	"sync"

	"github.com/thoas/go-funk"

	"github.com/patric-chuzhbe/videocatalog/internal/models"
)

type MemoryStorage struct {
	mu     sync.RWMutex
	users  []models.User
	videos []models.Video
}

func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		users:  []models.User{},
		videos: []models.Video{},
	}, nil
}

func (theStorage *MemoryStorage) CreateUser(ctx context.Context, usr *models.User) error {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	theStorage.users = append(theStorage.users, *usr)

	return nil
}

func (theStorage *MemoryStorage) ListUsers(ctx context.Context) ([]models.User, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	result := make([]models.User, len(theStorage.users))
	copy(result, theStorage.users)

	return result, nil
}

func (theStorage *MemoryStorage) GetNumberOfUsers(ctx context.Context) (int64, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	return int64(len(theStorage.users)), nil
}

func (theStorage *MemoryStorage) InsertVideo(ctx context.Context, video *models.Video) error {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	theStorage.videos = append(theStorage.videos, cloneVideo(*video))

	return nil
}

func (theStorage *MemoryStorage) FindVideoByID(ctx context.Context, id string) (models.Video, bool, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	idx := theStorage.indexOf(id)
	if idx == -1 {
		return models.Video{}, false, nil
	}

	return cloneVideo(theStorage.videos[idx]), true, nil
}

// ListVideos filters by userID when it is not empty and returns the
// [offset, offset+limit) window of the result together with the filtered length.
// A window past the end is empty, not an error.
func (theStorage *MemoryStorage) ListVideos(
	ctx context.Context,
	userID string,
	offset,
	limit int,
) ([]models.Video, int, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	filtered := theStorage.videos
	if userID != "" {
		filtered = funk.Filter(theStorage.videos, func(video models.Video) bool {
			return video.UserID == userID
		}).([]models.Video)
	}

	total := len(filtered)
	start := clamp(offset, 0, total)
	end := clamp(offset+limit, start, total)

	page := make([]models.Video, 0, end-start)
	for _, video := range filtered[start:end] {
		page = append(page, cloneVideo(video))
	}

	return page, total, nil
}

// UpdateVideo overwrites the non-nil fields of patch in place.
func (theStorage *MemoryStorage) UpdateVideo(
	ctx context.Context,
	id string,
	patch models.VideoPatch,
) (models.Video, bool, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	idx := theStorage.indexOf(id)
	if idx == -1 {
		return models.Video{}, false, nil
	}

	if patch.Title != nil {
		theStorage.videos[idx].Title = *patch.Title
	}

	return cloneVideo(theStorage.videos[idx]), true, nil
}

func (theStorage *MemoryStorage) GetNumberOfVideos(ctx context.Context) (int64, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	return int64(len(theStorage.videos)), nil
}

func (theStorage *MemoryStorage) Close() error {
	return nil
}

func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

func (theStorage *MemoryStorage) indexOf(id string) int {
	for i := range theStorage.videos {
		if theStorage.videos[i].ID == id {
			return i
		}
	}

	return -1
}

func cloneVideo(video models.Video) models.Video {
	if video.Duration != nil {
		duration := *video.Duration
		video.Duration = &duration
	}

	return video
}

func clamp(value, low, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}

	return value
}
