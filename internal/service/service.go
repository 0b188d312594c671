package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/patric-chuzhbe/videocatalog/internal/generator"
	"github.com/patric-chuzhbe/videocatalog/internal/logger"
	"github.com/patric-chuzhbe/videocatalog/internal/models"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *models.User) error

	ListUsers(ctx context.Context) ([]models.User, error)

	GetNumberOfUsers(ctx context.Context) (int64, error)
}

type videoKeeper interface {
	InsertVideo(ctx context.Context, video *models.Video) error

	FindVideoByID(ctx context.Context, id string) (models.Video, bool, error)

	ListVideos(
		ctx context.Context,
		userID string,
		offset,
		limit int,
	) ([]models.Video, int, error)

	UpdateVideo(
		ctx context.Context,
		id string,
		patch models.VideoPatch,
	) (models.Video, bool, error)

	GetNumberOfVideos(ctx context.Context) (int64, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Storage is everything the service needs from a persistence layer.
type Storage interface {
	userKeeper
	videoKeeper
	pinger
}

const (
	DefaultMediaBaseURL  = "https://example.com"
	DefaultUploadBaseURL = "https://upload.example.com"

	UploadInitiatedMessage = "Video upload initiated successfully"

	maxDurationSeconds = 3600
	maxFileSizeBytes   = 100_000_000
)

// ErrVideoNotFound is matched by the *NotFoundError returned for missing videos.
var ErrVideoNotFound = fmt.Errorf("video %w", models.ErrNotFound)

// NotFoundError names the entity and id that could not be found.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %s was not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return (e.Entity == "Video" && target == ErrVideoNotFound) || target == models.ErrNotFound
}

var whitespaceRuns = regexp.MustCompile(`[\s\x{0B}\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

type Service struct {
	db            Storage
	ids           generator.IDGenerator
	clock         generator.Clock
	rnd           generator.RandSource
	mediaBaseURL  string
	uploadBaseURL string
}

type Option func(*Service)

func WithIDGenerator(ids generator.IDGenerator) Option {
	return func(s *Service) {
		s.ids = ids
	}
}

func WithClock(clock generator.Clock) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

func WithRandSource(rnd generator.RandSource) Option {
	return func(s *Service) {
		s.rnd = rnd
	}
}

// WithMediaBaseURL sets the base the synthetic video and thumbnail URLs are built on.
func WithMediaBaseURL(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.mediaBaseURL = strings.TrimRight(base, "/")
		}
	}
}

// WithUploadBaseURL sets the base of the upload URL returned to the client.
func WithUploadBaseURL(base string) Option {
	return func(s *Service) {
		if base != "" {
			s.uploadBaseURL = strings.TrimRight(base, "/")
		}
	}
}

func New(db Storage, optionsProto ...Option) *Service {
	s := &Service{
		db:            db,
		ids:           generator.UUIDGenerator{},
		clock:         generator.SystemClock{},
		rnd:           generator.NewLockedRand(generator.SystemClock{}.Now().UnixNano()),
		mediaBaseURL:  DefaultMediaBaseURL,
		uploadBaseURL: DefaultUploadBaseURL,
	}
	for _, protoOption := range optionsProto {
		protoOption(s)
	}

	return s
}

// CreateUser registers a new user under a fresh id.
// Neither the name nor the email is checked for uniqueness.
func (s *Service) CreateUser(ctx context.Context, req models.CreateUserRequest) (models.User, error) {
	usr := models.User{
		ID:    s.ids.NewID(),
		Name:  deref(req.Name),
		Email: deref(req.Email),
	}

	if err := s.db.CreateUser(ctx, &usr); err != nil {
		return models.User{}, fmt.Errorf("in internal/service/service.go/CreateUser(): error while `s.db.CreateUser()` calling: %w", err)
	}

	logger.Log.Debugln("user created", "id", usr.ID)

	return usr, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.db.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}

	return users, nil
}

// ListVideos returns one page of the video list, optionally restricted to one user.
func (s *Service) ListVideos(ctx context.Context, query models.ListVideosQuery) (models.VideoPage, error) {
	videos, total, err := s.db.ListVideos(ctx, query.UserID, query.Offset, query.Limit)
	if err != nil {
		return models.VideoPage{}, err
	}
	if videos == nil {
		videos = []models.Video{}
	}

	return models.VideoPage{
		Videos: videos,
		Total:  total,
		Limit:  query.Limit,
		Offset: query.Offset,
	}, nil
}

func (s *Service) GetVideo(ctx context.Context, id string) (models.Video, error) {
	video, found, err := s.db.FindVideoByID(ctx, id)
	if err != nil {
		return models.Video{}, err
	}
	if !found {
		return models.Video{}, &NotFoundError{Entity: "Video", ID: id}
	}

	return video, nil
}

// UploadVideo records a video without receiving any file. Everything except
// the title and the owner is synthesized.
func (s *Service) UploadVideo(ctx context.Context, req models.UploadVideoRequest) (models.UploadVideoResponse, error) {
	title := deref(req.Title)
	duration := s.rnd.Intn(maxDurationSeconds)

	video := models.Video{
		ID:         s.ids.NewID(),
		Title:      title,
		Filename:   Filename(title),
		URL:        fmt.Sprintf("%s/videos/%s.mp4", s.mediaBaseURL, s.ids.NewID()),
		Thumbnail:  fmt.Sprintf("%s/thumbnails/%s.jpg", s.mediaBaseURL, s.ids.NewID()),
		Duration:   &duration,
		FileSize:   int64(s.rnd.Intn(maxFileSizeBytes)),
		MimeType:   models.VideoMimeType,
		UploadedAt: s.clock.Now(),
		UserID:     deref(req.UserID),
	}

	if err := s.db.InsertVideo(ctx, &video); err != nil {
		return models.UploadVideoResponse{}, fmt.Errorf("in internal/service/service.go/UploadVideo(): error while `s.db.InsertVideo()` calling: %w", err)
	}

	logger.Log.Debugln("video upload initiated", "id", video.ID, "userId", video.UserID)

	return models.UploadVideoResponse{
		ID:        video.ID,
		Message:   UploadInitiatedMessage,
		UploadURL: s.uploadBaseURL + "/" + video.ID,
	}, nil
}

// UpdateVideo applies a partial update; only the title can change.
func (s *Service) UpdateVideo(ctx context.Context, id string, req models.UpdateVideoRequest) (models.Video, error) {
	video, found, err := s.db.UpdateVideo(ctx, id, models.VideoPatch{Title: req.Title})
	if err != nil {
		return models.Video{}, err
	}
	if !found {
		return models.Video{}, &NotFoundError{Entity: "Video", ID: id}
	}

	return video, nil
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// GetInternalStats returns the number of registered users and videos.
func (s *Service) GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error) {
	users, err := s.db.GetNumberOfUsers(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	videos, err := s.db.GetNumberOfVideos(ctx)
	if err != nil {
		return models.InternalStatsResponse{}, err
	}

	return models.InternalStatsResponse{
		Users:  users,
		Videos: videos,
	}, nil
}

// Filename derives the stored file name from a title: lower-cased, every
// whitespace run replaced by a dash, ".mp4" appended.
func Filename(title string) string {
	return whitespaceRuns.ReplaceAllString(strings.ToLower(title), "-") + ".mp4"
}

// IsNotFound reports whether err means a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, models.ErrNotFound)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
