package grpcserver

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/videocatalog/internal/logger"
	"github.com/patric-chuzhbe/videocatalog/internal/models"
	"github.com/patric-chuzhbe/videocatalog/internal/schema"
	"github.com/patric-chuzhbe/videocatalog/internal/service"
)

// CatalogHandler serves the catalog over gRPC with the same validation
// and service calls as the HTTP router.
type CatalogHandler struct {
	svc *service.Service
}

func NewCatalogHandler(svc *service.Service) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

func (h *CatalogHandler) ListUsers(ctx context.Context, _ *Empty) (*ListUsersResponse, error) {
	users, err := h.svc.ListUsers(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return &ListUsersResponse{Users: users}, nil
}

func (h *CatalogHandler) CreateUser(ctx context.Context, req *models.CreateUserRequest) (*CreateUserResponse, error) {
	if err := schema.Validate(schema.LocationBody, req); err != nil {
		return nil, toStatus(err)
	}

	usr, err := h.svc.CreateUser(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}

	return &CreateUserResponse{User: usr}, nil
}

func (h *CatalogHandler) ListVideos(ctx context.Context, req *models.ListVideosQuery) (*models.VideoPage, error) {
	query := *req
	if query.Limit == 0 {
		query.Limit = models.DefaultVideosLimit
	}
	if err := schema.Validate(schema.LocationQuerystring, &query); err != nil {
		return nil, toStatus(err)
	}

	page, err := h.svc.ListVideos(ctx, query)
	if err != nil {
		return nil, toStatus(err)
	}

	return &page, nil
}

func (h *CatalogHandler) GetVideo(ctx context.Context, req *VideoIDRequest) (*models.Video, error) {
	id, err := schema.ParseID(req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	video, err := h.svc.GetVideo(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}

	return &video, nil
}

func (h *CatalogHandler) UploadVideo(ctx context.Context, req *models.UploadVideoRequest) (*models.UploadVideoResponse, error) {
	if err := schema.Validate(schema.LocationBody, req); err != nil {
		return nil, toStatus(err)
	}

	resp, err := h.svc.UploadVideo(ctx, *req)
	if err != nil {
		return nil, toStatus(err)
	}

	return &resp, nil
}

func (h *CatalogHandler) UpdateVideo(ctx context.Context, req *UpdateVideoRequest) (*models.Video, error) {
	id, err := schema.ParseID(req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	update := models.UpdateVideoRequest{Title: req.Title}
	if err := schema.Validate(schema.LocationBody, &update); err != nil {
		return nil, toStatus(err)
	}

	video, err := h.svc.UpdateVideo(ctx, id, update)
	if err != nil {
		return nil, toStatus(err)
	}

	return &video, nil
}

func (h *CatalogHandler) GetInternalStats(ctx context.Context, _ *Empty) (*models.InternalStatsResponse, error) {
	stats, err := h.svc.GetInternalStats(ctx)
	if err != nil {
		return nil, toStatus(err)
	}

	return &stats, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, schema.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case service.IsNotFound(err):
		return status.Error(codes.NotFound, err.Error())
	default:
		logger.Log.Errorw("gRPC call failed", zap.Error(err))
		return status.Error(codes.Internal, "internal server error")
	}
}
