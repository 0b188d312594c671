package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/videocatalog/internal/models"
)

// Client calls videocatalog.VideoCatalog with the JSON codec.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) invoke(ctx context.Context, method string, in, out interface{}, opts ...grpc.CallOption) error {
	opts = append(opts, grpc.CallContentSubtype(JSONCodec{}.Name()))
	return c.conn.Invoke(ctx, method, in, out, opts...)
}

func (c *Client) ListUsers(ctx context.Context, opts ...grpc.CallOption) ([]models.User, error) {
	out := new(ListUsersResponse)
	if err := c.invoke(ctx, MethodListUsers, &Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) CreateUser(ctx context.Context, in *models.CreateUserRequest, opts ...grpc.CallOption) (models.User, error) {
	out := new(CreateUserResponse)
	if err := c.invoke(ctx, MethodCreateUser, in, out, opts...); err != nil {
		return models.User{}, err
	}
	return out.User, nil
}

func (c *Client) ListVideos(ctx context.Context, in *models.ListVideosQuery, opts ...grpc.CallOption) (models.VideoPage, error) {
	var out models.VideoPage
	err := c.invoke(ctx, MethodListVideos, in, &out, opts...)
	return out, err
}

func (c *Client) GetVideo(ctx context.Context, id string, opts ...grpc.CallOption) (models.Video, error) {
	var out models.Video
	err := c.invoke(ctx, MethodGetVideo, &VideoIDRequest{ID: id}, &out, opts...)
	return out, err
}

func (c *Client) UploadVideo(ctx context.Context, in *models.UploadVideoRequest, opts ...grpc.CallOption) (models.UploadVideoResponse, error) {
	var out models.UploadVideoResponse
	err := c.invoke(ctx, MethodUploadVideo, in, &out, opts...)
	return out, err
}

func (c *Client) UpdateVideo(ctx context.Context, in *UpdateVideoRequest, opts ...grpc.CallOption) (models.Video, error) {
	var out models.Video
	err := c.invoke(ctx, MethodUpdateVideo, in, &out, opts...)
	return out, err
}

func (c *Client) GetInternalStats(ctx context.Context, opts ...grpc.CallOption) (models.InternalStatsResponse, error) {
	var out models.InternalStatsResponse
	err := c.invoke(ctx, MethodGetInternalStats, &Empty{}, &out, opts...)
	return out, err
}
