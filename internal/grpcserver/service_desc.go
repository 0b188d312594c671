package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/videocatalog/internal/models"
)

const ServiceName = "videocatalog.VideoCatalog"

const (
	MethodListUsers        = "/" + ServiceName + "/ListUsers"
	MethodCreateUser       = "/" + ServiceName + "/CreateUser"
	MethodListVideos       = "/" + ServiceName + "/ListVideos"
	MethodGetVideo         = "/" + ServiceName + "/GetVideo"
	MethodUploadVideo      = "/" + ServiceName + "/UploadVideo"
	MethodUpdateVideo      = "/" + ServiceName + "/UpdateVideo"
	MethodGetInternalStats = "/" + ServiceName + "/GetInternalStats"
)

// CatalogServer is the server API of the videocatalog.VideoCatalog service.
type CatalogServer interface {
	ListUsers(context.Context, *Empty) (*ListUsersResponse, error)
	CreateUser(context.Context, *models.CreateUserRequest) (*CreateUserResponse, error)
	ListVideos(context.Context, *models.ListVideosQuery) (*models.VideoPage, error)
	GetVideo(context.Context, *VideoIDRequest) (*models.Video, error)
	UploadVideo(context.Context, *models.UploadVideoRequest) (*models.UploadVideoResponse, error)
	UpdateVideo(context.Context, *UpdateVideoRequest) (*models.Video, error)
	GetInternalStats(context.Context, *Empty) (*models.InternalStatsResponse, error)
}

type unaryHandler = func(
	srv interface{},
	ctx context.Context,
	dec func(interface{}) error,
	interceptor grpc.UnaryServerInterceptor,
) (interface{}, error)

func newUnaryHandler[Req any, Resp any](
	fullMethod string,
	call func(CatalogServer, context.Context, *Req) (*Resp, error),
) unaryHandler {
	return func(
		srv interface{},
		ctx context.Context,
		dec func(interface{}) error,
		interceptor grpc.UnaryServerInterceptor,
	) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CatalogServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CatalogServer), ctx, req.(*Req))
		}

		return interceptor(ctx, in, info, handler)
	}
}

var catalogServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CatalogServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ListUsers", Handler: newUnaryHandler(MethodListUsers, CatalogServer.ListUsers)},
		{MethodName: "CreateUser", Handler: newUnaryHandler(MethodCreateUser, CatalogServer.CreateUser)},
		{MethodName: "ListVideos", Handler: newUnaryHandler(MethodListVideos, CatalogServer.ListVideos)},
		{MethodName: "GetVideo", Handler: newUnaryHandler(MethodGetVideo, CatalogServer.GetVideo)},
		{MethodName: "UploadVideo", Handler: newUnaryHandler(MethodUploadVideo, CatalogServer.UploadVideo)},
		{MethodName: "UpdateVideo", Handler: newUnaryHandler(MethodUpdateVideo, CatalogServer.UpdateVideo)},
		{MethodName: "GetInternalStats", Handler: newUnaryHandler(MethodGetInternalStats, CatalogServer.GetInternalStats)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "videocatalog",
}

// RegisterCatalogServer attaches srv to s under videocatalog.VideoCatalog.
func RegisterCatalogServer(s grpc.ServiceRegistrar, srv CatalogServer) {
	s.RegisterService(&catalogServiceDesc, srv)
}
