package grpcserver

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/videocatalog/internal/db/memorystorage"
	"github.com/patric-chuzhbe/videocatalog/internal/generator"
	"github.com/patric-chuzhbe/videocatalog/internal/grpcserver/interceptor"
	"github.com/patric-chuzhbe/videocatalog/internal/ipchecker"
	"github.com/patric-chuzhbe/videocatalog/internal/logger"
	"github.com/patric-chuzhbe/videocatalog/internal/metrics"
	"github.com/patric-chuzhbe/videocatalog/internal/mockstorage"
	"github.com/patric-chuzhbe/videocatalog/internal/models"
	"github.com/patric-chuzhbe/videocatalog/internal/service"
)

const (
	addr        = "localhost:0"
	dialTimeout = 5 * time.Second

	testUserID = "11111111-1111-1111-1111-111111111111"
	videoID    = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	fileID     = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
	thumbID    = "cccccccc-cccc-4ccc-8ccc-cccccccccccc"
	missingID  = "99999999-9999-9999-9999-999999999999"
)

type testStorage interface {
	service.Storage
}

type initOptions struct {
	mockStorage    testStorage
	trustedSubnet  string
	serviceOptions []service.Option
	collector      *metrics.Collector
}

type initOption func(*initOptions)

func withMockStorage(db testStorage) initOption {
	return func(options *initOptions) {
		options.mockStorage = db
	}
}

func withTrustedSubnet(subnet string) initOption {
	return func(options *initOptions) {
		options.trustedSubnet = subnet
	}
}

func withServiceOptions(serviceOptions ...service.Option) initOption {
	return func(options *initOptions) {
		options.serviceOptions = append(options.serviceOptions, serviceOptions...)
	}
}

func withCollector(collector *metrics.Collector) initOption {
	return func(options *initOptions) {
		options.collector = collector
	}
}

func strPtr(s string) *string {
	return &s
}

// startTestGRPCServer boots up a test gRPC server and returns the client, the raw connection and a shutdown function.
func startTestGRPCServer(t *testing.T, optionsProto ...initOption) (*Client, *grpc.ClientConn, func()) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := logger.Init("debug")
	require.NoError(t, err)

	var db testStorage
	if options.mockStorage != nil {
		db = options.mockStorage
	} else {
		db, err = memorystorage.New()
		require.NoError(t, err)
	}

	checker, err := ipchecker.New(options.trustedSubnet)
	require.NoError(t, err)

	var serverOptions []ServerOption
	if options.collector != nil {
		serverOptions = append(serverOptions, WithMetrics(options.collector))
	}

	server := NewGRPCServer(
		NewCatalogHandler(service.New(db, options.serviceOptions...)),
		checker,
		serverOptions...,
	)

	lis, err := net.Listen("tcp", addr)
	require.NoError(t, err)

	go func() {
		if err := server.Serve(lis); err != nil {
			t.Logf("gRPC server stopped: %v", err)
		}
	}()

	dialContext, cancelDial := context.WithTimeout(context.Background(), dialTimeout)
	defer cancelDial()

	conn, err := grpc.DialContext(
		dialContext,
		lis.Addr().String(),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithBlock(),
	)
	require.NoError(t, err)

	return NewClient(conn),
		conn,
		func() {
			server.Stop()
			conn.Close()
			lis.Close()
		}
}

func TestUsers(t *testing.T) {
	client, _, stop := startTestGRPCServer(t)
	defer stop()

	ctx := context.Background()

	users, err := client.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	created, err := client.CreateUser(ctx, &models.CreateUserRequest{
		Name:  strPtr("Ann"),
		Email: strPtr("ann@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", created.Name)
	assert.NotEmpty(t, created.ID)

	users, err = client.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.User{created}, users)

	_, err = client.CreateUser(ctx, &models.CreateUserRequest{
		Name:  strPtr("Bob"),
		Email: strPtr("bob"),
	})
	require.Error(t, err)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.Equal(t, "body/email must be a valid email", st.Message())
}

func TestVideoLifecycle(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	client, _, stop := startTestGRPCServer(t, withServiceOptions(
		service.WithIDGenerator(generator.NewSequence(videoID, fileID, thumbID)),
		service.WithClock(generator.FixedClock{At: at}),
		service.WithRandSource(generator.FixedRand{Value: 7}),
	))
	defer stop()

	ctx := context.Background()

	uploaded, err := client.UploadVideo(ctx, &models.UploadVideoRequest{
		Title:  strPtr("My Clip"),
		UserID: strPtr(testUserID),
	})
	require.NoError(t, err)
	assert.Equal(t, models.UploadVideoResponse{
		ID:        videoID,
		Message:   service.UploadInitiatedMessage,
		UploadURL: "https://upload.example.com/" + videoID,
	}, uploaded)

	video, err := client.GetVideo(ctx, videoID)
	require.NoError(t, err)
	assert.Equal(t, "my-clip.mp4", video.Filename)
	assert.Equal(t, "video/mp4", video.MimeType)
	assert.Equal(t, "https://example.com/videos/"+fileID+".mp4", video.URL)
	assert.True(t, at.Equal(video.UploadedAt))

	page, err := client.ListVideos(ctx, &models.ListVideosQuery{UserID: testUserID})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, models.DefaultVideosLimit, page.Limit)
	require.Len(t, page.Videos, 1)

	updated, err := client.UpdateVideo(ctx, &UpdateVideoRequest{ID: videoID, Title: strPtr("X")})
	require.NoError(t, err)
	expected := video
	expected.Title = "X"
	assert.Equal(t, expected, updated)

	_, err = client.GetVideo(ctx, missingID)
	st, _ := status.FromError(err)
	assert.Equal(t, codes.NotFound, st.Code())
	assert.Equal(t, "Video with id "+missingID+" was not found", st.Message())

	_, err = client.GetVideo(ctx, "nope")
	st, _ = status.FromError(err)
	assert.Equal(t, codes.InvalidArgument, st.Code())

	_, err = client.UpdateVideo(ctx, &UpdateVideoRequest{ID: videoID, Title: strPtr("")})
	st, _ = status.FromError(err)
	assert.Equal(t, codes.InvalidArgument, st.Code())

	_, err = client.ListVideos(ctx, &models.ListVideosQuery{Limit: 101})
	st, _ = status.FromError(err)
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestGetInternalStats(t *testing.T) {
	t.Run("peer inside the trusted subnet", func(t *testing.T) {
		client, _, stop := startTestGRPCServer(t, withTrustedSubnet("127.0.0.0/8"))
		defer stop()

		_, err := client.UploadVideo(context.Background(), &models.UploadVideoRequest{
			Title:  strPtr("clip"),
			UserID: strPtr(testUserID),
		})
		require.NoError(t, err)

		stats, err := client.GetInternalStats(context.Background())
		require.NoError(t, err)
		assert.Equal(t, models.InternalStatsResponse{Users: 0, Videos: 1}, stats)
	})

	t.Run("untrusted peer", func(t *testing.T) {
		client, _, stop := startTestGRPCServer(t, withTrustedSubnet("10.0.0.0/8"))
		defer stop()

		_, err := client.GetInternalStats(context.Background())
		st, _ := status.FromError(err)
		assert.Equal(t, codes.PermissionDenied, st.Code())
	})

	t.Run("x-real-ip metadata", func(t *testing.T) {
		client, _, stop := startTestGRPCServer(t, withTrustedSubnet("10.0.0.0/8"))
		defer stop()

		ctx := metadata.AppendToOutgoingContext(context.Background(), interceptor.RealIPKey, "10.1.2.3")
		_, err := client.GetInternalStats(ctx)
		assert.NoError(t, err)
	})
}

func TestStorageFailure(t *testing.T) {
	db := new(mockstorage.StorageMock)
	db.On("Ping", mock.Anything).Return(errors.New("storage is down"))
	db.On("ListUsers", mock.Anything).Return(nil, errors.New("db error"))

	client, conn, stop := startTestGRPCServer(t, withMockStorage(db))
	defer stop()

	_, err := client.ListUsers(context.Background())
	st, _ := status.FromError(err)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "internal server error", st.Message())

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	db.AssertExpectations(t)
}

func TestMetrics(t *testing.T) {
	collector, err := metrics.New(nil)
	require.NoError(t, err)

	client, _, stop := startTestGRPCServer(t, withCollector(collector))
	defer stop()

	_, err = client.ListUsers(context.Background())
	require.NoError(t, err)
	_, err = client.GetVideo(context.Background(), missingID)
	require.Error(t, err)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `videocatalog_grpc_requests_total{code="OK",method="`+MethodListUsers+`"} 1`)
	assert.Contains(t, string(body), `videocatalog_grpc_requests_total{code="NotFound",method="`+MethodGetVideo+`"} 1`)
}

func TestHealth(t *testing.T) {
	_, conn, stop := startTestGRPCServer(t)
	defer stop()

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}

func TestJSONCodec(t *testing.T) {
	codec := JSONCodec{}
	assert.Equal(t, "json", codec.Name())

	data, err := codec.Marshal(&VideoIDRequest{ID: videoID})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"`+videoID+`"}`, string(data))

	data, err = codec.Marshal(&healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"SERVING"}`, string(data))

	var decoded healthpb.HealthCheckResponse
	require.NoError(t, codec.Unmarshal(data, &decoded))
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, decoded.GetStatus())
}
