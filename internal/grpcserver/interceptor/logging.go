package interceptor

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/videocatalog/internal/logger"
)

// RequestIDKey is the metadata key a client may set to correlate its calls in the log.
const RequestIDKey = "x-request-id"

// UnaryLoggingInterceptor logs each unary call with method, duration and status.
func UnaryLoggingInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		start := time.Now()

		resp, err = handler(ctx, req)

		duration := time.Since(start)
		st, _ := status.FromError(err)

		logger.Log.Infoln(
			"gRPC request",
			"request_id", requestID(ctx),
			"method", info.FullMethod,
			"duration", duration,
			"code", st.Code().String(),
			"message", st.Message(),
		)

		return resp, err
	}
}

func requestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(RequestIDKey); len(values) > 0 {
		return values[0]
	}
	return ""
}
