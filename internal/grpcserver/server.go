package grpcserver

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/patric-chuzhbe/videocatalog/internal/grpcserver/interceptor"
	"github.com/patric-chuzhbe/videocatalog/internal/ipchecker"
	"github.com/patric-chuzhbe/videocatalog/internal/logger"
	"github.com/patric-chuzhbe/videocatalog/internal/metrics"
)

type serverOptions struct {
	metrics *metrics.Collector
}

type ServerOption func(*serverOptions)

// WithMetrics records every unary call in collector.
func WithMetrics(collector *metrics.Collector) ServerOption {
	return func(o *serverOptions) {
		o.metrics = collector
	}
}

// NewGRPCServer builds a server exposing the catalog and the standard
// health service. GetInternalStats is limited to the trusted subnet.
// The health status reflects the storage ping at construction time.
func NewGRPCServer(handler *CatalogHandler, checker *ipchecker.IPChecker, optionsProto ...ServerOption) *grpc.Server {
	opts := &serverOptions{}
	for _, protoOption := range optionsProto {
		protoOption(opts)
	}

	if checker == nil {
		checker, _ = ipchecker.New("")
	}

	var interceptors []grpc.UnaryServerInterceptor
	if opts.metrics != nil {
		interceptors = append(interceptors, opts.metrics.UnaryServerInterceptor())
	}
	interceptors = append(interceptors,
		interceptor.UnaryLoggingInterceptor(),
		interceptor.UnaryTrustedSubnetInterceptor(checker, []string{
			MethodGetInternalStats,
		}),
	)

	server := grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
	RegisterCatalogServer(server, handler)

	healthServer := health.NewServer()
	servingStatus := healthpb.HealthCheckResponse_SERVING
	if err := handler.svc.Ping(context.Background()); err != nil {
		logger.Log.Errorln("storage is not reachable", "error", err)
		servingStatus = healthpb.HealthCheckResponse_NOT_SERVING
	}
	healthServer.SetServingStatus("", servingStatus)
	healthServer.SetServingStatus(ServiceName, servingStatus)
	healthpb.RegisterHealthServer(server, healthServer)

	return server
}
