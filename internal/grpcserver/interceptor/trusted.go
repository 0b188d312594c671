package interceptor

import (
	"context"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/videocatalog/internal/logger"
)

// RealIPKey mirrors the X-Real-IP header of the HTTP API.
const RealIPKey = "x-real-ip"

type ipChecker interface {
	Check(clientIP net.IP) bool
}

// UnaryTrustedSubnetInterceptor rejects calls to protectedMethods with
// PermissionDenied unless the client address is inside the trusted subnet.
func UnaryTrustedSubnetInterceptor(checker ipChecker, protectedMethods []string) grpc.UnaryServerInterceptor {
	protected := make(map[string]struct{}, len(protectedMethods))
	for _, m := range protectedMethods {
		protected[m] = struct{}{}
	}

	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		if _, ok := protected[info.FullMethod]; !ok {
			return handler(ctx, req)
		}

		clientIP := clientIPFromContext(ctx)
		if !checker.Check(clientIP) {
			logger.Log.Debugln("rejected untrusted gRPC client", "method", info.FullMethod, "ip", clientIP)
			return nil, status.Error(codes.PermissionDenied, "the client is not in the trusted subnet")
		}

		return handler(ctx, req)
	}
}

// clientIPFromContext prefers the x-real-ip metadata and falls back to the peer address.
func clientIPFromContext(ctx context.Context) net.IP {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(RealIPKey); len(values) > 0 {
			if ip := net.ParseIP(strings.TrimSpace(values[0])); ip != nil {
				return ip
			}
		}
	}

	p, ok := peer.FromContext(ctx)
	if !ok || p.Addr == nil {
		return nil
	}

	host, _, err := net.SplitHostPort(p.Addr.String())
	if err != nil {
		return nil
	}

	return net.ParseIP(host)
}
