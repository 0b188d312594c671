// Package metrics exposes Prometheus counters for both transports together
// with gauges mirroring the catalog size.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/videocatalog/internal/logger"
	"github.com/patric-chuzhbe/videocatalog/internal/models"
)

const (
	namespace        = "videocatalog"
	unmatchedRoute   = "unmatched"
	statsReadTimeout = time.Second
)

// StatsSource reports how many users and videos are stored.
type StatsSource interface {
	GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error)
}

// Collector owns a private registry so several instances can live in one process.
type Collector struct {
	registry     *prometheus.Registry
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	grpcRequests *prometheus.CounterVec
	grpcDuration *prometheus.HistogramVec
}

// New registers the request metrics, the Go runtime collectors and,
// when stats is not nil, the catalog size gauges.
func New(stats StatsSource) (*Collector, error) {
	collector := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route pattern and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route pattern.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"method", "route"}),
		grpcRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "requests_total",
			Help:      "Unary gRPC calls by full method and status code.",
		}, []string{"method", "code"}),
		grpcDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grpc",
			Name:      "request_duration_seconds",
			Help:      "Unary gRPC latency by full method.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10},
		}, []string{"method"}),
	}

	toRegister := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collector.httpRequests,
		collector.httpDuration,
		collector.grpcRequests,
		collector.grpcDuration,
	}
	if stats != nil {
		toRegister = append(toRegister,
			newStatsGauge(stats, "users", "Number of registered users.", func(s models.InternalStatsResponse) int64 { return s.Users }),
			newStatsGauge(stats, "videos", "Number of stored videos.", func(s models.InternalStatsResponse) int64 { return s.Videos }),
		)
	}

	for _, c := range toRegister {
		if err := collector.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return collector, nil
}

func newStatsGauge(
	stats StatsSource,
	name string,
	help string,
	pick func(models.InternalStatsResponse) int64,
) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "catalog",
		Name:      name,
		Help:      help,
	}, func() float64 {
		ctx, cancel := context.WithTimeout(context.Background(), statsReadTimeout)
		defer cancel()

		current, err := stats.GetInternalStats(ctx)
		if err != nil {
			logger.Log.Errorw("unable to read catalog stats for metrics", zap.Error(err))
			return 0
		}

		return float64(pick(current))
	})
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// HTTPMiddleware counts requests per chi route pattern, so /videos/{id} is one series.
func (c *Collector) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(response http.ResponseWriter, request *http.Request) {
		start := time.Now()
		wrapped := middleware.NewWrapResponseWriter(response, request.ProtoMajor)

		next.ServeHTTP(wrapped, request)

		route := unmatchedRoute
		if routeCtx := chi.RouteContext(request.Context()); routeCtx != nil {
			if pattern := routeCtx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		statusCode := wrapped.Status()
		if statusCode == 0 {
			statusCode = http.StatusOK
		}

		c.httpRequests.WithLabelValues(request.Method, route, strconv.Itoa(statusCode)).Inc()
		c.httpDuration.WithLabelValues(request.Method, route).Observe(time.Since(start).Seconds())
	})
}

// UnaryServerInterceptor counts every unary call with its resulting status code.
func (c *Collector) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		c.grpcRequests.WithLabelValues(info.FullMethod, status.Code(err).String()).Inc()
		c.grpcDuration.WithLabelValues(info.FullMethod).Observe(time.Since(start).Seconds())

		return resp, err
	}
}
