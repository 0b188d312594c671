package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/patric-chuzhbe/videocatalog/internal/models"
)

type statsStub struct {
	stats models.InternalStatsResponse
	err   error
}

func (s statsStub) GetInternalStats(context.Context) (models.InternalStatsResponse, error) {
	return s.stats, s.err
}

func scrape(t *testing.T, collector *Collector) string {
	t.Helper()

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	return string(body)
}

func TestHTTPMiddlewareUsesRoutePattern(t *testing.T) {
	collector, err := New(nil)
	require.NoError(t, err)

	router := chi.NewRouter()
	router.Use(collector.HTTPMiddleware)
	router.Get("/videos/{id}", func(response http.ResponseWriter, _ *http.Request) {
		response.WriteHeader(http.StatusNotFound)
	})
	router.Get("/ping", func(http.ResponseWriter, *http.Request) {})

	for _, path := range []string{"/videos/a", "/videos/b", "/ping", "/nowhere"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	body := scrape(t, collector)
	assert.Contains(t, body, `videocatalog_http_requests_total{method="GET",route="/videos/{id}",status="404"} 2`)
	assert.Contains(t, body, `videocatalog_http_requests_total{method="GET",route="/ping",status="200"} 1`)
	assert.Contains(t, body, `videocatalog_http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	assert.Contains(t, body, `videocatalog_http_request_duration_seconds_count{method="GET",route="/ping"} 1`)
}

func TestUnaryServerInterceptor(t *testing.T) {
	collector, err := New(nil)
	require.NoError(t, err)

	intercept := collector.UnaryServerInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: "/videocatalog.VideoCatalog/GetVideo"}

	resp, err := intercept(context.Background(), "req", info, func(context.Context, interface{}) (interface{}, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	_, err = intercept(context.Background(), "req", info, func(context.Context, interface{}) (interface{}, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	assert.Equal(t, codes.NotFound, status.Code(err))

	body := scrape(t, collector)
	assert.Contains(t, body, `videocatalog_grpc_requests_total{code="OK",method="/videocatalog.VideoCatalog/GetVideo"} 1`)
	assert.Contains(t, body, `videocatalog_grpc_requests_total{code="NotFound",method="/videocatalog.VideoCatalog/GetVideo"} 1`)
}

func TestCatalogGauges(t *testing.T) {
	t.Run("reads the current stats", func(t *testing.T) {
		collector, err := New(statsStub{stats: models.InternalStatsResponse{Users: 2, Videos: 5}})
		require.NoError(t, err)

		body := scrape(t, collector)
		assert.Contains(t, body, "videocatalog_catalog_users 2")
		assert.Contains(t, body, "videocatalog_catalog_videos 5")
		assert.Contains(t, body, "go_goroutines")
	})

	t.Run("storage failure reports zero", func(t *testing.T) {
		collector, err := New(statsStub{err: errors.New("storage is down")})
		require.NoError(t, err)

		body := scrape(t, collector)
		assert.Contains(t, body, "videocatalog_catalog_videos 0")
	})
}

func TestCollectorsAreIndependent(t *testing.T) {
	first, err := New(nil)
	require.NoError(t, err)
	second, err := New(nil)
	require.NoError(t, err)

	first.httpRequests.WithLabelValues(http.MethodGet, "/ping", "200").Inc()

	assert.Contains(t, scrape(t, first), `route="/ping"`)
	assert.NotContains(t, scrape(t, second), `route="/ping"`)
}
