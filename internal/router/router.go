// Package router exposes the video catalog over HTTP.
// Every request part is checked by the schema package before the service runs.
package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/patric-chuzhbe/videocatalog/internal/docs"
	"github.com/patric-chuzhbe/videocatalog/internal/gzippedhttp"
	"github.com/patric-chuzhbe/videocatalog/internal/ipchecker"
	"github.com/patric-chuzhbe/videocatalog/internal/logger"
	"github.com/patric-chuzhbe/videocatalog/internal/metrics"
	"github.com/patric-chuzhbe/videocatalog/internal/models"
	"github.com/patric-chuzhbe/videocatalog/internal/schema"
	"github.com/patric-chuzhbe/videocatalog/internal/service"
)

type Router struct {
	svc *service.Service
}

type options struct {
	metrics *metrics.Collector
}

type Option func(*options)

// WithMetrics counts every request and serves the collector on GET /metrics.
func WithMetrics(collector *metrics.Collector) Option {
	return func(o *options) {
		o.metrics = collector
	}
}

// New builds the chi router. A nil checker keeps the internal stats closed to everyone.
func New(svc *service.Service, checker *ipchecker.IPChecker, optionsProto ...Option) *chi.Mux {
	opts := &options{}
	for _, protoOption := range optionsProto {
		protoOption(opts)
	}

	if checker == nil {
		checker, _ = ipchecker.New("")
	}

	myRouter := Router{
		svc: svc,
	}

	router := chi.NewRouter()
	if opts.metrics != nil {
		router.Use(opts.metrics.HTTPMiddleware)
	}
	router.Use(
		middleware.RequestID,
		logger.WithLoggingHTTPMiddleware,
		middleware.Recoverer,
		gzippedhttp.UngzipRequest,
		middleware.Compress(5, "application/json"),
	)
	router.NotFound(myRouter.notFound)
	router.MethodNotAllowed(myRouter.methodNotAllowed)

	router.Get(`/ping`, myRouter.GetPing)

	router.Route(`/users`, func(r chi.Router) {
		r.Get(`/`, myRouter.GetUsers)
		r.Post(`/`, myRouter.PostUsers)
	})

	router.Route(`/videos`, func(r chi.Router) {
		r.Get(`/`, myRouter.GetVideos)
		r.Post(`/upload`, myRouter.PostVideosupload)
		r.Get(`/{id}`, myRouter.GetVideo)
		r.Patch(`/{id}`, myRouter.PatchVideo)
	})

	router.With(checker.TrustedOnly).Get(`/api/internal/stats`, myRouter.GetApiinternalstats)

	if opts.metrics != nil {
		router.With(checker.TrustedOnly).Method(http.MethodGet, `/metrics`, opts.metrics.Handler())
	}

	router.Get(`/docs/*`, httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	return router
}

// GetUsers godoc
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200 {array} models.User
// @Router       /users [get]
func (router *Router) GetUsers(response http.ResponseWriter, request *http.Request) {
	users, err := router.svc.ListUsers(request.Context())
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, users)
}

// PostUsers godoc
// @Summary      Create new user
// @Tags         users
// @Accept       json
// @Param        request body models.CreateUserRequest true "New user"
// @Success      201
// @Failure      400 {object} models.ErrorResponse
// @Router       /users [post]
func (router *Router) PostUsers(response http.ResponseWriter, request *http.Request) {
	var req models.CreateUserRequest
	if err := decodeBody(request, &req); err != nil {
		router.writeServiceError(response, err)
		return
	}

	if _, err := router.svc.CreateUser(request.Context(), req); err != nil {
		router.writeServiceError(response, err)
		return
	}

	response.WriteHeader(http.StatusCreated)
}

// GetVideos godoc
// @Summary      List all videos
// @Tags         videos
// @Produce      json
// @Param        limit  query int    false "Page size (1..100)" default(10)
// @Param        offset query int    false "Items to skip"      default(0)
// @Param        userId query string false "Owner filter"
// @Success      200 {object} models.VideoPage
// @Failure      400 {object} models.ErrorResponse
// @Router       /videos [get]
func (router *Router) GetVideos(response http.ResponseWriter, request *http.Request) {
	query, err := schema.ParseListVideosQuery(request.URL.Query())
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	page, err := router.svc.ListVideos(request.Context(), query)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, page)
}

// GetVideo godoc
// @Summary      Get video by ID
// @Tags         videos
// @Produce      json
// @Param        id path string true "Video id"
// @Success      200 {object} models.Video
// @Failure      400 {object} models.ErrorResponse
// @Failure      404 {object} models.ErrorResponse
// @Router       /videos/{id} [get]
func (router *Router) GetVideo(response http.ResponseWriter, request *http.Request) {
	id, err := schema.ParseID(chi.URLParam(request, "id"))
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	video, err := router.svc.GetVideo(request.Context(), id)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, video)
}

// PostVideosupload godoc
// @Summary      Upload a new video
// @Tags         videos
// @Accept       json
// @Produce      json
// @Param        request body models.UploadVideoRequest true "Video metadata"
// @Success      201 {object} models.UploadVideoResponse
// @Failure      400 {object} models.ErrorResponse
// @Router       /videos/upload [post]
func (router *Router) PostVideosupload(response http.ResponseWriter, request *http.Request) {
	var req models.UploadVideoRequest
	if err := decodeBody(request, &req); err != nil {
		router.writeServiceError(response, err)
		return
	}

	result, err := router.svc.UploadVideo(request.Context(), req)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusCreated, result)
}

// PatchVideo godoc
// @Summary      Update video metadata
// @Tags         videos
// @Accept       json
// @Produce      json
// @Param        id      path string                    true "Video id"
// @Param        request body models.UpdateVideoRequest true "Fields to change"
// @Success      200 {object} models.Video
// @Failure      400 {object} models.ErrorResponse
// @Failure      404 {object} models.ErrorResponse
// @Router       /videos/{id} [patch]
func (router *Router) PatchVideo(response http.ResponseWriter, request *http.Request) {
	id, err := schema.ParseID(chi.URLParam(request, "id"))
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	var req models.UpdateVideoRequest
	if err := decodeBody(request, &req); err != nil {
		router.writeServiceError(response, err)
		return
	}

	video, err := router.svc.UpdateVideo(request.Context(), id, req)
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, video)
}

// GetPing answers 200 while the storage is reachable.
func (router *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := router.svc.Ping(request.Context()); err != nil {
		router.writeServiceError(response, err)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// GetApiinternalstats returns the number of users and videos.
// Only clients from the trusted subnet reach it.
func (router *Router) GetApiinternalstats(response http.ResponseWriter, request *http.Request) {
	stats, err := router.svc.GetInternalStats(request.Context())
	if err != nil {
		router.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

func (router *Router) notFound(response http.ResponseWriter, request *http.Request) {
	writeError(
		response,
		http.StatusNotFound,
		fmt.Sprintf("Route %s:%s not found", request.Method, request.URL.Path),
	)
}

func (router *Router) methodNotAllowed(response http.ResponseWriter, request *http.Request) {
	writeError(
		response,
		http.StatusMethodNotAllowed,
		fmt.Sprintf("Method %s is not allowed on %s", request.Method, request.URL.Path),
	)
}

// writeServiceError maps validation failures to 400, missing records to 404
// and everything else to 500.
func (router *Router) writeServiceError(response http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, schema.ErrValidation):
		writeError(response, http.StatusBadRequest, err.Error())
	case service.IsNotFound(err):
		writeError(response, http.StatusNotFound, err.Error())
	default:
		logger.Log.Errorln("request failed", "error", err)
		writeError(response, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(request *http.Request, dst interface{}) error {
	if err := schema.DecodeJSON(request.Body, dst); err != nil {
		return err
	}

	return schema.Validate(schema.LocationBody, dst)
}

func writeJSON(response http.ResponseWriter, status int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(status)

	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Errorln("unable to encode the response", "error", err)
	}
}

func writeError(response http.ResponseWriter, status int, message string) {
	writeJSON(response, status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}
