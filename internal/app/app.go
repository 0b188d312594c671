// Package app wires the video catalog together: configuration, logging,
// storage, the service layer, the HTTP router and the gRPC server.
// It also owns the server lifecycle including graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/videocatalog/internal/config"
	"github.com/patric-chuzhbe/videocatalog/internal/db/memorystorage"
	"github.com/patric-chuzhbe/videocatalog/internal/grpcserver"
	"github.com/patric-chuzhbe/videocatalog/internal/ipchecker"
	"github.com/patric-chuzhbe/videocatalog/internal/logger"
	"github.com/patric-chuzhbe/videocatalog/internal/metrics"
	"github.com/patric-chuzhbe/videocatalog/internal/router"
	"github.com/patric-chuzhbe/videocatalog/internal/service"
)

type storage interface {
	service.Storage
	Close() error
}

// App holds the configuration, storage and both transports of a running catalog.
type App struct {
	cfg         *config.Config
	db          storage
	httpHandler http.Handler
	grpcServer  *grpc.Server
}

// New initializes a new instance of App by:
// - loading configuration
// - initializing logger
// - setting up the in-memory storage
// - setting up the Prometheus collector
// - setting up the router and middleware
// - setting up the gRPC server
func New(configOptions ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(configOptions...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel, logger.WithFile(app.cfg.LogFile))
	if err != nil {
		return nil, err
	}

	app.db, err = memorystorage.New()
	if err != nil {
		return nil, err
	}

	checker, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	svc := service.New(
		app.db,
		service.WithMediaBaseURL(app.cfg.MediaBaseURL),
		service.WithUploadBaseURL(app.cfg.UploadBaseURL),
	)

	collector, err := metrics.New(svc)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(svc, checker, router.WithMetrics(collector))
	app.grpcServer = grpcserver.NewGRPCServer(
		grpcserver.NewCatalogHandler(svc),
		checker,
		grpcserver.WithMetrics(collector),
	)

	return app, nil
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpHandler
}

// Run starts the HTTP and gRPC servers and blocks until SIGINT/SIGTERM or a server failure.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.serve(ctx)
}

func (a *App) serve(ctx context.Context) error {
	grpcListener, err := net.Listen("tcp", a.cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", a.cfg.GRPCAddr, err)
	}

	logger.Log.Infow("server running", "RunAddr", a.cfg.RunAddr, "GRPCAddr", a.cfg.GRPCAddr)

	server := &http.Server{
		Addr:    a.cfg.RunAddr,
		Handler: a.httpHandler,
	}

	serverErrCh := make(chan error, 2)
	go func() {
		serverErrCh <- server.ListenAndServe()
	}()
	go func() {
		serverErrCh <- a.grpcServer.Serve(grpcListener)
	}()

	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal, stopping the servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()

		a.stopGRPC(shutdownCtx)

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		return a.db.Close()

	case err := <-serverErrCh:
		a.grpcServer.Stop()
		_ = server.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return a.db.Close()
		}
		logger.Log.Errorw("server stopped unexpectedly", zap.Error(err))
		return fmt.Errorf("server error: %w", err)
	}
}

// stopGRPC waits for in-flight calls until ctx expires, then cuts them off.
func (a *App) stopGRPC(ctx context.Context) {
	stopped := make(chan struct{})
	go func() {
		a.grpcServer.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-ctx.Done():
		a.grpcServer.Stop()
	}
}

// Close finalizes resources used by App such as logging.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}
