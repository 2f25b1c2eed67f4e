package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SentinelConsole/internal/handler/ws"
	mid "SentinelConsole/internal/middleware"
	"SentinelConsole/internal/service/session"
	"SentinelConsole/internal/usecase"
	"SentinelConsole/pkg/cache"
	"SentinelConsole/pkg/config"
	xhttp "SentinelConsole/pkg/http"
	pkgkafka "SentinelConsole/pkg/kafka"
	applogger "SentinelConsole/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	store      *session.Store
	console    *usecase.Console
	hub        *ws.Hub
	pipeline   *mid.SnapshotPipeline
	producer   *pkgkafka.Producer
	cache      cache.Service
	handler    xhttp.Handler
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies. producer may be nil.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	store *session.Store,
	console *usecase.Console,
	hub *ws.Hub,
	pipeline *mid.SnapshotPipeline,
	producer *pkgkafka.Producer,
	c cache.Service,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:      cfg,
		log:      log,
		store:    store,
		console:  console,
		hub:      hub,
		pipeline: pipeline,
		producer: producer,
		cache:    c,
		handler:  handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	opts := []xhttp.ServerOption{
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithAllowedOrigins(a.cfg.Server.AllowedOrigins),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithSlowRequest(a.cfg.Server.SlowRequest),
		xhttp.WithLogger(a.log.Named("http")),
	}
	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
	}
	opts = append(opts, xhttp.WithMetricsPath(metricsPath))
	a.httpServer = xhttp.NewServer(a.handler, opts...)

	go a.hub.Run(ctx)
	a.pipeline.Start(ctx)

	if sess := a.store.Restore(ctx); sess != nil {
		a.log.Info("session restored", applogger.String("username", sess.Username))
	}
	a.console.Start(ctx)

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("console started",
		applogger.String("host", a.cfg.Server.Host),
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("admin_api", a.cfg.AdminAPI.BaseURL),
		applogger.Strings("allowed_origins", a.cfg.Server.AllowedOrigins),
		applogger.Bool("kafka", a.cfg.Kafka.Enabled),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.log.Info("shutting down...")

	// No fetch may outlive the views.
	a.console.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	a.pipeline.Stop()

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.log.Warn("cache close error", applogger.Error(err))
	}

	a.log.Info("shutdown complete")
	a.log.RemoveCollector()
	return nil
}
