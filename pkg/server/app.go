package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ShortBasket/internal/usecase"
	"ShortBasket/pkg/config"
	xhttp "ShortBasket/pkg/http"
	pkgkafka "ShortBasket/pkg/kafka"
	applogger "ShortBasket/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	collector   *usecase.BenchmarkCollector
	producer    *pkgkafka.Producer
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	collector *usecase.BenchmarkCollector,
	producer *pkgkafka.Producer,
	httpHandler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		log:         log,
		collector:   collector,
		producer:    producer,
		httpHandler: httpHandler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
		xhttp.WithMetrics(a.cfg.Metrics.Enabled, a.cfg.Metrics.Path),
	)

	// Start the benchmark stream collector when configured. Selection still
	// works without it as long as requests carry an explicit reference.
	if a.cfg.Stream.Enabled && a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Error("benchmark collector start error", applogger.Error(err))
		} else {
			a.log.Info("benchmark collector started",
				applogger.String("symbol", a.cfg.Stream.Symbol))
		}
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.cfg.Stream.Enabled && a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.log.Warn("benchmark collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.log.Warn("kafka producer close error", applogger.Error(err))
		}
	}

	// Flush any aggregated log entries before exit.
	a.log.RemoveCollector()

	a.log.Info("shutdown complete")
	return nil
}
