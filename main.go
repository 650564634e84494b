package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lguibr/solopong/bollywood"
	"github.com/lguibr/solopong/game"
	"github.com/lguibr/solopong/logger"
	"github.com/lguibr/solopong/metrics"
	"github.com/lguibr/solopong/server"
	"github.com/lguibr/solopong/utils"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.Named("main")

	cfg, err := utils.Load(ctx)
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		os.Exit(1)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "ignoring log level", logger.Error(err))
	}

	metricsManager := metrics.NewManager(metrics.WithMetricsEnabled(cfg.MetricsEnabled))
	metrics.SetGlobal(metricsManager)

	engine := bollywood.NewEngine(bollywood.WithLogger(logger.Named("bollywood")))
	managerPID := engine.Spawn(bollywood.NewProps(game.NewSessionManagerProducer(engine, cfg)))
	if managerPID == nil {
		log.Error(ctx, "failed to spawn session manager")
		os.Exit(1)
	}

	srv := server.New(engine, managerPID,
		server.WithConfig(cfg),
		server.WithMetrics(metricsManager),
	)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", logger.String("addr", cfg.Addr),
			logger.Int("max_sessions", cfg.MaxSessions), logger.Bool("metrics", cfg.MetricsEnabled))
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server failed", logger.Error(err))
			engine.Shutdown(shutdownTimeout)
			os.Exit(1)
		}
	case <-ctx.Done():
		log.Info(context.Background(), "shutdown signal received")
	}

	// Stopping the engine first closes every websocket so Shutdown below
	// does not wait on hijacked connections.
	engine.Shutdown(shutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "http shutdown failed", logger.Error(err))
	}
	log.Info(shutdownCtx, "server stopped")
}
