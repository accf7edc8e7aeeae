package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"memberlink/internal/platform/config"
	"memberlink/internal/platform/httpserver"
	"memberlink/internal/platform/logger"
)

const shutdownTimeout = 10 * time.Second

// main wires dependencies, exposes the HTTP router, and keeps the server
// lifecycle small. Business logic lives in internal/identity.
func main() {
	cfg, err := config.FromEnv()
	log := logger.New(cfg.LogLevel)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log.Info("initializing memberlink",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"run_timeout", cfg.Sync.RunTimeout.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// Runs finish well inside the write timeout so reports are never cut off.
	srv := httpserver.New(cfg.Addr, app.Router(), cfg.Sync.RunTimeout+15*time.Second)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		app.RunBackground(gctx)
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
