package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"moneytracker/internal/cli"
	apphttp "moneytracker/internal/http"
	"moneytracker/internal/log"
)

const (
	shutdownTimeout = 30 * time.Second
	cleanupInterval = time.Minute
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, os.Stdout)

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	registry := prometheus.NewRegistry()
	app, err := cli.NewApp(ctx, cfg, logger, cli.Options{Publish: true, Registry: registry})
	if err != nil {
		logger.Error("Failed to start tracker", log.FieldError, err)
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("Cleanup failed", log.FieldError, err)
		}
	}()
	app.Caches.StartCleanup(cleanupInterval)

	opts := []apphttp.Option{
		apphttp.WithLogger(logger),
		apphttp.WithReadiness(app.Backend.Ping),
		apphttp.WithDefaultLanguage(cfg.DefaultLanguage),
	}
	if cfg.MetricsEnabled {
		opts = append(opts, apphttp.WithMetricsHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}
	srv := apphttp.NewServer(":"+cfg.Port, app.Tracker, opts...)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting money tracker server",
			"port", cfg.Port,
			log.FieldBackend, app.Backend.Type,
			"amqp", app.Publisher != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := cli.ShutdownContext(shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
