// Package cli provides the process bootstrap shared by cmd/moneytracker,
// cmd/moneytracker-cli and cmd/moneytracker-worker.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"moneytracker/internal/amqp"
	"moneytracker/internal/backend"
	"moneytracker/internal/cache"
	"moneytracker/internal/config"
	"moneytracker/internal/core"
	"moneytracker/internal/i18n"
	"moneytracker/internal/log"
	"moneytracker/internal/metrics"
	"moneytracker/internal/metrics/memory"
	prommetrics "moneytracker/internal/metrics/prometheus"
	"moneytracker/internal/services"
	"moneytracker/internal/storage"
)

// MetricsNamespace prefixes every exported Prometheus metric.
const MetricsNamespace = "moneytracker"

// SetupLogger builds the process logger from LOG_LEVEL and installs it as
// the slog default.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	if out == nil {
		out = os.Stdout
	}
	level := "info"
	if cfg != nil {
		level = cfg.LogLevel
	}
	logger := log.New(log.Config{Level: log.ParseLevel(level), Output: out})
	log.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Options selects the optional parts of an App.
type Options struct {
	// Publish wires the AMQP notifier when AMQP_URL is set.
	Publish bool
	// Registry receives the Prometheus collectors. Nil keeps metrics in
	// memory.
	Registry *prometheus.Registry
	// TrackerOptions are appended after the defaults.
	TrackerOptions []services.Option
}

// App holds everything a binary needs to serve the tracker.
type App struct {
	Config    *config.Config
	Logger    *log.Logger
	Backend   *backend.BackendResult
	Metrics   metrics.Collector
	Publisher *amqp.Client
	Caches    *cache.Manager
	Tracker   *services.Tracker

	Transactions *storage.TransactionRepository
	Settings     *storage.SettingsRepository
}

// NewRepositories wraps a store in the two slot repositories.
func NewRepositories(cfg *config.Config, store storage.Store) (*storage.TransactionRepository, *storage.SettingsRepository) {
	defaults := core.DefaultSettings(core.Theme(cfg.DefaultTheme))
	if code, err := i18n.ParseCurrency(cfg.DefaultCurrency); err == nil {
		defaults.Currency = code
	}
	return storage.NewTransactionRepository(store), storage.NewSettingsRepository(store, defaults)
}

// OpenBackend creates the store selected by DATA_BACKEND.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	result, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	return result, nil
}

// NewApp opens the backend and builds a Tracker over it. The caller owns
// the App and must Close it.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger, opts Options) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	result, err := OpenBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	app.Backend = result
	app.Transactions, app.Settings = NewRepositories(cfg, result.Store)

	if opts.Registry != nil && cfg.MetricsEnabled {
		collector := prommetrics.NewPrometheusCollector(MetricsNamespace)
		if err := collector.Register(opts.Registry); err != nil {
			app.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		if err := opts.Registry.Register(collectors.NewGoCollector()); err != nil {
			logger.Warn("Go runtime collector not registered", log.FieldError, err)
		}
		app.Metrics = collector
	} else {
		app.Metrics = memory.NewMemoryCollector()
	}

	views := services.NewViewCache(cfg.ViewCacheSize, cfg.ViewCacheTTL)
	app.Caches = cache.NewManager(logger.WithComponent(log.ComponentCache))
	app.Caches.Register(views)

	trackerOpts := []services.Option{
		services.WithLogger(logger),
		services.WithMetrics(app.Metrics),
		services.WithTranslator(i18n.New(cfg.DefaultLanguage)),
		services.WithViewCache(views),
	}

	if opts.Publish && cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			// Change events are optional; the tracker runs without them.
			logger.Warn("AMQP unavailable, change events disabled", log.FieldError, err)
		} else {
			app.Publisher = client
			trackerOpts = append(trackerOpts, services.WithNotifier(client))
		}
	}

	trackerOpts = append(trackerOpts, opts.TrackerOptions...)
	app.Tracker = services.NewTracker(ctx, app.Transactions, app.Settings, trackerOpts...)

	logger.InfoContext(ctx, "Tracker ready",
		log.FieldBackend, result.Type,
		log.FieldCount, app.Tracker.Len(),
		log.FieldVersion, app.Tracker.Version())
	return app, nil
}

// Close releases the publisher, the cache manager and the store.
func (a *App) Close() error {
	if a.Caches != nil {
		a.Caches.Stop()
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.Logger.Warn("AMQP close failed", log.FieldError, err)
		}
	}
	if a.Backend != nil && a.Backend.Cleanup != nil {
		if err := a.Backend.Cleanup(); err != nil {
			return fmt.Errorf("close %s backend: %w", a.Backend.Type, err)
		}
	}
	return nil
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// ShutdownContext bounds cleanup after the main context is done.
func ShutdownContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}
