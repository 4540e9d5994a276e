package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"moneytracker/internal/config"
	"moneytracker/internal/metrics/memory"
	prommetrics "moneytracker/internal/metrics/prometheus"
	"moneytracker/internal/services"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Port:            "8081",
		DataBackend:     "sqlite",
		DataDir:         dir,
		SQLiteDBPath:    filepath.Join(dir, "moneytracker.db"),
		SnapshotDir:     filepath.Join(dir, "snapshots"),
		SnapshotRetain:  5,
		DefaultCurrency: "eur",
		DefaultTheme:    "dark",
		DefaultLanguage: "en",
		LogLevel:        "info",
		ViewCacheSize:   8,
		ViewCacheTTL:    time.Minute,
		MetricsEnabled:  true,
	}
}

func TestSetupLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	cfg := &config.Config{LogLevel: "warn"}
	logger := SetupLogger(cfg, &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestNewAppPersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	logger := SetupLogger(cfg, &bytes.Buffer{})

	app, err := NewApp(ctx, cfg, logger, Options{})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if _, ok := app.Metrics.(*memory.MemoryCollector); !ok {
		t.Fatalf("metrics = %T, want in-memory collector without a registry", app.Metrics)
	}
	if got := app.Tracker.Settings(); got.Currency != "EUR" || got.Theme != "dark" {
		t.Fatalf("default settings = %+v, want EUR/dark", got)
	}

	if _, outcome := app.Tracker.Add(ctx, services.NewTransaction{Type: "income", Amount: "12.50", Date: "2025-06-01"}); outcome != services.Applied {
		t.Fatalf("Add outcome = %s", outcome)
	}
	if err := app.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewApp(ctx, cfg, logger, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	if got := reopened.Tracker.Len(); got != 1 {
		t.Fatalf("reloaded %d transactions, want 1", got)
	}
	if err := reopened.Backend.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestNewAppRegistersPrometheus(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.DataBackend = "memory"
	registry := prometheus.NewRegistry()

	app, err := NewApp(ctx, cfg, SetupLogger(cfg, &bytes.Buffer{}), Options{Registry: registry})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	defer app.Close()

	if _, ok := app.Metrics.(*prommetrics.PrometheusCollector); !ok {
		t.Fatalf("metrics = %T, want Prometheus collector", app.Metrics)
	}
	app.Tracker.Seed(ctx)

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == MetricsNamespace+"_mutations_total" {
			found = true
		}
	}
	if !found {
		t.Fatalf("mutations_total not exported")
	}
}

func TestNewAppRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.DataBackend = "postgres"

	if _, err := NewApp(context.Background(), cfg, SetupLogger(cfg, &bytes.Buffer{}), Options{}); err == nil {
		t.Fatalf("NewApp accepted backend %q", cfg.DataBackend)
	}
}
