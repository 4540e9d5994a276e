package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"moneytracker/internal/amqp"
	"moneytracker/internal/backend"
	"moneytracker/internal/cli"
	"moneytracker/internal/log"
	"moneytracker/internal/metrics/memory"
	"moneytracker/internal/worker"
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
	logger := cli.SetupLogger(cfg, os.Stdout).WithComponent(log.ComponentWorker)

	if !cfg.AMQPEnabled() {
		return errors.New("AMQP_URL is required for the snapshot worker")
	}

	ctx, cancel := cli.SignalContext(context.Background(), logger)
	defer cancel()

	result, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open backend", log.FieldError, err)
		return err
	}
	defer func() {
		if err := result.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	}()
	if result.Type == backend.MemoryBackend {
		logger.Warn("Memory backend is private to this process; snapshots will not see server changes")
	}
	transactions, _ := cli.NewRepositories(cfg, result.Store)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to connect to AMQP", log.FieldError, err)
		return err
	}
	defer client.Close()

	collector := memory.NewMemoryCollector()
	snapshots := worker.NewSnapshotWorker(transactions, cfg.SnapshotDir, cfg.SnapshotRetain,
		worker.WithLogger(logger),
		worker.WithMetrics(collector))

	logger.Info("Starting snapshot worker",
		"queue", cfg.AMQPQueue,
		"snapshot_dir", cfg.SnapshotDir,
		"retain", cfg.SnapshotRetain,
		log.FieldBackend, result.Type)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := client.ConsumeWithReconnect(gctx, snapshots.HandleChange)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	err = g.Wait()
	written, failed := collector.Snapshots()
	logger.Info("Snapshot worker stopped", "written", written, "failed", failed)
	if err != nil {
		logger.Error("Consumer stopped with error", log.FieldError, err)
	}
	return err
}
