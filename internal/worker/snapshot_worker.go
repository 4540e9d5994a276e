// Package worker turns collection change events into export snapshots on
// disk.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/log"
	"moneytracker/internal/metrics"
	"moneytracker/internal/services"
	"moneytracker/internal/storage"
)

const (
	snapshotPrefix = "money-tracker-"
	snapshotSuffix = ".json"
)

// SnapshotWorker writes the whole collection to dir after every change and
// keeps the newest retain files.
type SnapshotWorker struct {
	transactions *storage.TransactionRepository
	dir          string
	retain       int
	now          func() time.Time
	metrics      metrics.Collector
	logger       *log.Logger
}

type Option func(*SnapshotWorker)

func WithClock(now func() time.Time) Option {
	return func(w *SnapshotWorker) { w.now = now }
}

func WithMetrics(m metrics.Collector) Option {
	return func(w *SnapshotWorker) { w.metrics = m }
}

func WithLogger(l *log.Logger) Option {
	return func(w *SnapshotWorker) { w.logger = l }
}

func NewSnapshotWorker(transactions *storage.TransactionRepository, dir string, retain int, opts ...Option) *SnapshotWorker {
	if retain < 1 {
		retain = 1
	}
	w := &SnapshotWorker{
		transactions: transactions,
		dir:          dir,
		retain:       retain,
		now:          time.Now,
		metrics:      metrics.NoOpCollector{},
		logger:       log.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent(log.ComponentWorker)
	return w
}

// HandleChange is an amqp.ChangeHandler. A returned error requeues the
// event.
func (w *SnapshotWorker) HandleChange(ctx context.Context, msg *amqp.ChangeMessage) error {
	w.logger.InfoContext(ctx, "Processing change event",
		log.FieldOperation, msg.Operation,
		log.FieldVersion, msg.Version,
		log.FieldCount, msg.Count)

	path, err := w.Snapshot(ctx)
	if err != nil {
		w.metrics.RecordSnapshot(false)
		w.logger.ErrorContext(ctx, "Failed to write snapshot",
			log.FieldError, err,
			log.FieldVersion, msg.Version)
		return err
	}
	w.metrics.RecordSnapshot(true)

	removed, err := w.Prune()
	if err != nil {
		// The snapshot itself is written; pruning retries on the next event.
		w.logger.WarnContext(ctx, "Failed to prune snapshots", log.FieldError, err)
	}

	w.logger.InfoContext(ctx, "Snapshot written",
		log.FieldFile, path,
		log.FieldVersion, msg.Version,
		"pruned", removed)
	return nil
}

// Snapshot exports the stored collection and returns the written path.
func (w *SnapshotWorker) Snapshot(ctx context.Context) (string, error) {
	txs, err := w.transactions.Load(ctx)
	var skipped *storage.SkippedRecordsError
	switch {
	case errors.As(err, &skipped):
		w.logger.WarnContext(ctx, "Snapshot leaves out undecodable records",
			"skipped", skipped.Skipped,
			log.FieldError, skipped.First)
	case err != nil:
		return "", fmt.Errorf("load transactions: %w", err)
	}
	data, err := services.EncodeExport(txs)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(w.dir, services.ExportFilename(w.now()))
	tmp, err := os.CreateTemp(w.dir, ".snapshot-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("rename snapshot: %w", err)
	}
	return path, nil
}

// Snapshots lists snapshot files in dir, newest first.
func (w *SnapshotWorker) Snapshots() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}

	type snapshot struct {
		name   string
		millis int64
	}
	var found []snapshot
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimPrefix(name, snapshotPrefix), snapshotSuffix)
		millis, err := strconv.ParseInt(stamp, 10, 64)
		if err != nil {
			continue
		}
		found = append(found, snapshot{name: name, millis: millis})
	}
	sort.Slice(found, func(i, j int) bool { return found[i].millis > found[j].millis })

	paths := make([]string, len(found))
	for i, s := range found {
		paths[i] = filepath.Join(w.dir, s.name)
	}
	return paths, nil
}

// Prune removes all but the newest retain snapshots.
func (w *SnapshotWorker) Prune() (int, error) {
	paths, err := w.Snapshots()
	if err != nil {
		return 0, err
	}
	if len(paths) <= w.retain {
		return 0, nil
	}
	removed := 0
	for _, p := range paths[w.retain:] {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove %s: %w", filepath.Base(p), err)
		}
		removed++
	}
	return removed, nil
}
