package worker

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"moneytracker/internal/amqp"
	"moneytracker/internal/core"
	metricsmem "moneytracker/internal/metrics/memory"
	"moneytracker/internal/storage"
	"moneytracker/internal/storage/memory"
)

type tickingClock struct {
	t time.Time
}

func (c *tickingClock) now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newWorker(t *testing.T, retain int, txs []core.Transaction) (*SnapshotWorker, *metricsmem.MemoryCollector, string) {
	t.Helper()
	repo := storage.NewTransactionRepository(memory.New())
	if txs != nil {
		if err := repo.Save(context.Background(), txs); err != nil {
			t.Fatalf("seed store: %v", err)
		}
	}
	dir := filepath.Join(t.TempDir(), "snapshots")
	clock := &tickingClock{t: time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)}
	m := metricsmem.NewMemoryCollector()
	w := NewSnapshotWorker(repo, dir, retain, WithClock(clock.now), WithMetrics(m))
	return w, m, dir
}

func changeMessage(version uint64) *amqp.ChangeMessage {
	return amqp.NewChangeMessage(core.ChangeEvent{Operation: core.OpAdd, Version: version, Count: 1})
}

func TestHandleChangeWritesSnapshot(t *testing.T) {
	tx := core.Transaction{
		ID:       "a",
		Type:     core.Expense,
		Amount:   core.MoneyFromInt(12),
		Category: "Food",
		Date:     core.NewDate(2025, 6, 1),
	}
	w, m, _ := newWorker(t, 5, []core.Transaction{tx})

	if err := w.HandleChange(context.Background(), changeMessage(1)); err != nil {
		t.Fatalf("HandleChange: %v", err)
	}

	paths, err := w.Snapshots()
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("got %d snapshots, want 1", len(paths))
	}
	want := "money-tracker-1749983401000.json"
	if filepath.Base(paths[0]) != want {
		t.Fatalf("name = %s, want %s", filepath.Base(paths[0]), want)
	}

	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var got []core.Transaction
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a" || !got[0].Amount.Equal(tx.Amount) {
		t.Fatalf("snapshot content = %+v", got)
	}

	if ok, failed := m.Snapshots(); ok != 1 || failed != 0 {
		t.Fatalf("metrics ok=%d failed=%d", ok, failed)
	}
}

func TestEmptyCollectionSnapshot(t *testing.T) {
	w, _, _ := newWorker(t, 5, nil)
	path, err := w.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("content = %q, want []", data)
	}
}

func TestRetention(t *testing.T) {
	w, _, dir := newWorker(t, 3, nil)

	for v := uint64(1); v <= 6; v++ {
		if err := w.HandleChange(context.Background(), changeMessage(v)); err != nil {
			t.Fatalf("HandleChange %d: %v", v, err)
		}
	}

	paths, err := w.Snapshots()
	if err != nil {
		t.Fatalf("Snapshots: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("kept %d snapshots, want 3", len(paths))
	}
	// Newest first: the clock ticked six times.
	if filepath.Base(paths[0]) != "money-tracker-1749983406000.json" {
		t.Fatalf("newest = %s", filepath.Base(paths[0]))
	}
	if filepath.Base(paths[2]) != "money-tracker-1749983404000.json" {
		t.Fatalf("oldest kept = %s", filepath.Base(paths[2]))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 3 {
		t.Fatalf("dir holds %d entries, want 3 (no temp files left)", len(entries))
	}
}

func TestPruneIgnoresForeignFiles(t *testing.T) {
	w, _, dir := newWorker(t, 1, nil)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "money-tracker-abc.json", "money-tracker-100.json", "money-tracker-200.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("[]"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := w.Prune()
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("removed %d, want 1", removed)
	}
	for _, name := range []string{"notes.txt", "money-tracker-abc.json", "money-tracker-200.json"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s should survive: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "money-tracker-100.json")); !os.IsNotExist(err) {
		t.Errorf("older snapshot should be removed")
	}
}

func TestSnapshotsMissingDir(t *testing.T) {
	w, _, _ := newWorker(t, 2, nil)
	paths, err := w.Snapshots()
	if err != nil || len(paths) != 0 {
		t.Fatalf("got %v, %v; want empty, nil", paths, err)
	}
}
