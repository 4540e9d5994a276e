package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"moneytracker/internal/core"
	"moneytracker/internal/metrics/memory"
	"moneytracker/internal/storage"
	memstore "moneytracker/internal/storage/memory"
)

var fixedNow = time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []core.ChangeEvent
	err    error
}

func (n *recordingNotifier) PublishChange(_ context.Context, e core.ChangeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) Events() []core.ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]core.ChangeEvent(nil), n.events...)
}

// flakyStore fails reads and/or writes on demand.
type flakyStore struct {
	*memstore.Store
	failGet bool
	failSet bool
}

var errFlaky = errors.New("storage unavailable")

func (f *flakyStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errFlaky
	}
	return f.Store.Get(ctx, key)
}

func (f *flakyStore) Set(ctx context.Context, key, value string) error {
	if f.failSet {
		return errFlaky
	}
	return f.Store.Set(ctx, key, value)
}

type fixture struct {
	tracker  *Tracker
	store    *flakyStore
	notifier *recordingNotifier
	metrics  *memory.MemoryCollector
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	return newFixtureWithStore(t, &flakyStore{Store: memstore.New()}, opts...)
}

func newFixtureWithStore(t *testing.T, store *flakyStore, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store:    store,
		notifier: &recordingNotifier{},
		metrics:  memory.NewMemoryCollector(),
	}
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
		WithRand(rand.New(rand.NewPCG(7, 11))),
		WithNotifier(f.notifier),
		WithMetrics(f.metrics),
	}
	f.tracker = NewTracker(context.Background(),
		storage.NewTransactionRepository(store),
		storage.NewSettingsRepository(store, core.DefaultSettings(core.ThemeLight)),
		append(base, opts...)...)
	return f
}

func (f *fixture) add(t *testing.T, typ, amount, category, note, date string) core.Transaction {
	t.Helper()
	tx, outcome := f.tracker.Add(context.Background(), NewTransaction{
		Type: typ, Amount: amount, Category: category, Note: note, Date: date,
	})
	if outcome != Applied {
		t.Fatalf("Add(%s %s) outcome = %s", typ, amount, outcome)
	}
	return tx
}

func (f *fixture) stored(t *testing.T) []core.Transaction {
	t.Helper()
	txs, err := storage.NewTransactionRepository(f.store.Store).Load(context.Background())
	if err != nil {
		t.Fatalf("load stored: %v", err)
	}
	return txs
}

func money(n int64) core.Money { return core.MoneyFromInt(n) }

func ptr(s string) *string { return &s }
