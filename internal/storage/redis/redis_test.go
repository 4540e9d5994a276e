package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"moneytracker/internal/core"
	"moneytracker/internal/storage"
)

func newStore(t *testing.T, prefix string) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s, err := New(context.Background(), "redis://"+mr.Addr()+"/0", prefix)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s, mr := newStore(t, "test:")

	if _, ok, err := s.Get(ctx, storage.TransactionsKey); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := s.Set(ctx, storage.TransactionsKey, "[]"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, ok, err := s.Get(ctx, storage.TransactionsKey); !ok || err != nil || v != "[]" {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}
	if got, err := mr.Get("test:" + storage.TransactionsKey); err != nil || got != "[]" {
		t.Fatalf("raw key = %q, %v", got, err)
	}
	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestRedisStoreRepositories(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t, "")

	txs := storage.NewTransactionRepository(s)
	in := []core.Transaction{{
		ID:       "a",
		Type:     core.Expense,
		Amount:   core.MoneyFromInt(12),
		Category: "Food",
		Date:     core.NewDate(2025, 2, 3),
	}}
	if err := txs.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	out, err := txs.Load(ctx)
	if err != nil || len(out) != 1 || out[0].ID != "a" || !out[0].Amount.Equal(core.MoneyFromInt(12)) {
		t.Fatalf("Load = %+v, %v", out, err)
	}

	settings := storage.NewSettingsRepository(s, core.DefaultSettings(core.ThemeLight))
	if err := settings.Save(ctx, core.Settings{Currency: "EUR", Theme: core.ThemeDark}); err != nil {
		t.Fatalf("Save settings: %v", err)
	}
	got, err := settings.Load(ctx)
	if err != nil || got.Currency != "EUR" || got.Theme != core.ThemeDark {
		t.Fatalf("Load settings = %+v, %v", got, err)
	}
}

func TestRedisStoreServerDown(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	s := NewWithClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1}), "")
	defer s.Close()

	mr.Close()
	if _, _, err := s.Get(ctx, "k"); err == nil {
		t.Fatalf("expected error when server is down")
	}
	if err := s.Set(ctx, "k", "v"); err == nil {
		t.Fatalf("expected error when server is down")
	}
}

func TestRedisStoreClosed(t *testing.T) {
	s, _ := newStore(t, "")
	_ = s.Close()
	if _, _, err := s.Get(context.Background(), "k"); !errors.Is(err, storage.ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New(context.Background(), "not a url", ""); err == nil {
		t.Fatalf("expected parse error")
	}
}
