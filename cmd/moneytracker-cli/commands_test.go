package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"moneytracker/internal/core"
	"moneytracker/internal/log"
	"moneytracker/internal/services"
	"moneytracker/internal/storage"
	"moneytracker/internal/storage/memory"
)

func newTestRunner(t *testing.T, stdin string) (*runner, *services.Tracker, *bytes.Buffer) {
	t.Helper()
	store := memory.New()
	n := 0
	nextID := func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	tracker := services.NewTracker(context.Background(),
		storage.NewTransactionRepository(store),
		storage.NewSettingsRepository(store, core.DefaultSettings(core.ThemeLight)),
		services.WithClock(func() time.Time { return time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC) }),
		services.WithIDGenerator(nextID),
		services.WithRand(rand.New(rand.NewPCG(1, 2))),
		services.WithLogger(log.Discard()),
	)
	out := &bytes.Buffer{}
	return newRunner(tracker, strings.NewReader(stdin), out), tracker, out
}

func TestRunUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"frobnicate"}},
		{name: "unknown flag", args: []string{"list", "--colour"}},
		{name: "edit without id", args: []string{"edit", "--amount", "3"}},
		{name: "delete with two ids", args: []string{"delete", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestRunner(t, "")
			err := r.run(context.Background(), tt.args)
			if !errors.Is(err, errUsage) {
				t.Fatalf("run(%v) = %v, want usage error", tt.args, err)
			}
		})
	}
}

func TestAddEditDelete(t *testing.T) {
	ctx := context.Background()
	r, tracker, out := newTestRunner(t, "")

	if err := r.run(ctx, []string{"add", "--type", "income", "--amount", "1000", "--category", "Salary", "--date", "2025-06-01"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "id-1" {
		t.Fatalf("add printed %q, want id-1", got)
	}

	if err := r.run(ctx, []string{"add", "--amount", "-5"}); err == nil {
		t.Fatalf("negative amount accepted")
	}
	if tracker.Len() != 1 {
		t.Fatalf("rejected add changed the collection: %d", tracker.Len())
	}

	if err := r.run(ctx, []string{"edit", "--note", "june", "id-1"}); err != nil {
		t.Fatalf("edit: %v", err)
	}
	tx, _ := tracker.Get("id-1")
	if tx.Note != "june" || tx.Category != "Salary" || !tx.IsIncome() {
		t.Fatalf("edit changed more than the note: %+v", tx)
	}

	if err := r.run(ctx, []string{"delete", "missing"}); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("delete missing = %v", err)
	}
	if err := r.run(ctx, []string{"delete", "id-1"}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if tracker.Len() != 0 {
		t.Fatalf("delete left %d transactions", tracker.Len())
	}
}

func TestListAndSummary(t *testing.T) {
	ctx := context.Background()
	r, _, out := newTestRunner(t, "")

	if err := r.run(ctx, []string{"seed"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if !strings.Contains(out.String(), "80 transactions") {
		t.Fatalf("seed output = %q", out.String())
	}

	out.Reset()
	if err := r.run(ctx, []string{"list", "--page", "99"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "8/8") {
		t.Fatalf("list did not clamp to the last page: %q", out.String())
	}

	out.Reset()
	if err := r.run(ctx, []string{"charts"}); err != nil {
		t.Fatalf("charts: %v", err)
	}
	if !strings.Contains(out.String(), "Monthly Income vs Expense") {
		t.Fatalf("charts output = %q", out.String())
	}

	out.Reset()
	if err := r.run(ctx, []string{"--lang", "fr", "summary", "--type", "income"}); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !strings.Contains(out.String(), "Revenus") || !strings.Contains(out.String(), "Solde") {
		t.Fatalf("summary not localized: %q", out.String())
	}
}

func TestResetConfirmation(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  int
	}{
		{name: "declined", stdin: "n\n", args: []string{"reset"}, want: 1},
		{name: "empty answer", stdin: "", args: []string{"reset"}, want: 1},
		{name: "confirmed", stdin: "y\n", args: []string{"reset"}, want: 0},
		{name: "yes flag", stdin: "", args: []string{"reset", "--yes"}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			r, tracker, _ := newTestRunner(t, tt.stdin)
			if err := r.run(ctx, []string{"add", "--amount", "5"}); err != nil {
				t.Fatalf("add: %v", err)
			}
			if err := r.run(ctx, tt.args); err != nil {
				t.Fatalf("reset: %v", err)
			}
			if got := tracker.Len(); got != tt.want {
				t.Fatalf("after reset Len = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestImportExport(t *testing.T) {
	ctx := context.Background()
	r, tracker, out := newTestRunner(t, `[{"id":"a","type":"income","amount":"10","date":"2025-06-01"},"junk"]`)

	if err := r.run(ctx, []string{"import", "-"}); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), "imported 1 of 2 records, dropped 1") {
		t.Fatalf("import output = %q", out.String())
	}
	if tracker.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tracker.Len())
	}

	dir := t.TempDir()
	out.Reset()
	if err := r.run(ctx, []string{"export", "-o", dir}); err != nil {
		t.Fatalf("export: %v", err)
	}
	path := strings.TrimSpace(out.String())
	if filepath.Base(path) != "money-tracker-1749983400000.json" {
		t.Fatalf("export path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), `"id": "a"`) {
		t.Fatalf("export content = %s", data)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"not":"an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := r.run(ctx, []string{"import", bad}); !errors.Is(err, services.ErrMalformedImport) {
		t.Fatalf("import object = %v, want ErrMalformedImport", err)
	}
	if tracker.Len() != 1 {
		t.Fatalf("rejected import changed the collection")
	}
}

func TestSettingsCommands(t *testing.T) {
	ctx := context.Background()
	r, tracker, out := newTestRunner(t, "")

	if err := r.run(ctx, []string{"currency", "eur"}); err != nil {
		t.Fatalf("currency: %v", err)
	}
	if got := tracker.Settings().Currency; got != "EUR" {
		t.Fatalf("currency = %q", got)
	}
	if err := r.run(ctx, []string{"currency", "ZZZ"}); err == nil || !strings.Contains(err.Error(), "Invalid currency code") {
		t.Fatalf("currency ZZZ = %v", err)
	}
	if got := tracker.Settings().Currency; got != "EUR" {
		t.Fatalf("rejected currency replaced %q", got)
	}

	out.Reset()
	if err := r.run(ctx, []string{"theme", "toggle"}); err != nil {
		t.Fatalf("theme toggle: %v", err)
	}
	if strings.TrimSpace(out.String()) != "dark" {
		t.Fatalf("toggle printed %q", out.String())
	}
	if err := r.run(ctx, []string{"theme", "purple"}); !errors.Is(err, core.ErrInvalidTheme) {
		t.Fatalf("theme purple = %v", err)
	}
}
