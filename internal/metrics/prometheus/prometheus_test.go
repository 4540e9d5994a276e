package prometheus

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	pc := NewPrometheusCollector("moneytracker")
	if err := pc.Register(registry); err != nil {
		t.Fatalf("Register: %v", err)
	}

	pc.RecordMutation("add", "applied")
	pc.RecordMutation("add", "applied")
	pc.RecordMutation("edit", "not_found")
	pc.RecordStorageFailure("write")
	pc.RecordRefresh(time.Millisecond, false)
	pc.RecordPublish(true)
	pc.RecordSnapshot(false)

	if got := testutil.ToFloat64(pc.mutations.WithLabelValues("add", "applied")); got != 2 {
		t.Fatalf("add/applied = %v, want 2", got)
	}
	if got := testutil.ToFloat64(pc.mutations.WithLabelValues("edit", "not_found")); got != 1 {
		t.Fatalf("edit/not_found = %v, want 1", got)
	}
	if got := testutil.ToFloat64(pc.storageFailures.WithLabelValues("write")); got != 1 {
		t.Fatalf("storage write failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(pc.snapshots.WithLabelValues("failure")); got != 1 {
		t.Fatalf("snapshot failures = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(pc.refreshLatency); n != 1 {
		t.Fatalf("refresh histogram series = %d, want 1", n)
	}

	if err := pc.Register(registry); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}
