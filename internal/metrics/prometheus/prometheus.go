// Package prometheus exports tracker metrics through client_golang.
package prometheus

import (
	"time"

	"moneytracker/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector implements metrics.Collector for Prometheus.
type PrometheusCollector struct {
	mutations       *prometheus.CounterVec
	storageFailures *prometheus.CounterVec
	refreshLatency  *prometheus.HistogramVec
	published       *prometheus.CounterVec
	snapshots       *prometheus.CounterVec
}

var _ metrics.Collector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates the collector's metric vectors under
// namespace. Call Register before use.
func NewPrometheusCollector(namespace string) *PrometheusCollector {
	return &PrometheusCollector{
		mutations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mutations_total",
				Help:      "Total number of collection mutations per operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		storageFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_failures_total",
				Help:      "Total number of ignored storage failures per operation",
			},
			[]string{"operation"},
		),
		refreshLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "view_refresh_duration_seconds",
				Help:      "Time spent computing derived views",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
			[]string{"cached"},
		),
		published: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "change_events_total",
				Help:      "Total number of change events handed to the notifier",
			},
			[]string{"result"},
		),
		snapshots: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshots_total",
				Help:      "Total number of snapshot files written",
			},
			[]string{"result"},
		),
	}
}

// Register registers all metrics with the given Prometheus registry.
func (pc *PrometheusCollector) Register(registry prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		pc.mutations,
		pc.storageFailures,
		pc.refreshLatency,
		pc.published,
		pc.snapshots,
	}
	for _, collector := range collectors {
		if err := registry.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func (pc *PrometheusCollector) RecordMutation(operation, outcome string) {
	pc.mutations.WithLabelValues(operation, outcome).Inc()
}

func (pc *PrometheusCollector) RecordStorageFailure(operation string) {
	pc.storageFailures.WithLabelValues(operation).Inc()
}

func (pc *PrometheusCollector) RecordRefresh(duration time.Duration, cached bool) {
	label := "false"
	if cached {
		label = "true"
	}
	pc.refreshLatency.WithLabelValues(label).Observe(duration.Seconds())
}

func (pc *PrometheusCollector) RecordPublish(success bool) {
	pc.published.WithLabelValues(result(success)).Inc()
}

func (pc *PrometheusCollector) RecordSnapshot(success bool) {
	pc.snapshots.WithLabelValues(result(success)).Inc()
}
