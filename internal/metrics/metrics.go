// Package metrics defines the collector the tracker reports to.
// Implementations export to Prometheus or keep counts in memory for tests.
package metrics

import "time"

// Collector receives tracker measurements.
type Collector interface {
	// RecordMutation counts a mutation by operation and outcome.
	RecordMutation(operation, outcome string)

	// RecordStorageFailure counts a swallowed read or write failure.
	RecordStorageFailure(operation string)

	// RecordRefresh observes how long a view recomputation took and whether
	// it was served from the view cache.
	RecordRefresh(duration time.Duration, cached bool)

	// RecordPublish counts change events handed to the notifier.
	RecordPublish(success bool)

	// RecordSnapshot counts snapshot files written by the worker.
	RecordSnapshot(success bool)
}

// NoOpCollector discards everything.
type NoOpCollector struct{}

func (NoOpCollector) RecordMutation(operation, outcome string)          {}
func (NoOpCollector) RecordStorageFailure(operation string)             {}
func (NoOpCollector) RecordRefresh(duration time.Duration, cached bool) {}
func (NoOpCollector) RecordPublish(success bool)                        {}
func (NoOpCollector) RecordSnapshot(success bool)                       {}

var _ Collector = NoOpCollector{}
