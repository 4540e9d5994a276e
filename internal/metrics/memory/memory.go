// Package memory keeps tracker metrics in process, for tests and the CLI.
package memory

import (
	"sync"
	"time"

	"moneytracker/internal/metrics"
)

// MemoryCollector implements metrics.Collector with plain counters.
type MemoryCollector struct {
	mu sync.RWMutex

	mutations       map[string]int64
	storageFailures map[string]int64
	refreshes       []time.Duration
	cachedRefreshes int64
	published       int64
	publishFailures int64
	snapshots       int64
	snapshotErrors  int64
}

var _ metrics.Collector = (*MemoryCollector)(nil)

func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{
		mutations:       make(map[string]int64),
		storageFailures: make(map[string]int64),
	}
}

func mutationKey(operation, outcome string) string {
	return operation + "/" + outcome
}

func (c *MemoryCollector) RecordMutation(operation, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mutations[mutationKey(operation, outcome)]++
}

func (c *MemoryCollector) RecordStorageFailure(operation string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storageFailures[operation]++
}

func (c *MemoryCollector) RecordRefresh(duration time.Duration, cached bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshes = append(c.refreshes, duration)
	if cached {
		c.cachedRefreshes++
	}
}

func (c *MemoryCollector) RecordPublish(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if success {
		c.published++
	} else {
		c.publishFailures++
	}
}

func (c *MemoryCollector) RecordSnapshot(success bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if success {
		c.snapshots++
	} else {
		c.snapshotErrors++
	}
}

// Mutations returns how many times operation ended with outcome.
func (c *MemoryCollector) Mutations(operation, outcome string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mutations[mutationKey(operation, outcome)]
}

func (c *MemoryCollector) StorageFailures(operation string) int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.storageFailures[operation]
}

// Refreshes returns the total and cached refresh counts.
func (c *MemoryCollector) Refreshes() (total, cached int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.refreshes)), c.cachedRefreshes
}

func (c *MemoryCollector) Published() (ok, failed int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.published, c.publishFailures
}

func (c *MemoryCollector) Snapshots() (ok, failed int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshots, c.snapshotErrors
}
