// Package cache memoizes derived views keyed by collection version and
// filter criteria.
package cache

import (
	"sync"
	"time"

	"moneytracker/internal/log"
)

// Cache memoizes values computed from one collection version.
type Cache[T any] interface {
	Get(version uint64, key string) (T, bool)
	Set(version uint64, key string, data T)
	Purge()
	Size() int
}

// Cleaner is implemented by caches that can drop expired entries.
type Cleaner interface {
	CleanExpired() int
}

// Manager periodically cleans every registered cache.
type Manager struct {
	mu          sync.Mutex
	caches      []Cleaner
	logger      *log.Logger
	stopCleanup chan struct{}
	cleanupDone chan struct{}
	started     bool
}

// NewManager creates a new cache manager. A nil logger disables logging.
func NewManager(logger *log.Logger) *Manager {
	return &Manager{
		caches: make([]Cleaner, 0),
		logger: logger,
	}
}

// Register adds a cache to the manager for cleanup
func (m *Manager) Register(cache Cleaner) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caches = append(m.caches, cache)
}

// CleanAll runs one cleanup pass and returns the number of removed entries.
func (m *Manager) CleanAll() int {
	m.mu.Lock()
	caches := append([]Cleaner(nil), m.caches...)
	m.mu.Unlock()

	total := 0
	for _, c := range caches {
		total += c.CleanExpired()
	}
	return total
}

// StartCleanup begins periodic cleanup of all registered caches
func (m *Manager) StartCleanup(interval time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	m.stopCleanup = make(chan struct{})
	m.cleanupDone = make(chan struct{})
	go m.cleanup(interval, m.stopCleanup, m.cleanupDone)
}

func (m *Manager) cleanup(interval time.Duration, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := m.CleanAll(); n > 0 && m.logger != nil {
				m.logger.Debug("Expired view cache entries removed", "removed", n)
			}
		case <-stop:
			return
		}
	}
}

// Stop ends the cleanup goroutine. It is safe to call when cleanup never
// started.
func (m *Manager) Stop() {
	m.mu.Lock()
	started := m.started
	m.started = false
	stop, done := m.stopCleanup, m.cleanupDone
	m.mu.Unlock()
	if !started {
		return
	}
	close(stop)
	<-done
}
