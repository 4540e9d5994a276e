package cache

import (
	"container/list"
	"sync"
	"time"
)

// ViewCache holds derived views for the current collection version. An
// entry stored for a newer version drops every entry of older versions,
// which can no longer be asked for. Within a version the least recently
// used view goes first once maxViews is reached, and any view expires
// after ttl.
type ViewCache[T any] struct {
	mu       sync.Mutex
	maxViews int
	ttl      time.Duration
	now      func() time.Time
	version  uint64
	byKey    map[string]*list.Element
	recency  *list.List
}

type view[T any] struct {
	version   uint64
	key       string
	data      T
	expiresAt time.Time
}

// NewViewCache returns an empty cache. maxViews below 1 means 1.
func NewViewCache[T any](maxViews int, ttl time.Duration) *ViewCache[T] {
	return &ViewCache[T]{
		maxViews: max(maxViews, 1),
		ttl:      ttl,
		now:      time.Now,
		byKey:    make(map[string]*list.Element),
		recency:  list.New(),
	}
}

// WithClock replaces the time source, for tests.
func (c *ViewCache[T]) WithClock(now func() time.Time) *ViewCache[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
	return c
}

// Get returns the view stored under key for version.
func (c *ViewCache[T]) Get(version uint64, key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, ok := c.byKey[key]
	if !ok {
		return zero, false
	}
	v := elem.Value.(*view[T])
	if v.version != version || c.now().After(v.expiresAt) {
		c.drop(elem)
		return zero, false
	}
	c.recency.MoveToFront(elem)
	return v.data, true
}

// Set stores data as the view for key at version. Views for versions older
// than the newest one seen are ignored.
func (c *ViewCache[T]) Set(version uint64, key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case version < c.version:
		return
	case version > c.version:
		c.dropBefore(version)
		c.version = version
	}

	v := &view[T]{version: version, key: key, data: data, expiresAt: c.now().Add(c.ttl)}
	if elem, ok := c.byKey[key]; ok {
		elem.Value = v
		c.recency.MoveToFront(elem)
		return
	}
	c.byKey[key] = c.recency.PushFront(v)
	if c.recency.Len() > c.maxViews {
		c.drop(c.recency.Back())
	}
}

// Purge drops every view.
func (c *ViewCache[T]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byKey = make(map[string]*list.Element)
	c.recency.Init()
}

// CleanExpired drops expired views and returns how many went.
func (c *ViewCache[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	return c.dropWhere(func(v *view[T]) bool { return now.After(v.expiresAt) })
}

// Size returns the number of stored views.
func (c *ViewCache[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byKey)
}

func (c *ViewCache[T]) dropBefore(version uint64) int {
	return c.dropWhere(func(v *view[T]) bool { return v.version < version })
}

func (c *ViewCache[T]) dropWhere(stale func(*view[T]) bool) int {
	removed := 0
	for elem := c.recency.Front(); elem != nil; {
		next := elem.Next()
		if stale(elem.Value.(*view[T])) {
			c.drop(elem)
			removed++
		}
		elem = next
	}
	return removed
}

func (c *ViewCache[T]) drop(elem *list.Element) {
	delete(c.byKey, elem.Value.(*view[T]).key)
	c.recency.Remove(elem)
}
