package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestViewCacheGetSet(t *testing.T) {
	c := NewViewCache[int](2, time.Minute)
	c.Set(1, "all", 1)
	c.Set(1, "income", 2)

	if v, ok := c.Get(1, "all"); !ok || v != 1 {
		t.Fatalf("Get(all) = %d, %v", v, ok)
	}

	// "income" is now least recently used
	c.Set(1, "expense", 3)
	if _, ok := c.Get(1, "income"); ok {
		t.Fatalf("expected income to be evicted")
	}
	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}

	c.Set(1, "all", 10)
	if v, _ := c.Get(1, "all"); v != 10 {
		t.Fatalf("overwrite failed, got %d", v)
	}

	c.Purge()
	if c.Size() != 0 {
		t.Fatalf("Purge left %d entries", c.Size())
	}
}

func TestViewCacheDropsOlderVersions(t *testing.T) {
	c := NewViewCache[string](8, time.Minute)
	c.Set(3, "all", "v3 all")
	c.Set(3, "income", "v3 income")

	if _, ok := c.Get(4, "all"); ok {
		t.Fatalf("view of version 3 served for version 4")
	}

	c.Set(4, "expense", "v4 expense")
	if c.Size() != 1 {
		t.Fatalf("Size() = %d, want only the version 4 view", c.Size())
	}
	if _, ok := c.Get(3, "income"); ok {
		t.Fatalf("older version survived a newer store")
	}

	c.Set(2, "all", "late")
	if _, ok := c.Get(2, "all"); ok {
		t.Fatalf("store for an older version was kept")
	}
	if v, ok := c.Get(4, "expense"); !ok || v != "v4 expense" {
		t.Fatalf("Get(4, expense) = %q, %v", v, ok)
	}
}

func TestViewCacheExpiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewViewCache[string](10, time.Minute).WithClock(clock.now)

	c.Set(1, "k", "v")
	c.Set(1, "other", "w")
	clock.t = clock.t.Add(30 * time.Second)
	if _, ok := c.Get(1, "k"); !ok {
		t.Fatalf("entry expired too early")
	}

	clock.t = clock.t.Add(31 * time.Second)
	if _, ok := c.Get(1, "k"); ok {
		t.Fatalf("entry should have expired")
	}
	if removed := c.CleanExpired(); removed != 1 {
		t.Fatalf("CleanExpired() = %d, want 1", removed)
	}
	if c.Size() != 0 {
		t.Fatalf("Size() = %d, want 0", c.Size())
	}
}

func TestManagerCleanAll(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	a := NewViewCache[int](4, time.Second).WithClock(clock.now)
	b := NewViewCache[int](4, time.Hour).WithClock(clock.now)
	a.Set(1, "x", 1)
	b.Set(1, "y", 2)

	m := NewManager(nil)
	m.Register(a)
	m.Register(b)

	clock.t = clock.t.Add(time.Minute)
	if n := m.CleanAll(); n != 1 {
		t.Fatalf("CleanAll() = %d, want 1", n)
	}

	m.StartCleanup(time.Millisecond)
	m.StartCleanup(time.Millisecond)
	m.Stop()
	m.Stop()
}
