package cache

import (
	"errors"
	"strconv"
	"sync"
	"testing"
)

func TestNew(t *testing.T) {
	c := New[string, int](100)
	if c == nil {
		t.Fatal("New returned nil")
	}
	if c.Capacity() != 100 {
		t.Errorf("expected capacity 100, got %d", c.Capacity())
	}
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d entries", c.Len())
	}
	if got := New[string, int](0).Capacity(); got != DefaultCapacity {
		t.Errorf("New(0).Capacity() = %d, want %d", got, DefaultCapacity)
	}
}

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](10)

	c.Set("key1", 42)

	val, ok := c.Get("key1")
	if !ok {
		t.Error("expected key1 to exist")
	}
	if val != 42 {
		t.Errorf("expected 42, got %d", val)
	}

	c.Set("key1", 43)
	if val, _ := c.Get("key1"); val != 43 {
		t.Errorf("expected overwritten 43, got %d", val)
	}

	_, ok = c.Get("nonexistent")
	if ok {
		t.Error("expected nonexistent key to not exist")
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](10)
	createCalled := 0

	val, err := c.GetOrCreate("key1", func() (int, error) {
		createCalled++
		return 100, nil
	})
	if err != nil || val != 100 {
		t.Errorf("expected 100, got %d (%v)", val, err)
	}

	// Second call should return cached
	val, _ = c.GetOrCreate("key1", func() (int, error) {
		createCalled++
		return 200, nil
	})
	if val != 100 {
		t.Errorf("expected 100 (cached), got %d", val)
	}
	if createCalled != 1 {
		t.Errorf("expected create called once, got %d", createCalled)
	}
}

func TestCacheGetOrCreateError(t *testing.T) {
	c := New[string, int](10)
	errBuild := errors.New("build failed")

	_, err := c.GetOrCreate("key1", func() (int, error) { return 0, errBuild })
	if !errors.Is(err, errBuild) {
		t.Fatalf("expected build error, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("failed value was cached")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New[string, int](10)

	c.Set("key1", 42)

	if !c.Delete("key1") {
		t.Error("expected Delete to return true for existing key")
	}
	if _, ok := c.Get("key1"); ok {
		t.Error("expected key1 to be deleted")
	}
	if c.Delete("nonexistent") {
		t.Error("expected Delete to return false for non-existing key")
	}
}

func TestCacheClear(t *testing.T) {
	c := New[string, int](10)

	c.Set("key1", 1)
	c.Set("key2", 2)
	c.Set("key3", 3)

	if c.Len() != 3 {
		t.Errorf("expected 3 entries, got %d", c.Len())
	}

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("expected 0 entries after clear, got %d", c.Len())
	}
}

func TestCacheEviction(t *testing.T) {
	c := New[string, int](4)

	for i := range 4 {
		c.Set(strconv.Itoa(i), i)
	}
	// Touch "0" so "1" is the least recent.
	c.Get("0")
	c.Set("new", 100)

	if c.Len() != 4 {
		t.Errorf("expected 4 entries after eviction, got %d", c.Len())
	}
	if _, ok := c.Get("1"); ok {
		t.Error("expected least recent entry to be evicted")
	}
	for _, k := range []string{"0", "2", "3", "new"} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("expected %q to survive", k)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("expected 1 eviction, got %d", got)
	}
}

func TestCacheStats(t *testing.T) {
	c := New[string, int](10)

	c.Set("key1", 1)
	c.Set("key2", 2)
	c.Get("key1")
	c.Get("missing")

	stats := c.Stats()
	if stats.Len != 2 {
		t.Errorf("expected Len=2, got %d", stats.Len)
	}
	if stats.Capacity != 10 {
		t.Errorf("expected Capacity=10, got %d", stats.Capacity)
	}
	if stats.Hits != 1 || stats.Misses != 1 || stats.HitRate != 0.5 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[int, int](1000)
	var wg sync.WaitGroup

	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := range 100 {
				c.Set(n*100+j, n*100+j)
			}
		}(i)
	}
	wg.Wait()

	for i := range 100 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := range 100 {
				_, _ = c.GetOrCreate(n*100+j, func() (int, error) { return n, nil })
			}
		}(i)
	}
	wg.Wait()

	if c.Len() != 1000 {
		t.Errorf("expected full cache, got %d entries", c.Len())
	}
}
