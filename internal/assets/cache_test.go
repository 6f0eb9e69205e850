package assets

import (
	"errors"
	"testing"
)

func TestCacheRefCounting(t *testing.T) {
	var released []string
	c := NewCache(func(v string) { released = append(released, v) })

	loads := 0
	load := func() (string, error) {
		loads++
		return "program", nil
	}

	for i := 0; i < 3; i++ {
		if _, err := c.Acquire("default", load); err != nil {
			t.Fatal(err)
		}
	}
	if loads != 1 {
		t.Errorf("expected a single load, got %d", loads)
	}
	if c.Refs("default") != 3 {
		t.Errorf("expected 3 refs, got %d", c.Refs("default"))
	}
	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("expected 2 hits 1 miss, got %d/%d", hits, misses)
	}

	if c.Release("default") || c.Release("default") {
		t.Error("value freed while still referenced")
	}
	if !c.Release("default") {
		t.Error("expected last release to free")
	}
	if len(released) != 1 || c.Len() != 0 {
		t.Errorf("unexpected release state %v len=%d", released, c.Len())
	}
	if c.Release("default") {
		t.Error("releasing an absent key must be a no-op")
	}
}

func TestCacheLoadError(t *testing.T) {
	c := NewCache[int](nil)
	boom := errors.New("boom")

	if _, err := c.Acquire("x", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected load error, got %v", err)
	}
	if c.Len() != 0 {
		t.Error("failed load must not be cached")
	}
}

func TestCacheClear(t *testing.T) {
	freed := 0
	c := NewCache(func(int) { freed++ })
	c.Acquire("a", func() (int, error) { return 1, nil })
	c.Acquire("a", func() (int, error) { return 1, nil })
	c.Acquire("b", func() (int, error) { return 2, nil })

	c.Clear()
	if freed != 2 || c.Len() != 0 {
		t.Errorf("expected both values freed, freed=%d len=%d", freed, c.Len())
	}
}
