package cache

import (
	"testing"
	"time"
)

func TestLRU_SetGet(t *testing.T) {
	c := NewLRU[string](4, time.Minute)

	c.Set("a", "alpha")
	got, ok := c.Get("a")
	if !ok || got != "alpha" {
		t.Errorf("Get(a) = (%q, %v), want (alpha, true)", got, ok)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on a missing key should report false")
	}
}

func TestLRU_Overwrite(t *testing.T) {
	c := NewLRU[int](4, time.Minute)

	c.Set("k", 1)
	c.Set("k", 2)

	if got, _ := c.Get("k"); got != 2 {
		t.Errorf("Get(k) = %d, want 2", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int](2, time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Get("a") // a is now most recently used
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived eviction")
	}
	if _, ok := c.Get("c"); !ok {
		t.Error("c should be present")
	}
}

func TestLRU_TTLExpiry(t *testing.T) {
	c := NewLRU[int](4, 20*time.Millisecond)

	c.Set("k", 1)
	time.Sleep(40 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expired entry should not be returned")
	}
}

func TestLRU_Delete(t *testing.T) {
	c := NewLRU[int](4, time.Minute)

	c.Set("k", 1)
	c.Delete("k")
	c.Delete("k") // deleting twice is fine

	if _, ok := c.Get("k"); ok {
		t.Error("deleted entry should be gone")
	}
}

func TestLRU_Purge(t *testing.T) {
	c := NewLRU[int](8, time.Minute)

	for _, k := range []string{"a", "b", "c"} {
		c.Set(k, 1)
	}
	c.Purge()

	if c.Len() != 0 {
		t.Errorf("Len after Purge = %d, want 0", c.Len())
	}
}

func TestNoop(t *testing.T) {
	var c Noop[int]

	c.Set("k", 1)
	if _, ok := c.Get("k"); ok {
		t.Error("noop cache should never hit")
	}
	c.Delete("k")
}
