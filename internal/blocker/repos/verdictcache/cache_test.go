package verdictcache

import (
	"testing"

	"github.com/VIJAY-mark/blockd/internal/blocker/domain"
)

func TestCache_HitMissAndPut(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	v := domain.BlockedBy(domain.MatchTracker, "ads.example.com")

	if _, ok := c.Get("https://ads.example.com/track"); ok {
		t.Fatalf("expected miss before put")
	}

	c.Put("https://ads.example.com/track", v)

	got, ok := c.Get("https://ads.example.com/track")
	if !ok || !got.Blocked || got.Rule != "ads.example.com" {
		t.Fatalf("unexpected get: ok=%v got=%+v", ok, got)
	}

	hits, misses, _ := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("stats = (%d, %d); want (1, 1)", hits, misses)
	}
}

func TestCache_EvictionAndLen(t *testing.T) {
	c, err := New(2)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("a", domain.Allowed())
	c.Put("b", domain.Allowed())
	if got := c.Len(); got != 2 {
		t.Fatalf("len=%d want=2", got)
	}
	// Adding a third should evict one
	c.Put("c", domain.Allowed())
	if got := c.Len(); got != 2 {
		t.Fatalf("len=%d want=2 after eviction", got)
	}
	_, _, evictions := c.Stats()
	if evictions != 1 {
		t.Errorf("evictions=%d want=1", evictions)
	}
}

func TestCache_PurgeCountsEvictions(t *testing.T) {
	c, err := New(3)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("a", domain.Allowed())
	c.Put("b", domain.Allowed())
	c.Put("c", domain.Allowed())

	c.Purge()
	if got := c.Len(); got != 0 {
		t.Fatalf("len=%d want=0 after purge", got)
	}
	_, _, evictions := c.Stats()
	if evictions != 3 {
		t.Errorf("evictions=%d want=3 after purge", evictions)
	}
}

func TestDisabledCache(t *testing.T) {
	c, err := New(0)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	c.Put("a", domain.Allowed())
	if _, ok := c.Get("a"); ok {
		t.Error("disabled cache returned a hit")
	}
	if c.Len() != 0 {
		t.Error("disabled cache has entries")
	}
	c.Purge()
	h, m, e := c.Stats()
	if h != 0 || m != 0 || e != 0 {
		t.Errorf("disabled cache stats = (%d, %d, %d)", h, m, e)
	}
}
