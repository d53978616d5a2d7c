package cache

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (f *fakeClock) Now() time.Time { return f.t }

func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestCache() (*Cache, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)}
	return NewWithClock(DefaultTTL, clk.Now), clk
}

func TestCache_PutGetRoundTrip(t *testing.T) {
	c, _ := newTestCache()

	c.Put("/admin/users?page=1", "payload")
	got, ok := c.Get("/admin/users?page=1")
	if !ok {
		t.Fatalf("expected hit immediately after put")
	}
	if got != "payload" {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestCache_MissWhenAbsent(t *testing.T) {
	c, _ := newTestCache()

	if _, ok := c.Get("/admin/users?page=1"); ok {
		t.Fatalf("expected miss for never-stored key")
	}
}

func TestCache_ExpiresAfterTTL(t *testing.T) {
	c, clk := newTestCache()

	c.Put("k", "v")

	clk.Advance(DefaultTTL - time.Millisecond)
	if _, ok := c.Get("k"); !ok {
		t.Fatalf("expected hit just before TTL")
	}

	clk.Advance(time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Fatalf("expected miss once TTL elapsed")
	}
}

func TestCache_PutRefreshesTimestamp(t *testing.T) {
	c, clk := newTestCache()

	c.Put("k", "old")
	clk.Advance(4 * time.Second)
	c.Put("k", "new")
	clk.Advance(4 * time.Second)

	got, ok := c.Get("k")
	if !ok {
		t.Fatalf("expected hit: second put should reset the clock")
	}
	if got != "new" {
		t.Fatalf("expected overwritten payload, got %v", got)
	}
}

func TestCache_InvalidateByPrefix(t *testing.T) {
	c, _ := newTestCache()

	c.Put("/admin/users?page=1", 1)
	c.Put("/admin/users?page=2", 2)
	c.Put("/profile", 3)

	c.Invalidate("/admin/users")

	if _, ok := c.Get("/admin/users?page=1"); ok {
		t.Fatalf("expected list entry invalidated")
	}
	if _, ok := c.Get("/admin/users?page=2"); ok {
		t.Fatalf("expected list entry invalidated")
	}
	if _, ok := c.Get("/profile"); !ok {
		t.Fatalf("unrelated entry must survive prefix invalidation")
	}
}

func TestCache_InvalidateAll(t *testing.T) {
	c, _ := newTestCache()

	c.Put("a", 1)
	c.Put("b", 2)
	c.InvalidateAll()

	if c.Len() != 0 {
		t.Fatalf("expected empty cache, got %d entries", c.Len())
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("/admin/users", map[string]string{"page": "1", "search": "jane", "role": "student"})
	b := Fingerprint("/admin/users", map[string]string{"role": "student", "search": "jane", "page": "1"})
	if a != b {
		t.Fatalf("same params must produce same fingerprint: %q vs %q", a, b)
	}
	if a != "/admin/users?page=1&role=student&search=jane" {
		t.Fatalf("unexpected fingerprint: %s", a)
	}
}

func TestFingerprint_SkipsEmptyValues(t *testing.T) {
	got := Fingerprint("/admin/users", map[string]string{"page": "1", "search": ""})
	if got != "/admin/users?page=1" {
		t.Fatalf("unexpected fingerprint: %s", got)
	}

	if Fingerprint("/admin/users", nil) != "/admin/users" {
		t.Fatalf("nil params should yield bare endpoint")
	}
}
