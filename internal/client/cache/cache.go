// Package cache holds recent API responses keyed by a request fingerprint so
// rapid pagination clicks and re-renders do not hit the network twice for the
// same query.
package cache

import (
	"sort"
	"strings"
	"time"
)

// DefaultTTL is how long an entry stays readable after Put.
const DefaultTTL = 5 * time.Second

type entry struct {
	payload  any
	storedAt time.Time
}

// Cache is a TTL-bounded response cache. It is not safe for concurrent use;
// callers confine access to a single goroutine (the dashboard event loop).
type Cache struct {
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

// New creates a cache with the given TTL. A non-positive TTL falls back to
// DefaultTTL.
func New(ttl time.Duration) *Cache {
	return NewWithClock(ttl, time.Now)
}

// NewWithClock creates a cache with an injectable clock, for tests.
func NewWithClock(ttl time.Duration, now func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]entry),
	}
}

// Fingerprint derives a deterministic cache key from an endpoint path and its
// query parameters. Parameters are serialized in sorted key order so two maps
// with the same content always produce the same key; empty values are skipped.
func Fingerprint(endpoint string, params map[string]string) string {
	if len(params) == 0 {
		return endpoint
	}

	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(endpoint)
	for i, k := range keys {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(params[k])
	}
	return b.String()
}

// Get returns the stored payload only if present and not expired. Callers
// cannot distinguish expired from missing: both mean "refetch".
func (c *Cache) Get(fingerprint string) (any, bool) {
	e, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, fingerprint)
		return nil, false
	}
	return e.payload, true
}

// Put stores payload with the current timestamp, overwriting any existing
// entry for the fingerprint.
func (c *Cache) Put(fingerprint string, payload any) {
	c.entries[fingerprint] = entry{payload: payload, storedAt: c.now()}
}

// Invalidate removes every entry whose fingerprint starts with prefix. Called
// after mutations so subsequent reads observe fresh data.
func (c *Cache) Invalidate(prefix string) {
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// InvalidateAll clears the entire cache.
func (c *Cache) InvalidateAll() {
	c.entries = make(map[string]entry)
}

// Len reports the number of live entries, expired or not.
func (c *Cache) Len() int {
	return len(c.entries)
}
