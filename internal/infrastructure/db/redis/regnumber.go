package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Registration number sequences start here so the first student of a year
// gets REG-1001-<year>.
const seqBase = 1000

// RegNumberAllocator hands out sequential registration numbers backed by
// Redis INCR. Key format: regseq:<prefix>:<year>
type RegNumberAllocator struct {
	client *redis.Client
}

// NewRegNumberAllocator creates an allocator wrapping the given Redis client.
func NewRegNumberAllocator(client *redis.Client) *RegNumberAllocator {
	return &RegNumberAllocator{client: client}
}

// Next returns the next sequence value for the prefix/year pair. INCR is
// atomic, so concurrent registrations never observe the same value.
func (a *RegNumberAllocator) Next(ctx context.Context, prefix string, year int) (int, error) {
	n, err := a.client.Incr(ctx, a.key(prefix, year)).Result()
	if err != nil {
		return 0, fmt.Errorf("regnumber incr: %w", err)
	}
	return seqBase + int(n), nil
}

func (a *RegNumberAllocator) key(prefix string, year int) string {
	return fmt.Sprintf("regseq:%s:%d", prefix, year)
}
