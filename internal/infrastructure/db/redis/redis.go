// Package redis backs the registration-number sequences. It is the only part
// of the system that needs shared atomic counters; everything else lives in
// the mongo user store.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	clientName     = "student-registry"
	defaultTimeout = 5 * time.Second
)

// Config holds the connection settings for the sequence store.
type Config struct {
	Addr    string
	DB      int
	Timeout time.Duration
}

// Connect dials the sequence store and pings it. Registration can survive a
// redis outage (the allocator has a fallback), but startup still verifies the
// address so misconfiguration is caught immediately.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr,
		DB:         cfg.DB,
		ClientName: clientName,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping sequence store: %w", err)
	}

	return client, nil
}
