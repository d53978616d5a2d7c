// Package mongo is the registry's user store: a connection helper plus the
// UserRepository backing every account read and write.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	appName        = "student-registry"
	defaultTimeout = 10 * time.Second
)

// Config holds what is needed to reach the user store.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect dials the user store and verifies it with a ping before anything
// else starts up; a registry that cannot reach its accounts should fail fast.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetAppName(appName)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("connect user store: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("ping user store: %w", err)
	}

	return client, client.Database(cfg.Database), nil
}
