// Package cache stores rendered dashboard responses for a short time so that
// polling clients do not fan out to the upstream store on every request.
package cache

import (
	"context"
	"errors"
	"time"
)

// KeyPrefix namespaces every response key.
const KeyPrefix = "neocare:resp:"

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Store is a response cache backend.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear drops every cached response.
	Clear(ctx context.Context) error
}
