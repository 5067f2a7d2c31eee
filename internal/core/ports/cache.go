package ports

import (
	"context"
	"time"
)

// IdempotencyCache is an advisory fast path for replay detection. A cache miss
// means nothing: the database uniqueness constraint stays the source of truth.
type IdempotencyCache interface {
	// Get returns the cached response for a key, or (nil, nil) on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SignalCounter maintains windowed activity counters for fraud signals.
type SignalCounter interface {
	// Increment bumps the counter for key in the current window and returns
	// the new count.
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}
