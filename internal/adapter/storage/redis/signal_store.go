package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// SignalStore implements ports.SignalCounter using Redis fixed windows. The
// fraud service reads the returned count to decide whether to flag velocity.
type SignalStore struct {
	client *goredis.Client
	prefix string
}

// NewSignalStore creates a new Redis-backed signal counter.
func NewSignalStore(client *goredis.Client) *SignalStore {
	return &SignalStore{
		client: client,
		prefix: "signal:",
	}
}

// Increment bumps the counter for key in the current window and returns the
// new count.
func (s *SignalStore) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	windowID := time.Now().Unix() / int64(window.Seconds())
	redisKey := fmt.Sprintf("%s%s:%d", s.prefix, key, windowID)

	count, err := s.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis signal incr: %w", err)
	}
	if count == 1 {
		s.client.Expire(ctx, redisKey, window+time.Second)
	}
	return count, nil
}
