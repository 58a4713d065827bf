package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript increments the window counter and stamps its expiry in one
// atomic step, so concurrent requests across processes cannot observe a
// counter without a lifetime.
var incrScript = redis.NewScript(`
	local n = redis.call('INCR', KEYS[1])
	if n == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return n
`)

// RedisStore shares window counters across processes through Redis.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, error) {
	return incrScript.Run(ctx, s.rdb, []string{key}, window.Milliseconds()).Int64()
}
