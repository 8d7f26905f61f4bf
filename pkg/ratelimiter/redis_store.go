package ratelimiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript runs the token bucket refill-and-consume step atomically
// so concurrent replicas cannot double-spend tokens.
//
// KEYS[1] - bucket key
// ARGV[1] - capacity
// ARGV[2] - refill rate (tokens per interval)
// ARGV[3] - refill interval in milliseconds
// ARGV[4] - tokens to consume
// ARGV[5] - now in unix milliseconds
//
// Returns {remaining, last_refill_ms}.
var consumeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local consume = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'last_refill')
local tokens = tonumber(state[1])
local last_refill = tonumber(state[2])

if tokens == nil then
  tokens = capacity
  last_refill = now
end

local max_intervals = math.floor(capacity / rate) + 1
local intervals = math.floor((now - last_refill) / interval)
if intervals > max_intervals then
  intervals = max_intervals
end
if intervals > 0 then
  tokens = math.min(tokens + intervals * rate, capacity)
  last_refill = now
end

tokens = tokens - consume

redis.call('HSET', KEYS[1], 'tokens', tokens, 'last_refill', last_refill)
redis.call('PEXPIRE', KEYS[1], interval * (max_intervals + 1))

return {tokens, last_refill}
`)

// RedisStore implements Store on a shared Redis instance so every
// service replica draws from the same token budget.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix overrides the default "ratelimit:" key prefix.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(rs *RedisStore) {
		if prefix != "" {
			rs.prefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed store. Panics on nil client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	if client == nil {
		panic("ratelimiter: redis client is required")
	}
	rs := &RedisStore{client: client, prefix: "ratelimit:"}
	for _, opt := range opts {
		opt(rs)
	}
	return rs
}

func (rs *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, config Config) (int, time.Time, error) {
	now := time.Now()

	res, err := consumeScript.Run(ctx, rs.client, []string{rs.prefix + key},
		config.Capacity,
		config.RefillRate,
		config.RefillInterval.Milliseconds(),
		tokens,
		now.UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, fmt.Errorf("%w: unexpected script reply", ErrStoreUnavailable)
	}

	remaining := int(res[0])
	resetAt := time.UnixMilli(res[1]).Add(config.RefillInterval)

	return remaining, resetAt, nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, rs.prefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
