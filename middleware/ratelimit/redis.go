package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// admitScript counts and caps atomically so concurrent requests from the
// same key cannot race past the budget.
var admitScript = redis.NewScript(`
	local current = redis.call("GET", KEYS[1])
	if current == false then
		redis.call("SET", KEYS[1], 1, "EX", ARGV[2])
		return 1
	end
	local count = tonumber(current)
	if count >= tonumber(ARGV[1]) then
		return 0
	end
	redis.call("INCR", KEYS[1])
	return 1
`)

// RedisStore is a Store backed by Redis, sharing one budget across every
// process that points at the same instance.
type RedisStore struct {
	client    redis.Scripter
	keyPrefix string
}

func NewRedisStore(client redis.Scripter, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "authrate:"
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

func (s *RedisStore) Admit(ctx context.Context, key string, limit int, window time.Duration) error {
	result, err := admitScript.Run(ctx, s.client, []string{s.keyPrefix + key}, limit, int(window.Seconds())).Int()
	if err != nil {
		return err
	}
	if result == 0 {
		return ErrRateLimitExceeded
	}
	return nil
}
