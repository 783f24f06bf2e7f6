package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const redisKeyPrefix = "ratelimit:"

// Redis is a fixed-window limiter backed by INCR/EXPIRE, shared across processes.
type Redis struct {
	Rdb    *redis.Client
	Max    int
	Window time.Duration
	Prefix string
}

func (r *Redis) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	prefix := r.Prefix
	if prefix == "" {
		prefix = redisKeyPrefix
	}
	k := prefix + key
	n, err := r.Rdb.Incr(ctx, k).Result()
	if err != nil {
		// Fail open: a Redis outage must not block guests from submitting.
		log.Warn().Err(err).Str("key", k).Msg("rate limiter unavailable")
		return true
	}
	if n == 1 {
		r.Rdb.Expire(ctx, k, r.Window)
	}
	return n <= int64(r.Max)
}
