package database

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// OpenRedis parses a redis:// or rediss:// URL and pings the server.
// An empty URL returns a nil client; sessions and health counters are then disabled.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return rdb, nil
}
