package policies

import (
	"context"

	"wedding-invitation/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// DestroyUserSessions logs a user out everywhere.
// Deletes each session key (session:<sid>) and the user_sessions:<user_id> set.
func DestroyUserSessions(ctx context.Context, rdb *redis.Client, userID string) {
	if rdb == nil || userID == "" {
		return
	}
	key := middleware.UserSessionsPrefix + userID
	sessionIDs, err := rdb.SMembers(ctx, key).Result()
	if err != nil || len(sessionIDs) == 0 {
		rdb.Del(ctx, key)
		return
	}
	for _, sid := range sessionIDs {
		rdb.Del(ctx, middleware.SessionRedisPrefix+sid)
	}
	rdb.Del(ctx, key)
}
