package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// VoteLimiter caps votes per user per minute with a fixed window counter.
// INCR followed by EXPIRE on the first hit keeps the window cheap; a user who
// clears the cap simply waits out the remainder of the window.
type VoteLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewVoteLimiter creates a limiter allowing `perMinute` votes per user.
func NewVoteLimiter(rdb *redis.Client, perMinute int) *VoteLimiter {
	return &VoteLimiter{rdb: rdb, limit: perMinute, window: time.Minute}
}

// Allow consumes one slot for the user and reports whether the vote may
// proceed.
func (l *VoteLimiter) Allow(ctx context.Context, userID int) (bool, error) {
	key := fmt.Sprintf("rate_limit:votes:%d", userID)

	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("vote rate limit check failed: %w", err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("vote rate limit expire failed: %w", err)
		}
	}
	return n <= int64(l.limit), nil
}
