package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/uniedit/invite-server/internal/port/outbound"
)

const rateLimitKeyPrefix = "invite:ratelimit:"

// rateLimiter implements outbound.RateLimiterPort with a sliding window log.
type rateLimiter struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRateLimiter creates a new rate limiter adapter.
func NewRateLimiter(client redis.UniversalClient) outbound.RateLimiterPort {
	return &rateLimiter{client: client, now: time.Now}
}

func (r *rateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	fullKey := rateLimitKeyPrefix + key
	now := r.now().UnixNano()
	member := strconv.FormatInt(now, 10) + "-" + uuid.NewString()

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, fullKey, "-inf", "("+strconv.FormatInt(now-window.Nanoseconds(), 10))
	pipe.ZAdd(ctx, fullKey, redis.Z{Score: float64(now), Member: member})
	count := pipe.ZCard(ctx, fullKey)
	pipe.PExpire(ctx, fullKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}

	if count.Val() > int64(limit) {
		// Rejected hits do not consume the window.
		if err := r.client.ZRem(ctx, fullKey, member).Err(); err != nil {
			return false, fmt.Errorf("rate limit %s: %w", key, err)
		}
		return false, nil
	}
	return true, nil
}

var _ outbound.RateLimiterPort = (*rateLimiter)(nil)
