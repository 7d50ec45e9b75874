package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"usersearch/internal/ratelimit/models"
)

// Redis implements the sliding window over a sorted set per key, scored by
// request time in milliseconds, so every search node shares one budget.
type Redis struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client, now: time.Now}
}

// Allow trims the window, counts it and, if there is room, records the
// request. The trim and count run in one transaction; the add is a second
// round trip, so concurrent callers may overshoot by a request or two.
func (s *Redis) Allow(ctx context.Context, key string, limit models.Limit) (*models.Result, error) {
	now := s.now()
	nowMs := now.UnixMilli()
	cutoff := nowMs - limit.Window.Milliseconds()

	var (
		count  *redis.IntCmd
		oldest *redis.ZSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", strconv.FormatInt(cutoff, 10))
		count = pipe.ZCard(ctx, key)
		oldest = pipe.ZRangeWithScores(ctx, key, 0, 0)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ratelimit window %s: %w", key, err)
	}

	resetAt := now.Add(limit.Window)
	if first := oldest.Val(); len(first) > 0 {
		resetAt = time.UnixMilli(int64(first[0].Score)).Add(limit.Window)
	}

	used := int(count.Val())
	if used >= limit.Requests {
		return &models.Result{
			Allowed:    false,
			Limit:      limit.Requests,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: retryAfter(now, resetAt),
		}, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(nowMs), Member: member})
		pipe.PExpire(ctx, key, limit.Window)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ratelimit record %s: %w", key, err)
	}

	return &models.Result{
		Allowed:   true,
		Limit:     limit.Requests,
		Remaining: limit.Requests - used - 1,
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the counter for a key.
func (s *Redis) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}
