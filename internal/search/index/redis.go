package index

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const scanBatch = 500

// RedisIndex reads sorted sets from Redis.
type RedisIndex struct {
	client *redis.Client
}

func NewRedisIndex(client *redis.Client) *RedisIndex {
	return &RedisIndex{client: client}
}

func (x *RedisIndex) Exists(ctx context.Context, key string) (bool, error) {
	n, err := x.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", key, err)
	}
	return n > 0, nil
}

func (x *RedisIndex) RangeByLex(ctx context.Context, key string, r LexRange, offset, count int64) ([]string, error) {
	max := "(" + r.Max
	if r.Unbounded {
		max = "+"
	}
	members, err := x.client.ZRangeByLex(ctx, key, &redis.ZRangeBy{
		Min:    "[" + r.Min,
		Max:    max,
		Offset: offset,
		Count:  count,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", key, err)
	}
	return members, nil
}

func (x *RedisIndex) RevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]ScoredMember, error) {
	zs, err := x.client.ZRevRangeWithScores(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("revrange %s: %w", key, err)
	}
	out := make([]ScoredMember, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			member = fmt.Sprint(z.Member)
		}
		out = append(out, ScoredMember{Member: member, Score: z.Score})
	}
	return out, nil
}

// ScanKeys walks the keyspace with SCAN; it never blocks the server the way
// KEYS does. Duplicates SCAN may return are dropped.
func (x *RedisIndex) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string
	iter := x.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", pattern, err)
	}
	return keys, nil
}

func (x *RedisIndex) Add(ctx context.Context, key string, score float64, member string) error {
	return x.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
}
