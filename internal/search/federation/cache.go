package federation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ActorCache remembers which identifiers have already been discovered.
type ActorCache interface {
	Lookup(ctx context.Context, identifier string) (actorID string, ok bool, err error)
	Store(ctx context.Context, identifier, actorID string) error
}

const actorKeyPrefix = "federation:actor:"

// RedisActorCache keeps discovered actor ids in Redis with a TTL so every
// instance sees the same assertions.
type RedisActorCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisActorCache(client *redis.Client, ttl time.Duration) *RedisActorCache {
	return &RedisActorCache{client: client, ttl: ttl}
}

func (c *RedisActorCache) Lookup(ctx context.Context, identifier string) (string, bool, error) {
	actorID, err := c.client.Get(ctx, actorKey(identifier)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup actor: %w", err)
	}
	return actorID, true, nil
}

func (c *RedisActorCache) Store(ctx context.Context, identifier, actorID string) error {
	if err := c.client.Set(ctx, actorKey(identifier), actorID, c.ttl).Err(); err != nil {
		return fmt.Errorf("store actor: %w", err)
	}
	return nil
}

func actorKey(identifier string) string {
	return actorKeyPrefix + strings.ToLower(strings.TrimPrefix(identifier, "@"))
}

type cachedActor struct {
	actorID   string
	expiresAt time.Time
}

// MemoryActorCache is a process-local ActorCache.
type MemoryActorCache struct {
	mu      sync.RWMutex
	entries map[string]cachedActor
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryActorCache(ttl time.Duration) *MemoryActorCache {
	return &MemoryActorCache{
		entries: make(map[string]cachedActor),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryActorCache) Lookup(_ context.Context, identifier string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[actorKey(identifier)]
	if !ok || (c.ttl > 0 && c.now().After(entry.expiresAt)) {
		return "", false, nil
	}
	return entry.actorID, true, nil
}

func (c *MemoryActorCache) Store(_ context.Context, identifier, actorID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[actorKey(identifier)] = cachedActor{actorID: actorID, expiresAt: c.now().Add(c.ttl)}
	return nil
}
