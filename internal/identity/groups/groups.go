// Package groups answers batched group-membership questions.
package groups

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	id "usersearch/pkg/domain"
)

// BannedGroup is the reserved group holding banned identities.
const BannedGroup = "banned-users"

// MembersKey is the sorted set of group members scored by join time.
func MembersKey(group string) string {
	return "group:" + group + ":members"
}

// Redis checks membership against group member sets.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// IsMembers reports membership of each uid, positionally.
func (o *Redis) IsMembers(ctx context.Context, uids []id.UID, group string) ([]bool, error) {
	out := make([]bool, len(uids))
	if len(uids) == 0 || group == "" {
		return out, nil
	}

	key := MembersKey(group)
	pipe := o.client.Pipeline()
	cmds := make([]*redis.FloatCmd, len(uids))
	for i, uid := range uids {
		cmds[i] = pipe.ZScore(ctx, key, uid.String())
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("check %s membership: %w", group, err)
	}
	for i, cmd := range cmds {
		err := cmd.Err()
		switch {
		case err == nil:
			out[i] = true
		case errors.Is(err, redis.Nil):
		default:
			return nil, fmt.Errorf("check %s membership: %w", group, err)
		}
	}
	return out, nil
}

// Join adds uid to group at the given time (ms).
func (o *Redis) Join(ctx context.Context, group string, uid id.UID, at int64) error {
	return o.client.ZAdd(ctx, MembersKey(group), redis.Z{Score: float64(at), Member: uid.String()}).Err()
}

// InMemory is a map-backed oracle for tests and local runs.
type InMemory struct {
	mu      sync.RWMutex
	members map[string]map[id.UID]struct{}
}

func NewInMemory() *InMemory {
	return &InMemory{members: make(map[string]map[id.UID]struct{})}
}

func (o *InMemory) IsMembers(_ context.Context, uids []id.UID, group string) ([]bool, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	out := make([]bool, len(uids))
	for i, uid := range uids {
		_, out[i] = o.members[group][uid]
	}
	return out, nil
}

func (o *InMemory) Join(_ context.Context, group string, uid id.UID, _ int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.members[group] == nil {
		o.members[group] = make(map[id.UID]struct{})
	}
	o.members[group][uid] = struct{}{}
	return nil
}
