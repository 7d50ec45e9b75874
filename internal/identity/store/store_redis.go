package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"usersearch/internal/identity/models"
	id "usersearch/pkg/domain"
)

const (
	localKeyPrefix  = "user:"
	remoteKeyPrefix = "userRemote:"
	slugIndexKey    = "userslug:uid"
	handleIndexKey  = "handle:uid"
)

// RecordKey is the hash holding uid's fields.
func RecordKey(uid id.UID) string {
	if uid.IsLocal() {
		return localKeyPrefix + uid.String()
	}
	return remoteKeyPrefix + uid.String()
}

// BlocksKey is the sorted set of ids uid has blocked, scored by time.
func BlocksKey(uid id.UID) string {
	return "uid:" + uid.String() + ":blocked_uids"
}

// Redis reads identities stored as hashes.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Put writes an identity hash and its slug mapping.
func (s *Redis) Put(ctx context.Context, identity *models.Identity) error {
	if identity == nil || !identity.UID.Valid() {
		return nil
	}
	pipe := s.client.TxPipeline()
	fields := identity.Fields()
	values := make(map[string]any, len(fields))
	for k, v := range fields {
		values[k] = v
	}
	pipe.HSet(ctx, RecordKey(identity.UID), values)
	if n, ok := identity.UID.Local(); ok && identity.Userslug != "" {
		pipe.ZAdd(ctx, slugIndexKey, redis.Z{Score: float64(n), Member: strings.ToLower(identity.Userslug)})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put identity %s: %w", identity.UID, err)
	}
	return nil
}

// PutHandle maps a remote handle (user@host) to an actor id.
func (s *Redis) PutHandle(ctx context.Context, handle string, uid id.UID) error {
	if err := s.client.HSet(ctx, handleIndexKey, strings.ToLower(handle), uid.String()).Err(); err != nil {
		return fmt.Errorf("put handle %s: %w", handle, err)
	}
	return nil
}

// Block records that uid blocks target at the given time (ms).
func (s *Redis) Block(ctx context.Context, uid, target id.UID, at int64) error {
	return s.client.ZAdd(ctx, BlocksKey(uid), redis.Z{Score: float64(at), Member: target.String()}).Err()
}

func (s *Redis) FullRecords(ctx context.Context, uids []id.UID) ([]*models.Identity, error) {
	out := make([]*models.Identity, len(uids))
	if len(uids) == 0 {
		return out, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(uids))
	for i, uid := range uids {
		if !uid.Valid() {
			continue
		}
		cmds[i] = pipe.HGetAll(ctx, RecordKey(uid))
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read identities: %w", err)
	}

	for i, cmd := range cmds {
		if cmd == nil {
			continue
		}
		fields, err := cmd.Result()
		if err != nil || len(fields) == 0 {
			continue
		}
		out[i] = models.FromFields(uids[i], fields)
	}
	return out, nil
}

func (s *Redis) PartialRecords(ctx context.Context, uids []id.UID, fields []models.Field) ([]*models.Partial, error) {
	out := make([]*models.Partial, len(uids))
	if len(uids) == 0 {
		return out, nil
	}

	// uid is always read so a missing hash is distinguishable from empty fields.
	names := make([]string, 0, len(fields)+1)
	names = append(names, string(models.FieldUID))
	for _, f := range fields {
		if f != models.FieldUID {
			names = append(names, string(f))
		}
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(uids))
	for i, uid := range uids {
		if !uid.Valid() {
			continue
		}
		cmds[i] = pipe.HMGet(ctx, RecordKey(uid), names...)
	}
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("read identity fields: %w", err)
	}

	for i, cmd := range cmds {
		if cmd == nil {
			continue
		}
		values, err := cmd.Result()
		if err != nil || len(values) == 0 || values[0] == nil {
			continue
		}
		p := &models.Partial{UID: uids[i], Fields: make(map[models.Field]string, len(names))}
		for j, name := range names {
			if v, ok := values[j].(string); ok {
				p.Fields[models.Field(name)] = v
			}
		}
		out[i] = p
	}
	return out, nil
}

// BlockedUIDs returns the ids uid has blocked, most recent first.
func (s *Redis) BlockedUIDs(ctx context.Context, uid id.UID) ([]id.UID, error) {
	members, err := s.client.ZRevRange(ctx, BlocksKey(uid), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read block list: %w", err)
	}
	out := make([]id.UID, len(members))
	for i, m := range members {
		out[i] = id.UID(m)
	}
	return out, nil
}

func (s *Redis) UIDBySlug(ctx context.Context, slug string) (id.UID, error) {
	key := strings.ToLower(strings.TrimSpace(slug))
	if key == "" {
		return "", ErrNotFound
	}

	if isHandle(key) {
		uid, err := s.client.HGet(ctx, handleIndexKey, key).Result()
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		if err != nil {
			return "", fmt.Errorf("lookup handle: %w", err)
		}
		return id.UID(uid), nil
	}

	score, err := s.client.ZScore(ctx, slugIndexKey, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup slug: %w", err)
	}
	return id.UID(strconv.FormatInt(int64(score), 10)), nil
}
