package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	goredis "github.com/redis/go-redis/v9"

	"usersearch/internal/identity/groups"
	"usersearch/internal/identity/models"
	"usersearch/internal/identity/store"
	"usersearch/internal/platform/config"
	platformredis "usersearch/internal/platform/redis"
	"usersearch/internal/search/index"
	id "usersearch/pkg/domain"
	audit "usersearch/pkg/platform/audit"
	auditkafka "usersearch/pkg/platform/audit/store/kafka"
	auditmemory "usersearch/pkg/platform/audit/store/memory"
	auditpostgres "usersearch/pkg/platform/audit/store/postgres"
)

// IdentityStore is everything the search stack needs from an identity backend.
type IdentityStore interface {
	store.Writer
	FullRecords(ctx context.Context, uids []id.UID) ([]*models.Identity, error)
	PartialRecords(ctx context.Context, uids []id.UID, fields []models.Field) ([]*models.Partial, error)
	BlockedUIDs(ctx context.Context, uid id.UID) ([]id.UID, error)
	UIDBySlug(ctx context.Context, slug string) (id.UID, error)
}

// SearchIndex is the sorted-set index, readable and writable.
type SearchIndex interface {
	index.Index
	index.Writer
}

// GroupStore answers membership questions and records joins.
type GroupStore interface {
	IsMembers(ctx context.Context, uids []id.UID, group string) ([]bool, error)
	Join(ctx context.Context, group string, uid id.UID, at int64) error
}

// Backends are the stores one process searches against.
type Backends struct {
	Index    SearchIndex
	Identity IdentityStore
	Groups   GroupStore
	// Audit keeps privileged lookups in Postgres when that backend is
	// selected, in memory otherwise.
	Audit audit.Store
	// AuditMirror is nil unless Kafka brokers are configured.
	AuditMirror *auditkafka.Sink
	// Redis is nil for the memory backend.
	Redis   *platformredis.Client
	closers []func() error
}

// Close releases every connection the backends opened.
func (b *Backends) Close() error {
	var first error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (b *Backends) redisClient() *goredis.Client {
	if b.Redis == nil {
		return nil
	}
	return b.Redis.Client
}

// OpenBackends connects the configured identity backend. The index and the
// group sets always live in Redis unless the memory backend is selected.
// Closing the returned Backends releases everything it opened.
func OpenBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backends, error) {
	var (
		b   *Backends
		err error
	)
	if cfg.Identity.Backend == config.IdentityBackendMemory {
		b, err = openMemory(ctx, cfg, logger)
	} else {
		b, err = openShared(ctx, cfg, logger)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Audit.Enabled && len(cfg.Audit.KafkaBrokers) > 0 {
		mirror, err := auditkafka.New(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		b.AuditMirror = mirror
		b.closers = append(b.closers, mirror.Close)
		logger.InfoContext(ctx, "mirroring audit events to kafka", "topic", cfg.Audit.KafkaTopic)
	}
	return b, nil
}

func openShared(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backends, error) {
	rc, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	b := &Backends{
		Index:   index.NewRedisIndex(rc.Client),
		Groups:  groups.NewRedis(rc.Client),
		Audit:   auditmemory.NewInMemoryStore(),
		Redis:   rc,
		closers: []func() error{rc.Close},
	}

	switch cfg.Identity.Backend {
	case config.IdentityBackendPostgres:
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.Postgres.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.Postgres.MaxOpenConns)
		}
		db.SetConnMaxIdleTime(5 * time.Minute)
		b.closers = append(b.closers, db.Close)

		pg := store.NewPostgres(db)
		if err := pg.Migrate(ctx); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("migrate identity schema: %w", err)
		}
		b.Identity = pg

		auditStore := auditpostgres.New(db)
		if err := auditStore.Migrate(ctx); err != nil {
			_ = b.Close()
			return nil, fmt.Errorf("migrate audit schema: %w", err)
		}
		b.Audit = auditStore
	default:
		b.Identity = store.NewRedis(rc.Client)
	}

	logger.InfoContext(ctx, "backends connected", "identity_backend", cfg.Identity.Backend)
	return b, nil
}

func openMemory(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backends, error) {
	b := &Backends{
		Index:    index.NewInMemory(),
		Identity: store.NewInMemory(),
		Groups:   groups.NewInMemory(),
		Audit:    auditmemory.NewInMemoryStore(),
	}
	if cfg.Identity.SeedDemo {
		if err := store.SeedDemo(ctx, b.Identity, b.Index, b.Groups, time.Now()); err != nil {
			return nil, fmt.Errorf("seed demo identities: %w", err)
		}
		logger.InfoContext(ctx, "seeded demo identities")
	}
	return b, nil
}
