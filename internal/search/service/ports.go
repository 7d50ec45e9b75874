package service

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"usersearch/internal/identity/models"
	"usersearch/internal/search/filters"
	"usersearch/internal/search/hooks"
	id "usersearch/pkg/domain"
	audit "usersearch/pkg/platform/audit"
)

// Strategy finds candidate ids for text on one field, returning at most
// hardCap ids (hardCap <= 0 lets the strategy pick its default).
type Strategy interface {
	Search(ctx context.Context, text, field string, hardCap int) ([]id.UID, error)
}

// SearchFunc adapts a function to Strategy.
type SearchFunc func(ctx context.Context, text, field string, hardCap int) ([]id.UID, error)

func (f SearchFunc) Search(ctx context.Context, text, field string, hardCap int) ([]id.UID, error) {
	return f(ctx, text, field, hardCap)
}

// IPSearcher finds ids seen on an address, most recent first.
type IPSearcher interface {
	Search(ctx context.Context, ip string) ([]id.UID, error)
}

// RemoteResolver resolves handles and actor URIs. Remote failures resolve to
// nothing; only local store failures are returned.
type RemoteResolver interface {
	Resolve(ctx context.Context, query string) ([]id.UID, error)
}

// FilterPipeline narrows and orders candidate ids.
type FilterPipeline interface {
	Apply(ctx context.Context, uids []id.UID, opts filters.Options) ([]id.UID, error)
}

// RecordStore hydrates identities and block lists.
type RecordStore interface {
	FullRecords(ctx context.Context, uids []id.UID) ([]*models.Identity, error)
	BlockedUIDs(ctx context.Context, uid id.UID) ([]id.UID, error)
}

// HookRunner passes the id list through registered rewrite hooks.
type HookRunner interface {
	Fire(ctx context.Context, p hooks.Payload) (hooks.Payload, error)
}

// Auditor records privileged lookups. Emit must not block.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event)
}
