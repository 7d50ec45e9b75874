// Package hooks lets extensions rewrite the candidate id list before it is
// paginated and hydrated.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	id "usersearch/pkg/domain"
)

// Payload is what a hook sees and returns. UID is the requester, empty for
// anonymous searches.
type Payload struct {
	UIDs []id.UID
	UID  id.UID
}

// Hook rewrites a payload. It runs inside the request and must not start
// work that outlives it.
type Hook interface {
	Rewrite(ctx context.Context, p Payload) (Payload, error)
}

// HookFunc adapts a function to Hook.
type HookFunc func(ctx context.Context, p Payload) (Payload, error)

func (f HookFunc) Rewrite(ctx context.Context, p Payload) (Payload, error) {
	return f(ctx, p)
}

type registration struct {
	name string
	hook Hook
}

// Registry runs registered hooks in registration order.
type Registry struct {
	mu     sync.RWMutex
	hooks  []registration
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{logger: logger}
}

// Register adds a hook. Registering a name twice replaces the earlier hook
// in place.
func (r *Registry) Register(name string, h Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.hooks {
		if r.hooks[i].name == name {
			r.hooks[i].hook = h
			return
		}
	}
	r.hooks = append(r.hooks, registration{name: name, hook: h})
}

// Fire passes p through every hook. The first error stops the chain.
func (r *Registry) Fire(ctx context.Context, p Payload) (Payload, error) {
	if r == nil {
		return p, nil
	}
	r.mu.RLock()
	chain := append([]registration(nil), r.hooks...)
	r.mu.RUnlock()

	for _, reg := range chain {
		out, err := reg.hook.Rewrite(ctx, p)
		if err != nil {
			return Payload{}, fmt.Errorf("hook %s: %w", reg.name, err)
		}
		if len(out.UIDs) != len(p.UIDs) {
			r.logger.DebugContext(ctx, "hook rewrote results", "hook", reg.name, "before", len(p.UIDs), "after", len(out.UIDs))
		}
		p = Payload{UIDs: out.UIDs, UID: p.UID}
	}
	return p, nil
}

// ExcludeUIDs drops the given ids from every result. It is the hook used to
// hide system or service accounts from search.
func ExcludeUIDs(uids ...id.UID) Hook {
	hidden := make(map[id.UID]struct{}, len(uids))
	for _, uid := range uids {
		hidden[uid] = struct{}{}
	}
	return HookFunc(func(_ context.Context, p Payload) (Payload, error) {
		out := make([]id.UID, 0, len(p.UIDs))
		for _, uid := range p.UIDs {
			if _, skip := hidden[uid]; !skip {
				out = append(out, uid)
			}
		}
		p.UIDs = out
		return p, nil
	})
}
