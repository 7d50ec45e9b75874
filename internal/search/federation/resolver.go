package federation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"usersearch/internal/search/metrics"
	id "usersearch/pkg/domain"
	"usersearch/pkg/platform/circuit"
	"usersearch/pkg/platform/sentinel"
)

const defaultDiscoveryTimeout = 15 * time.Second

// Actor is the part of a remote actor document search cares about.
type Actor struct {
	ID                string `json:"id"`
	Type              string `json:"type"`
	PreferredUsername string `json:"preferredUsername"`
	Name              string `json:"name"`
}

// Discovery is the outcome of asserting remote identifiers.
// Known means every identifier was already present locally.
type Discovery struct {
	Known  bool
	Actors []Actor
}

// Discoverer asserts remote actors, fetching the ones not yet known.
type Discoverer interface {
	Discover(ctx context.Context, identifiers []string) (Discovery, error)
}

// Resolver turns a handle or actor URI into identity ids. It never fails
// because of the remote side: discovery errors and an open breaker both
// resolve to nothing.
type Resolver struct {
	local      *LocalResolver
	slugs      SlugLookup
	discoverer Discoverer
	breaker    *circuit.Breaker
	flight     singleflight.Group
	timeout    time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// WithBreaker guards discovery calls. Without one every call is attempted.
func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Resolver) {
		r.breaker = b
	}
}

// WithDiscoveryTimeout bounds one shared discovery. It runs detached from
// the requests waiting on it.
func WithDiscoveryTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func NewResolver(local *LocalResolver, slugs SlugLookup, discoverer Discoverer, opts ...Option) *Resolver {
	r := &Resolver{
		local:      local,
		slugs:      slugs,
		discoverer: discoverer,
		timeout:    defaultDiscoveryTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the ids query names. Queries that are neither a handle nor
// an http(s) URI resolve to nothing. Local store failures are returned.
func (r *Resolver) Resolve(ctx context.Context, query string) ([]id.UID, error) {
	query = strings.TrimSpace(query)
	handle, isHandle := ParseHandle(query)
	if !isHandle && !id.IsURI(query) {
		return nil, nil
	}

	ref, err := r.local.ResolveLocalID(ctx, query)
	if err != nil {
		return nil, err
	}
	if ref.Kind == RefUser {
		r.metrics.IncrementRemoteResolution(metrics.OutcomeLocal)
		return []id.UID{ref.ID}, nil
	}

	subject := query
	if isHandle {
		subject = handle.String()
	}
	found, ok := r.discover(ctx, subject)
	if !ok {
		return nil, nil
	}

	switch {
	case found.Known:
		r.metrics.IncrementRemoteResolution(metrics.OutcomeKnown)
		if !isHandle {
			return []id.UID{id.UID(query)}, nil
		}
		uid, err := r.slugs.UIDBySlug(ctx, handle.String())
		if errors.Is(err, sentinel.ErrNotFound) {
			// Known remotely but never stored here. The nil id keeps the
			// index fallback from running and is dropped by the filters.
			return []id.UID{""}, nil
		}
		if err != nil {
			return nil, err
		}
		return []id.UID{uid}, nil
	case len(found.Actors) > 0:
		r.metrics.IncrementRemoteResolution(metrics.OutcomeDiscovered)
		out := make([]id.UID, 0, len(found.Actors))
		for _, a := range found.Actors {
			out = append(out, id.UID(a.ID))
		}
		return out, nil
	default:
		r.metrics.IncrementRemoteResolution(metrics.OutcomeUnresolved)
		return nil, nil
	}
}

// discover calls the discoverer once per subject across concurrent searches
// and feeds the outcome to the breaker. ok is false when the call was
// skipped or failed. A nil discoverer limits resolution to local ids.
func (r *Resolver) discover(ctx context.Context, subject string) (Discovery, bool) {
	if r.discoverer == nil {
		return Discovery{}, false
	}
	if r.breaker != nil && !r.breaker.Allow() {
		r.metrics.IncrementRemoteResolution(metrics.OutcomeBreakerOpen)
		return Discovery{}, false
	}

	results := r.flight.DoChan(subject, func() (any, error) {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()
		found, err := r.discoverer.Discover(dctx, []string{subject})
		r.recordOutcome(dctx, err)
		return found, err
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Discovery{}, false
	case res = <-results:
	}
	if res.Err != nil {
		r.metrics.IncrementRemoteResolution(metrics.OutcomeError)
		r.logger.WarnContext(ctx, "remote discovery failed", "subject", subject, "error", res.Err)
		return Discovery{}, false
	}
	found, _ := res.Val.(Discovery)
	return found, true
}

func (r *Resolver) recordOutcome(ctx context.Context, err error) {
	if r.breaker == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		return
	}
	if err != nil {
		if _, change := r.breaker.RecordFailure(); change.Opened {
			r.logger.WarnContext(ctx, "remote discovery disabled", "breaker", r.breaker.Name())
		}
		return
	}
	if _, change := r.breaker.RecordSuccess(); change.Closed {
		r.logger.InfoContext(ctx, "remote discovery recovered", "breaker", r.breaker.Name())
	}
}
