// Package app assembles the search stack from configuration. The server and
// the CLI share it.
package app

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"usersearch/internal/platform/config"
	"usersearch/internal/search/federation"
	"usersearch/internal/search/filters"
	"usersearch/internal/search/hooks"
	"usersearch/internal/search/index"
	searchmetrics "usersearch/internal/search/metrics"
	"usersearch/internal/search/service"
	id "usersearch/pkg/domain"
	audit "usersearch/pkg/platform/audit"
	"usersearch/pkg/platform/circuit"
)

// App is a wired search stack.
type App struct {
	Backends *Backends
	Hooks    *hooks.Registry
	Service  *service.Service
	Metrics  *searchmetrics.Metrics
	// Audit is nil when auditing is disabled.
	Audit *audit.Publisher
}

// New wires the stack on top of already opened backends. reg may be nil to
// skip metrics.
func New(cfg *config.Config, b *Backends, logger *slog.Logger, reg prometheus.Registerer) (*App, error) {
	var m *searchmetrics.Metrics
	if reg != nil {
		m = searchmetrics.New(reg)
	}

	registry := hooks.NewRegistry(logger)
	if len(cfg.Search.HiddenUIDs) > 0 {
		hidden := make([]id.UID, 0, len(cfg.Search.HiddenUIDs))
		for _, raw := range cfg.Search.HiddenUIDs {
			hidden = append(hidden, id.UID(raw))
		}
		registry.Register("hidden-uids", hooks.ExcludeUIDs(hidden...))
	}

	resolver, err := newResolver(cfg, b, logger, m)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithMetrics(m),
		service.WithResolver(resolver),
		service.WithHooks(registry),
	}
	var auditor *audit.Publisher
	if cfg.Audit.Enabled && b.Audit != nil {
		var sink audit.Sink = b.Audit
		if b.AuditMirror != nil {
			sink = audit.Tee(b.Audit, b.AuditMirror)
		}
		auditor = audit.NewPublisher(sink, logger,
			audit.WithBufferSize(cfg.Audit.BufferSize),
			audit.WithFlushInterval(cfg.Audit.FlushInterval),
		)
		opts = append(opts, service.WithAuditor(auditor))
	}

	svc := service.New(
		index.NewPrefixSearcher(b.Index,
			index.WithDefaultHardCap(cfg.Search.ResultsPerPage*10),
			index.WithLogger(logger),
		),
		index.NewIPSearcher(b.Index),
		filters.NewPipeline(b.Groups, b.Identity),
		b.Identity,
		service.Config{
			ResultsPerPage:    cfg.Search.ResultsPerPage,
			FederationEnabled: cfg.Federation.Enabled,
		},
		opts...,
	)

	return &App{
		Backends: b,
		Hooks:    registry,
		Service:  svc,
		Metrics:  m,
		Audit:    auditor,
	}, nil
}

// Close drains pending audit events. Backends are closed by their owner.
func (a *App) Close() error {
	if a.Audit == nil {
		return nil
	}
	return a.Audit.Close()
}

// newResolver always resolves identifiers that point at this instance.
// Remote discovery is only attempted with federation enabled.
func newResolver(cfg *config.Config, b *Backends, logger *slog.Logger, m *searchmetrics.Metrics) (*federation.Resolver, error) {
	local, err := federation.NewLocalResolver(cfg.Federation.BaseURL, b.Identity)
	if err != nil {
		return nil, err
	}
	opts := []federation.Option{
		federation.WithLogger(logger),
		federation.WithMetrics(m),
	}
	if !cfg.Federation.Enabled {
		return federation.NewResolver(local, b.Identity, nil, opts...), nil
	}

	var cache federation.ActorCache
	if rc := b.redisClient(); rc != nil {
		cache = federation.NewRedisActorCache(rc, cfg.Federation.ActorCacheTTL)
	} else {
		cache = federation.NewMemoryActorCache(cfg.Federation.ActorCacheTTL)
	}
	discoverer := federation.NewWebfingerClient(cache,
		federation.WithHTTPClient(federation.PublicHTTPClient(cfg.Federation.RequestTimeout)),
		federation.WithActorWriter(b.Identity),
		federation.WithClientLogger(logger),
	)
	breaker := circuit.New("federation",
		circuit.WithFailureThreshold(cfg.Federation.FailureThreshold),
		circuit.WithCooldown(cfg.Federation.BreakerCooldown),
	)
	opts = append(opts,
		federation.WithBreaker(breaker),
		federation.WithDiscoveryTimeout(2*cfg.Federation.RequestTimeout),
	)

	logger.Info("federation enabled", "base_url", cfg.Federation.BaseURL)
	return federation.NewResolver(local, b.Identity, discoverer, opts...), nil
}
