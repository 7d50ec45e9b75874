package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"usersearch/internal/identity/models"
	"usersearch/internal/search/filters"
	"usersearch/internal/search/hooks"
	"usersearch/internal/search/index"
	"usersearch/internal/search/metrics"
	id "usersearch/pkg/domain"
	dErrors "usersearch/pkg/domain-errors"
	audit "usersearch/pkg/platform/audit"
	platformstrings "usersearch/pkg/platform/strings"
	"usersearch/pkg/requestcontext"
)

const defaultResultsPerPage = 50

// federatedFields maps local name fields to their federated counterparts.
var federatedFields = map[string]string{
	index.FieldUsername: index.FieldActorPreferredUsername,
	index.FieldFullname: index.FieldActorName,
}

// Config carries the search settings threaded in from configuration.
type Config struct {
	ResultsPerPage    int
	FederationEnabled bool
}

// Service runs identity searches end to end.
type Service struct {
	strategy Strategy
	ip       IPSearcher
	pipeline FilterPipeline
	records  RecordStore
	resolver RemoteResolver
	hooks    HookRunner
	auditor  Auditor
	cfg      Config
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithResolver enables remote resolution of handles and actor URIs.
func WithResolver(r RemoteResolver) Option {
	return func(s *Service) {
		s.resolver = r
	}
}

func WithHooks(h HookRunner) Option {
	return func(s *Service) {
		s.hooks = h
	}
}

// WithAuditor records ip and uid lookups.
func WithAuditor(a Auditor) Option {
	return func(s *Service) {
		s.auditor = a
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// New constructs a Service. strategy is the default fallback search.
func New(strategy Strategy, ip IPSearcher, pipeline FilterPipeline, records RecordStore, cfg Config, opts ...Option) *Service {
	if cfg.ResultsPerPage <= 0 {
		cfg.ResultsPerPage = defaultResultsPerPage
	}
	s := &Service{
		strategy: strategy,
		ip:       ip,
		pipeline: pipeline,
		records:  records,
		cfg:      cfg,
		logger:   slog.Default(),
		tracer:   otel.Tracer("usersearch/search"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search resolves q into a page of identities. Empty or unmatched queries
// yield an empty result; only index, store and hook failures are errors.
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	n := s.normalize(q)
	start := time.Now()

	ctx, span := s.tracer.Start(ctx, "search",
		trace.WithAttributes(
			attribute.String("search.by", n.SearchBy),
			attribute.Int("search.page", n.Page),
		))
	defer span.End()

	result, err := s.search(ctx, n, start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		s.logger.ErrorContext(ctx, "search failed", "search_by", n.SearchBy, "error", err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("search.matches", result.MatchCount))
	s.audit(ctx, n, result.MatchCount)
	s.metrics.ObserveSearch(n.SearchBy, start, result.MatchCount)
	return result, nil
}

func (s *Service) search(ctx context.Context, q normalizedQuery, start time.Time) (*Result, error) {
	uids, err := s.dispatch(ctx, q)
	if err != nil {
		return nil, wrap(err, "failed to search")
	}
	if len(uids) == 0 {
		if uids, err = s.fallback(ctx, q); err != nil {
			return nil, wrap(err, "failed to search index")
		}
	}

	endStage := s.stage(ctx, "filter")
	uids, err = s.pipeline.Apply(ctx, uids, filters.Options{
		Filters:       q.Filters,
		GroupName:     q.GroupName,
		SortBy:        q.SortBy,
		SortDirection: q.SortDirection,
	})
	endStage()
	if err != nil {
		return nil, wrap(err, "failed to filter results")
	}
	uids = s.bound(uids, q.HardCap)

	if s.hooks != nil {
		payload, err := s.hooks.Fire(ctx, hooks.Payload{UIDs: uids, UID: q.Requester})
		if err != nil {
			return nil, wrap(err, "search hook failed")
		}
		uids = s.bound(payload.UIDs, q.HardCap)
	}

	page := uids
	if q.paginate {
		page = paginate(uids, q.Page, q.pageSize)
	}

	endStage = s.stage(ctx, "hydrate")
	users, err := s.hydrate(ctx, page, q.Requester)
	endStage()
	if err != nil {
		return nil, wrap(err, "failed to load users")
	}

	result := &Result{
		MatchCount: len(uids),
		Users:      users,
	}
	if q.paginate {
		pages := pageCount(len(uids), q.pageSize)
		result.PageCount = &pages
	}
	result.Timing = formatTiming(time.Since(start))
	return result, nil
}

func (s *Service) dispatch(ctx context.Context, q normalizedQuery) ([]id.UID, error) {
	switch q.SearchBy {
	case SearchByIP:
		defer s.stage(ctx, "ip")()
		return s.ip.Search(ctx, q.Text)
	case SearchByUID:
		return []id.UID{id.UID(q.Text)}, nil
	default:
		if q.Strategy != nil || q.Requester == "" || s.resolver == nil {
			return nil, nil
		}
		defer s.stage(ctx, "remote")()
		return s.resolver.Resolve(ctx, q.Text)
	}
}

// fallback runs the active strategy on the primary field and, with
// federation on, on the mapped federated field. Results are concatenated;
// duplicates are removed later.
func (s *Service) fallback(ctx context.Context, q normalizedQuery) ([]id.UID, error) {
	defer s.stage(ctx, "fallback")()

	strategy := s.strategy
	if q.Strategy != nil {
		strategy = q.Strategy
	}

	s.metrics.IncrementFallback(q.SearchBy)
	uids, err := strategy.Search(ctx, q.Text, q.SearchBy, q.HardCap)
	if err != nil {
		return nil, err
	}

	mapped, ok := federatedFields[q.SearchBy]
	if !s.cfg.FederationEnabled || !ok {
		return uids, nil
	}
	s.metrics.IncrementFallback(mapped)
	more, err := strategy.Search(ctx, q.Text, mapped, q.HardCap)
	if err != nil {
		return nil, err
	}
	return append(uids, more...), nil
}

// bound dedupes uids and applies the hard cap.
func (s *Service) bound(uids []id.UID, hardCap int) []id.UID {
	uids = platformstrings.Dedupe(uids)
	if hardCap > 0 && len(uids) > hardCap {
		uids = uids[:hardCap]
	}
	return uids
}

// hydrate loads records and the requester's block list concurrently, marks
// blocked records when the list is non-empty, and drops records that are
// missing or carry an invalid id.
func (s *Service) hydrate(ctx context.Context, uids []id.UID, requester id.UID) ([]*models.Identity, error) {
	var (
		records []*models.Identity
		blocked []id.UID
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		records, err = s.records.FullRecords(gctx, uids)
		return err
	})
	if requester != "" {
		g.Go(func() error {
			var err error
			blocked, err = s.records.BlockedUIDs(gctx, requester)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	users := make([]*models.Identity, 0, len(records))
	for _, rec := range records {
		if rec == nil || !rec.UID.Valid() {
			continue
		}
		if len(blocked) > 0 {
			isBlocked := slices.Contains(blocked, rec.UID)
			rec.IsBlocked = &isBlocked
		}
		users = append(users, rec)
	}
	return users, nil
}

// audit records ip and uid lookups once they have succeeded.
func (s *Service) audit(ctx context.Context, q normalizedQuery, matches int) {
	if s.auditor == nil {
		return
	}
	var action audit.Action
	switch q.SearchBy {
	case SearchByIP:
		action = audit.ActionIPSearch
	case SearchByUID:
		action = audit.ActionUIDLookup
	default:
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Action:    action,
		Requester: q.Requester,
		Subject:   q.Text,
		Matches:   matches,
		IP:        requestcontext.ClientIP(ctx),
		RequestID: requestcontext.RequestID(ctx),
	})
}

// stage opens a child span and returns the func that closes it and records
// the stage latency.
func (s *Service) stage(ctx context.Context, name string) func() {
	start := time.Now()
	_, span := s.tracer.Start(ctx, "search."+name)
	return func() {
		span.End()
		s.metrics.ObserveStage(name, start)
	}
}

func wrap(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "search timed out")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
