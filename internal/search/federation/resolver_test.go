package federation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"usersearch/internal/identity/models"
	"usersearch/internal/identity/store"
	id "usersearch/pkg/domain"
	"usersearch/pkg/platform/circuit"
)

type stubDiscoverer struct {
	mu     sync.Mutex
	calls  [][]string
	result Discovery
	err    error
}

func (s *stubDiscoverer) Discover(_ context.Context, identifiers []string) (Discovery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, identifiers)
	return s.result, s.err
}

func (s *stubDiscoverer) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type ResolverSuite struct {
	suite.Suite
	ctx        context.Context
	store      *store.InMemory
	discoverer *stubDiscoverer
	resolver   *Resolver
}

func TestResolverSuite(t *testing.T) {
	suite.Run(t, new(ResolverSuite))
}

func (s *ResolverSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = store.NewInMemory()
	s.discoverer = &stubDiscoverer{}
	s.resolver = s.newResolver()
}

func (s *ResolverSuite) newResolver(opts ...Option) *Resolver {
	local, err := NewLocalResolver("https://forum.example", s.store)
	s.Require().NoError(err)
	return NewResolver(local, s.store, s.discoverer, opts...)
}

func (s *ResolverSuite) TestKnownHandleResolvesThroughSlugLookup() {
	s.discoverer.result = Discovery{Known: true}
	s.Require().NoError(s.store.PutHandle(s.ctx, "user@remote.example", "42"))

	uids, err := s.resolver.Resolve(s.ctx, "user@remote.example")
	s.Require().NoError(err)
	s.Equal([]id.UID{"42"}, uids)
	s.Equal([][]string{{"user@remote.example"}}, s.discoverer.calls)
}

func (s *ResolverSuite) TestKnownURIPassesQueryThrough() {
	s.discoverer.result = Discovery{Known: true}

	uids, err := s.resolver.Resolve(s.ctx, "https://remote.example/users/bob")
	s.Require().NoError(err)
	s.Equal([]id.UID{"https://remote.example/users/bob"}, uids)
}

func (s *ResolverSuite) TestKnownHandleWithoutSlugYieldsNilID() {
	s.discoverer.result = Discovery{Known: true}

	uids, err := s.resolver.Resolve(s.ctx, "ghost@remote.example")
	s.Require().NoError(err)
	s.Equal([]id.UID{""}, uids)
}

func (s *ResolverSuite) TestDiscoveredActorsMapToIDs() {
	s.discoverer.result = Discovery{Actors: []Actor{
		{ID: "https://remote.example/users/a"},
		{ID: "https://remote.example/users/b"},
	}}

	uids, err := s.resolver.Resolve(s.ctx, "@a@remote.example")
	s.Require().NoError(err)
	s.Equal([]id.UID{"https://remote.example/users/a", "https://remote.example/users/b"}, uids)
	s.Equal([][]string{{"a@remote.example"}}, s.discoverer.calls)
}

func (s *ResolverSuite) TestLocalIdentifierSkipsDiscovery() {
	s.Require().NoError(s.store.Put(s.ctx, &models.Identity{UID: "9", Username: "carol", Userslug: "carol"}))

	uids, err := s.resolver.Resolve(s.ctx, "https://forum.example/user/carol")
	s.Require().NoError(err)
	s.Equal([]id.UID{"9"}, uids)

	uids, err = s.resolver.Resolve(s.ctx, "carol@forum.example")
	s.Require().NoError(err)
	s.Equal([]id.UID{"9"}, uids)
	s.Zero(s.discoverer.callCount())
}

func (s *ResolverSuite) TestPlainTextIsNotResolved() {
	uids, err := s.resolver.Resolve(s.ctx, "alice")
	s.Require().NoError(err)
	s.Empty(uids)
	s.Zero(s.discoverer.callCount())
}

func (s *ResolverSuite) TestDiscoveryErrorsAreAbsorbed() {
	s.discoverer.err = errors.New("remote timed out")

	uids, err := s.resolver.Resolve(s.ctx, "user@remote.example")
	s.Require().NoError(err)
	s.Empty(uids)
}

func (s *ResolverSuite) TestUnresolvedDiscovery() {
	uids, err := s.resolver.Resolve(s.ctx, "user@remote.example")
	s.Require().NoError(err)
	s.Empty(uids)
}

func (s *ResolverSuite) TestWithoutDiscovererOnlyLocalIDsResolve() {
	s.Require().NoError(s.store.Put(s.ctx, &models.Identity{UID: "9", Username: "carol", Userslug: "carol"}))
	local, err := NewLocalResolver("https://forum.example", s.store)
	s.Require().NoError(err)
	resolver := NewResolver(local, s.store, nil)

	uids, err := resolver.Resolve(s.ctx, "https://forum.example/uid/9")
	s.Require().NoError(err)
	s.Equal([]id.UID{"9"}, uids)

	uids, err = resolver.Resolve(s.ctx, "user@remote.example")
	s.Require().NoError(err)
	s.Empty(uids)
}

func (s *ResolverSuite) TestOpenBreakerSkipsDiscovery() {
	s.discoverer.err = errors.New("connection refused")
	breaker := circuit.New("federation", circuit.WithFailureThreshold(2))
	resolver := s.newResolver(WithBreaker(breaker))

	for range 3 {
		uids, err := resolver.Resolve(s.ctx, "user@remote.example")
		s.Require().NoError(err)
		s.Empty(uids)
	}
	s.Equal(2, s.discoverer.callCount())
	s.True(breaker.IsOpen())
}

// contextDiscoverer fails with its context's error once that context ends
// and otherwise reports one actor.
type contextDiscoverer struct {
	block bool
	calls int
	mu    sync.Mutex
}

func (d *contextDiscoverer) Discover(ctx context.Context, identifiers []string) (Discovery, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.block {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return Discovery{}, err
	}
	return Discovery{Actors: []Actor{{ID: "https://remote.example/users/a"}}}, nil
}

func (s *ResolverSuite) TestCallerCancellationDoesNotTripBreaker() {
	discoverer := &contextDiscoverer{}
	breaker := circuit.New("federation", circuit.WithFailureThreshold(1))
	local, err := NewLocalResolver("https://forum.example", s.store)
	s.Require().NoError(err)
	resolver := NewResolver(local, s.store, discoverer, WithBreaker(breaker))

	cancelled, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err = resolver.Resolve(cancelled, "a@remote.example")
	s.Require().NoError(err)
	s.False(breaker.IsOpen())

	uids, err := resolver.Resolve(s.ctx, "a@remote.example")
	s.Require().NoError(err)
	s.Equal([]id.UID{"https://remote.example/users/a"}, uids)
}

func (s *ResolverSuite) TestCancelledDiscoveryIsNotAFailure() {
	s.discoverer.err = context.Canceled
	breaker := circuit.New("federation", circuit.WithFailureThreshold(1))
	resolver := s.newResolver(WithBreaker(breaker))

	for range 2 {
		uids, err := resolver.Resolve(s.ctx, "user@remote.example")
		s.Require().NoError(err)
		s.Empty(uids)
	}
	s.Equal(2, s.discoverer.callCount())
	s.False(breaker.IsOpen())
}

func (s *ResolverSuite) TestSlowDiscoveryTimesOutAndCounts() {
	discoverer := &contextDiscoverer{block: true}
	breaker := circuit.New("federation", circuit.WithFailureThreshold(1))
	local, err := NewLocalResolver("https://forum.example", s.store)
	s.Require().NoError(err)
	resolver := NewResolver(local, s.store, discoverer,
		WithBreaker(breaker),
		WithDiscoveryTimeout(20*time.Millisecond),
	)

	uids, err := resolver.Resolve(s.ctx, "a@remote.example")
	s.Require().NoError(err)
	s.Empty(uids)
	s.True(breaker.IsOpen())
}

func TestResolverPropagatesLocalStoreFailures(t *testing.T) {
	local, err := NewLocalResolver("https://forum.example", brokenSlugs{})
	require.NoError(t, err)
	resolver := NewResolver(local, brokenSlugs{}, &stubDiscoverer{})

	_, err = resolver.Resolve(context.Background(), "https://forum.example/user/alice")
	assert.Error(t, err)
}
