//go:build integration

package groups_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"usersearch/internal/identity/groups"
	id "usersearch/pkg/domain"
	"usersearch/pkg/testutil/containers"
)

type RedisOracleSuite struct {
	suite.Suite
	redis  *containers.RedisContainer
	oracle *groups.Redis
}

func TestRedisOracleSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisOracleSuite))
}

func (s *RedisOracleSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.oracle = groups.NewRedis(s.redis.Client)
}

func (s *RedisOracleSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisOracleSuite) TestIsMembersIsPositional() {
	ctx := context.Background()
	s.Require().NoError(s.oracle.Join(ctx, "mods", "2", 1000))
	s.Require().NoError(s.oracle.Join(ctx, "mods", "https://remote.example/u/x", 1000))

	got, err := s.oracle.IsMembers(ctx, []id.UID{"1", "2", "https://remote.example/u/x"}, "mods")
	s.Require().NoError(err)
	s.Equal([]bool{false, true, true}, got)
}

func (s *RedisOracleSuite) TestEmptyInput() {
	got, err := s.oracle.IsMembers(context.Background(), nil, "mods")
	s.Require().NoError(err)
	s.Empty(got)
}
