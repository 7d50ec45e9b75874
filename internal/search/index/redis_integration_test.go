//go:build integration

package index_test

import (
	"context"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/suite"

	"usersearch/internal/search/index"
	id "usersearch/pkg/domain"
	"usersearch/pkg/testutil/containers"
)

type RedisIndexSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	index *index.RedisIndex
}

func TestRedisIndexSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisIndexSuite))
}

func (s *RedisIndexSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.index = index.NewRedisIndex(s.redis.Client)
}

func (s *RedisIndexSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisIndexSuite) add(key string, score float64, members ...string) {
	for _, m := range members {
		s.Require().NoError(s.index.Add(context.Background(), key, score, m))
	}
}

func (s *RedisIndexSuite) TestPrefixSearchMatchesRedisOrdering() {
	s.add(index.SortedKey(index.FieldUsername), 0, "alice:1", "alicia:2", "bob:3")

	uids, err := index.NewPrefixSearcher(s.index).Search(context.Background(), "ali", index.FieldUsername, 0)
	s.Require().NoError(err)
	s.Equal([]id.UID{"1", "2"}, uids)
}

func (s *RedisIndexSuite) TestUnboundedRangeReachesEndOfSet() {
	top := string(utf8.MaxRune)
	s.add(index.SortedKey(index.FieldUsername), 0, top+"a:1", top+top+":2", "zz:3")

	uids, err := index.NewPrefixSearcher(s.index).Search(context.Background(), top, index.FieldUsername, 0)
	s.Require().NoError(err)
	s.ElementsMatch([]id.UID{"1", "2"}, uids)
}

func (s *RedisIndexSuite) TestExistsAndMissingKeys() {
	ctx := context.Background()
	ok, err := s.index.Exists(ctx, index.SortedKey(index.FieldNickname))
	s.Require().NoError(err)
	s.False(ok)

	s.add(index.SortedKey(index.FieldNickname), 0, "ally:2")
	ok, err = s.index.Exists(ctx, index.SortedKey(index.FieldNickname))
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RedisIndexSuite) TestIPSearchScansKeyspace() {
	s.add(index.IPKey("10.0.0.1"), 100, "1")
	s.add(index.IPKey("10.0.0.1"), 300, "2")
	s.add(index.IPKey("10.0.0.12"), 200, "3")
	s.add(index.IPKey("172.16.0.1"), 900, "4")

	uids, err := index.NewIPSearcher(s.index).Search(context.Background(), "10.0.0.1")
	s.Require().NoError(err)
	s.Equal([]id.UID{"2", "3", "1"}, uids)
}
