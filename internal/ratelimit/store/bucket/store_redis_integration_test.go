//go:build integration

package bucket_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"usersearch/internal/ratelimit/models"
	"usersearch/internal/ratelimit/store/bucket"
	"usersearch/pkg/testutil/containers"
)

type RedisBucketSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.Redis
}

func TestRedisBucketSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisBucketSuite))
}

func (s *RedisBucketSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = bucket.NewRedis(s.redis.Client)
}

func (s *RedisBucketSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisBucketSuite) TestAllowsUpToLimit() {
	ctx := context.Background()
	limit := models.Limit{Requests: 3, Window: time.Minute}
	key := models.NewKey("search", models.SubjectIP, "10.0.0.1")

	for i := range limit.Requests {
		result, err := s.store.Allow(ctx, key, limit)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(limit.Requests-i-1, result.Remaining)
	}

	result, err := s.store.Allow(ctx, key, limit)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Positive(result.RetryAfter)

	ttl, err := s.redis.Client.PTTL(ctx, key).Result()
	s.Require().NoError(err)
	s.Positive(ttl)
}

func (s *RedisBucketSuite) TestReset() {
	ctx := context.Background()
	limit := models.Limit{Requests: 1, Window: time.Minute}

	_, err := s.store.Allow(ctx, "k", limit)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Reset(ctx, "k"))

	result, err := s.store.Allow(ctx, "k", limit)
	s.Require().NoError(err)
	s.True(result.Allowed)
}
