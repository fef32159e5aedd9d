//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"credvault/internal/verification/cache"
	id "credvault/pkg/domain"
	"credvault/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *cache.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.cache = cache.NewRedisCache(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestRememberThenLookup() {
	ctx := context.Background()
	certID := id.NewCertificateID()
	requester := id.NewSubjectID()

	hit, err := s.cache.Lookup(ctx, certID, requester)
	s.Require().NoError(err)
	s.False(hit)

	s.Require().NoError(s.cache.Remember(ctx, certID, requester))

	hit, err = s.cache.Lookup(ctx, certID, requester)
	s.Require().NoError(err)
	s.True(hit)

	hit, err = s.cache.Lookup(ctx, certID, id.NewSubjectID())
	s.Require().NoError(err)
	s.False(hit)
}

func (s *RedisCacheSuite) TestEntriesCarryTTL() {
	ctx := context.Background()
	certID := id.NewCertificateID()
	requester := id.NewSubjectID()
	s.Require().NoError(s.cache.Remember(ctx, certID, requester))

	keys, err := s.redis.Client.Keys(ctx, "verification:grant:*").Result()
	s.Require().NoError(err)
	s.Require().Len(keys, 1)

	ttl, err := s.redis.Client.TTL(ctx, keys[0]).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))
	s.LessOrEqual(ttl, time.Minute)
}

func (s *RedisCacheSuite) TestUnreachableServerSurfacesError() {
	opts := *s.redis.Client.Options()
	opts.Addr = "127.0.0.1:1"
	opts.DialTimeout = 100 * time.Millisecond
	client := redis.NewClient(&opts)
	defer client.Close()
	broken := cache.NewRedisCache(client, time.Minute)

	_, err := broken.Lookup(context.Background(), id.NewCertificateID(), id.NewSubjectID())
	s.Error(err)
}
