package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "credvault/pkg/domain"
)

// RedisCache stores approved grants as keys with a TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs a Redis-backed grant cache.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Lookup reports whether an approved grant is cached for the pair.
// A missing key is a miss, not an error.
func (c *RedisCache) Lookup(ctx context.Context, certID id.CertificateID, requesterID id.SubjectID) (bool, error) {
	err := c.client.Get(ctx, grantKey(certID, requesterID)).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("lookup grant cache: %w", err)
	}
	return true, nil
}

// Remember records an approved grant for the pair.
func (c *RedisCache) Remember(ctx context.Context, certID id.CertificateID, requesterID id.SubjectID) error {
	if err := c.client.Set(ctx, grantKey(certID, requesterID), "1", c.ttl).Err(); err != nil {
		return fmt.Errorf("save grant cache: %w", err)
	}
	return nil
}
