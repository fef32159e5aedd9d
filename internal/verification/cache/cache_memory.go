package cache

import (
	"context"
	"sync"
	"time"

	id "credvault/pkg/domain"
)

// InMemoryCache keeps approved grants in a map with TTL expiration.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

func NewInMemoryCache(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *InMemoryCache) Lookup(_ context.Context, certID id.CertificateID, requesterID id.SubjectID) (bool, error) {
	key := grantKey(certID, requesterID)
	c.mu.RLock()
	storedAt, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if c.now().Sub(storedAt) >= c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (c *InMemoryCache) Remember(_ context.Context, certID id.CertificateID, requesterID id.SubjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[grantKey(certID, requesterID)] = c.now()
	return nil
}
