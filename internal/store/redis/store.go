package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPageTTL is the default TTL for cached dashboard pages
const DefaultPageTTL = 10 * time.Minute

// Store handles Redis operations for the dashboard page cache
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a new Redis store. A zero ttl uses DefaultPageTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}
	return &Store{
		client: client,
		ttl:    ttl,
	}
}

// Ping checks the connection
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// TTL returns the lifetime given to cached pages
func (s *Store) TTL() time.Duration {
	return s.ttl
}
