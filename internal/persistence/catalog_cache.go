package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jeswin28/lms-backend/internal/domain"
)

const catalogKey = "catalog:approved"

// ErrCacheMiss is returned when no cached catalog is available.
var ErrCacheMiss = errors.New("catalog cache miss")

// CatalogCache keeps the approved-course catalog in Redis. Approvals and
// enrollments invalidate it; readers fall back to Postgres on a miss.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache builds a cache over the shared Redis client. A nil client
// disables caching; every lookup then misses.
func NewCatalogCache(r *Redis, ttl time.Duration) *CatalogCache {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// Get returns the cached catalog or ErrCacheMiss.
func (c *CatalogCache) Get(ctx context.Context) ([]domain.Course, error) {
	if c == nil || c.client == nil {
		return nil, ErrCacheMiss
	}
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	var courses []domain.Course
	if err := json.Unmarshal(raw, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// Set stores the catalog with the configured TTL.
func (c *CatalogCache) Set(ctx context.Context, courses []domain.Course) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(courses)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogKey, raw, c.ttl).Err()
}

// Invalidate drops the cached catalog.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Del(ctx, catalogKey).Err()
}
