package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Cache is a small read-through cache for hot project views.
type Cache struct {
	client *goredis.Client
	ttl    time.Duration
}

// ErrCacheMiss is returned when the key is absent.
var ErrCacheMiss = errors.New("cache miss")

func NewCache(client *goredis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 60 * time.Second
	}
	return &Cache{client: client, ttl: ttl}
}

func projectKey(projectID int64) string {
	return fmt.Sprintf("cache:project:%d", projectID)
}

// GetProject loads a cached value into dest.
func (c *Cache) GetProject(ctx context.Context, projectID int64, dest any) error {
	data, err := c.client.Get(ctx, projectKey(projectID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// SetProject stores value under the project key with the cache TTL.
func (c *Cache) SetProject(ctx context.Context, projectID int64, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, projectKey(projectID), data, c.ttl).Err()
}

// InvalidateProject drops the cached view after a mutation.
func (c *Cache) InvalidateProject(ctx context.Context, projectID int64) error {
	return c.client.Del(ctx, projectKey(projectID)).Err()
}
