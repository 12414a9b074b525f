package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheHelper provides JSON get/set over one key prefix. All operations are
// no-ops when redis is not configured.
type CacheHelper struct {
	client *redis.Client
	prefix string
}

func NewCacheHelper(client *redis.Client, prefix string) *CacheHelper {
	return &CacheHelper{client: client, prefix: prefix}
}

func (c *CacheHelper) key(suffix string) string {
	return c.prefix + suffix
}

// Get unmarshals the cached value into dest, reporting whether the key was
// present.
func (c *CacheHelper) Get(ctx context.Context, suffix string, dest interface{}) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, c.key(suffix)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get failed: %w", err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("cache decode failed: %w", err)
	}
	return true, nil
}

func (c *CacheHelper) Set(ctx context.Context, suffix string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(suffix), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set failed: %w", err)
	}
	return nil
}

func (c *CacheHelper) Delete(ctx context.Context, suffix string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.key(suffix)).Err()
}
