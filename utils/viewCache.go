package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	viewKeyPrefix       = "View:"
	viewGenerationInfix = "gen:"
)

// ViewVersion is the generation of a cached view. Revalidate moves a path to the next one.
type ViewVersion int64

// ViewCache stores rendered views keyed by route path and generation.
// A nil client disables caching: loads miss and writes are dropped.
type ViewCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewViewCache(client *redis.Client, ttl time.Duration) *ViewCache {
	return &ViewCache{client: client, ttl: ttl}
}

// ViewKey is the redis key holding the rendering of path at version.
func ViewKey(path string, version ViewVersion) string {
	return fmt.Sprintf("%s%s#%d", viewKeyPrefix, path, version)
}

func generationKey(path string) string {
	return viewKeyPrefix + viewGenerationInfix + path
}

// Revalidate marks the cached rendering of path stale.
// A render stored under an older version after this call is never loaded.
func (c *ViewCache) Revalidate(ctx context.Context, path string) error {
	if c == nil || c.client == nil {
		return nil
	}
	gen, err := c.client.Incr(ctx, generationKey(path)).Result()
	if err != nil {
		return err
	}
	return c.client.Del(ctx, ViewKey(path, ViewVersion(gen-1))).Err()
}

func (c *ViewCache) currentVersion(ctx context.Context, path string) (ViewVersion, error) {
	gen, err := c.client.Get(ctx, generationKey(path)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return ViewVersion(gen), nil
}

// Load decodes the cached view into dest and reports whether it was present.
// On a miss, pass the returned version to Store once the view is rendered.
func (c *ViewCache) Load(ctx context.Context, path string, dest any) (ViewVersion, bool, error) {
	if c == nil || c.client == nil {
		return 0, false, nil
	}
	version, err := c.currentVersion(ctx, path)
	if err != nil {
		return 0, false, err
	}
	val, err := c.client.Get(ctx, ViewKey(path, version)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return version, false, nil
		}
		return version, false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return version, false, err
	}
	return version, true, nil
}

// Store caches view under the version it was rendered for.
func (c *ViewCache) Store(ctx context.Context, path string, version ViewVersion, view any) error {
	if c == nil || c.client == nil {
		return nil
	}
	b, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, ViewKey(path, version), b, c.ttl).Err()
}
