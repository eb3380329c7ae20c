package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// geoKeyPrefix is the Redis key prefix for cached geolocation lookups.
	geoKeyPrefix = "geo:ip:"

	// DefaultGeoTTL is the TTL for cached geolocation results. IP-to-location
	// mappings move slowly, so a day of staleness is acceptable.
	DefaultGeoTTL = 24 * time.Hour
)

// ErrCacheMiss is returned when a key is not present in the cache.
var ErrCacheMiss = errors.New("cache miss")

// GetLocation retrieves a cached geolocation string for an IP address.
// Returns ErrCacheMiss if not found.
func (c *Cache) GetLocation(ctx context.Context, ip string) (string, error) {
	result, err := c.client.Get(ctx, geoKeyPrefix+hashIP(ip)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", fmt.Errorf("redis get failed: %w", err)
	}

	return result, nil
}

// SetLocation caches a geolocation string for an IP address.
func (c *Cache) SetLocation(ctx context.Context, ip, location string) error {
	err := c.client.Set(ctx, geoKeyPrefix+hashIP(ip), location, DefaultGeoTTL).Err()
	if err != nil {
		return fmt.Errorf("failed to cache location: %w", err)
	}

	return nil
}
