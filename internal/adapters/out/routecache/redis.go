// Package routecache implements the RouteCache port on top of Redis.
// Routes are stored as JSON lists keyed by the source and destination
// coordinates and expire after a configurable TTL.
package routecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tracker/internal/core/domain/model/kernel"
	"tracker/internal/pkg/errs"

	"github.com/redis/go-redis/v9"
)

const defaultTTL = time.Hour

// RedisRouteCache caches fetched routes in Redis.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// routePoint is the stored representation of a single waypoint.
type routePoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewRedisRouteCache creates a cache backed by the given Redis client.
// A non-positive ttl falls back to one hour.
func NewRedisRouteCache(client *redis.Client, ttl time.Duration) (*RedisRouteCache, error) {
	if client == nil {
		return nil, errs.NewValueIsRequiredError("client")
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}

	return &RedisRouteCache{
		client: client,
		ttl:    ttl,
	}, nil
}

// Get returns the cached route for the leg, if present.
// A missing key is a cache miss, not an error.
func (c *RedisRouteCache) Get(
	ctx context.Context,
	source kernel.GeoPoint,
	destination kernel.GeoPoint,
) ([]kernel.GeoPoint, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(source, destination)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("route cache get: %w", err)
	}

	var stored []routePoint
	if err = json.Unmarshal(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("route cache decode: %w", err)
	}

	route := make([]kernel.GeoPoint, 0, len(stored))
	for _, p := range stored {
		point, pointErr := kernel.NewGeoPoint(p.Lat, p.Lon)
		if pointErr != nil {
			return nil, false, pointErr
		}
		route = append(route, point)
	}

	return route, true, nil
}

// Set stores the route for the leg with the configured TTL.
func (c *RedisRouteCache) Set(
	ctx context.Context,
	source kernel.GeoPoint,
	destination kernel.GeoPoint,
	route []kernel.GeoPoint,
) error {
	stored := make([]routePoint, 0, len(route))
	for _, p := range route {
		stored = append(stored, routePoint{Lat: p.Latitude(), Lon: p.Longitude()})
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("route cache encode: %w", err)
	}

	if err = c.client.Set(ctx, cacheKey(source, destination), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("route cache set: %w", err)
	}

	return nil
}

func cacheKey(source, destination kernel.GeoPoint) string {
	return fmt.Sprintf("route:%.6f,%.6f:%.6f,%.6f",
		source.Latitude(), source.Longitude(),
		destination.Latitude(), destination.Longitude())
}
