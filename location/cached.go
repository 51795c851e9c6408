package location

import (
	"context"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheKey struct {
	lat    float64
	lon    float64
	radius int
}

type ttlEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// ttlCache is a size bounded LRU where entries also expire after a fixed duration. A zero
// ttl disables expiration.
type ttlCache[V any] struct {
	cache *lru.Cache[cacheKey, ttlEntry[V]]
	ttl   time.Duration
	now   func() time.Time
}

func newTTLCache[V any](size int, ttl time.Duration, now func() time.Time) (*ttlCache[V], error) {
	c, err := lru.New[cacheKey, ttlEntry[V]](size)
	if err != nil {
		return nil, err
	}
	return &ttlCache[V]{cache: c, ttl: ttl, now: now}, nil
}

func (c *ttlCache[V]) get(key cacheKey) (V, bool) {
	entry, ok := c.cache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	if c.ttl > 0 && c.now().After(entry.expiresAt) {
		c.cache.Remove(key)
		var zero V
		return zero, false
	}
	return entry.value, true
}

func (c *ttlCache[V]) set(key cacheKey, val V) {
	var expiresAt time.Time
	if c.ttl > 0 {
		expiresAt = c.now().Add(c.ttl)
	}
	c.cache.Add(key, ttlEntry[V]{value: val, expiresAt: expiresAt})
}

// CacheStats reports hit and miss counts across all three signals
type CacheStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// Cached memoizes successful lookups of the wrapped provider. Failures are never cached.
type Cached struct {
	next Provider

	businesses   *ttlCache[Businesses]
	traffic      *ttlCache[Traffic]
	demographics *ttlCache[Demographics]

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewCached wraps a provider with per signal LRU caches holding up to size coordinates
// for at most ttl.
func NewCached(next Provider, size int, ttl time.Duration) (*Cached, error) {
	return newCached(next, size, ttl, time.Now)
}

func newCached(next Provider, size int, ttl time.Duration, now func() time.Time) (*Cached, error) {
	b, err := newTTLCache[Businesses](size, ttl, now)
	if err != nil {
		return nil, err
	}
	t, err := newTTLCache[Traffic](size, ttl, now)
	if err != nil {
		return nil, err
	}
	d, err := newTTLCache[Demographics](size, ttl, now)
	if err != nil {
		return nil, err
	}
	return &Cached{
		next:         next,
		businesses:   b,
		traffic:      t,
		demographics: d,
	}, nil
}

func lookup[V any](c *Cached, cache *ttlCache[V], key cacheKey, fetch func() (V, error)) (V, error) {
	if val, ok := cache.get(key); ok {
		c.hits.Add(1)
		return val, nil
	}
	c.misses.Add(1)

	val, err := fetch()
	if err != nil {
		return val, err
	}
	cache.set(key, val)
	return val, nil
}

func (c *Cached) NearbyBusinesses(ctx context.Context, lat, lon float64, radius int) (Businesses, error) {
	key := cacheKey{lat: lat, lon: lon, radius: radius}
	return lookup(c, c.businesses, key, func() (Businesses, error) {
		return c.next.NearbyBusinesses(ctx, lat, lon, radius)
	})
}

func (c *Cached) TrafficAnalytics(ctx context.Context, lat, lon float64) (Traffic, error) {
	key := cacheKey{lat: lat, lon: lon}
	return lookup(c, c.traffic, key, func() (Traffic, error) {
		return c.next.TrafficAnalytics(ctx, lat, lon)
	})
}

func (c *Cached) Demographics(ctx context.Context, lat, lon float64) (Demographics, error) {
	key := cacheKey{lat: lat, lon: lon}
	return lookup(c, c.demographics, key, func() (Demographics, error) {
		return c.next.Demographics(ctx, lat, lon)
	})
}

// Stats returns the cache hit and miss counters
func (c *Cached) Stats() CacheStats {
	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
	}
}

// Purge drops every cached entry
func (c *Cached) Purge() {
	c.businesses.cache.Purge()
	c.traffic.cache.Purge()
	c.demographics.cache.Purge()
}
