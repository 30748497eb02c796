// Package cache implements the best-effort cache-aside layer in front of the
// relational store. Callers check the cache first, fall back to the source of
// truth on a miss, and invalidate affected keys before reporting a mutation
// as successful. The cache is an optimization, never an authority: every
// failure degrades to a miss or a silent no-op.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Well-known cache keys for the portal's derived views.
const (
	AvailableProperties = "properties:available"
	AdminOverview       = "admin:overview"
)

// envelopeVersion marks the current payload layout so the format can evolve
// without a new key namespace.
const envelopeVersion = 1

// opTimeout bounds every round trip to the cache service. A slow cache must
// degrade to a miss rather than stall the request.
const opTimeout = 1 * time.Second

// Store is the cache-aside capability. Get reports whether key was present
// and, if so, decodes the cached value into dest. Set and Invalidate never
// fail from the caller's point of view.
type Store interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Invalidate(ctx context.Context, keys ...string)
}

// envelope wraps every cached value so decoding can reject stale layouts.
type envelope struct {
	V       int             `json:"v"`
	SavedAt time.Time       `json:"saved_at"`
	Data    json.RawMessage `json:"data"`
}

// Redis is the real Store backed by a Redis client. Keys are namespaced
// with a prefix so the portal can share an instance with other services.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

// NewRedis wraps an established Redis client.
func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(k string) string { return r.prefix + ":" + k }

// Get fetches and decodes the envelope stored under key. Any error behaves
// as a miss, whether the service is unreachable, the payload is corrupt, or
// the envelope version is unknown.
func (r *Redis) Get(ctx context.Context, key string, dest any) bool {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	bs, err := r.rdb.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("cache: get %s failed: %v", key, err)
		}
		return false
	}
	var env envelope
	if err := json.Unmarshal(bs, &env); err != nil || env.V != envelopeVersion {
		return false
	}
	if err := json.Unmarshal(env.Data, dest); err != nil {
		return false
	}
	return true
}

// Set stores value under key with the given TTL. Failures are logged only.
func (r *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("cache: marshal %s failed: %v", key, err)
		return
	}
	payload, err := json.Marshal(envelope{V: envelopeVersion, SavedAt: time.Now().UTC(), Data: data})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := r.rdb.SetEx(ctx, r.key(key), payload, ttl).Err(); err != nil {
		log.Printf("cache: set %s failed: %v", key, err)
	}
}

// Invalidate deletes the given keys. Failures are logged only; the worst
// case is a stale read until the TTL expires.
func (r *Redis) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := r.rdb.Del(ctx, full...).Err(); err != nil {
		log.Printf("cache: invalidate %v failed: %v", keys, err)
	}
}

// Noop is the Store used when no cache service is configured. Get always
// misses; Set and Invalidate do nothing. Selecting it at startup keeps the
// rest of the system from ever branching on cache availability.
type Noop struct{}

func (Noop) Get(context.Context, string, any) bool           { return false }
func (Noop) Set(context.Context, string, any, time.Duration) {}
func (Noop) Invalidate(context.Context, ...string)           {}

// Select returns the Redis store when enabled and a client is available,
// and the no-op store otherwise.
func Select(enabled bool, rdb *redis.Client, prefix string) Store {
	if !enabled || rdb == nil {
		return Noop{}
	}
	return NewRedis(rdb, prefix)
}
