package reroute

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jdalgard/pageplan/pkg/observability"
	"github.com/jdalgard/pageplan/pkg/segment"
)

// redisKeyPrefix namespaces reroute entries in a shared Redis instance.
const redisKeyPrefix = "reroute:"

// RedisStore is a Redis-backed reroute store for server deployments where the
// driver process may restart mid-session. Expiry uses Redis's native TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig configures a RedisStore.
type RedisConfig struct {
	Addr     string        // host:port
	Password string        // optional
	DB       int           // optional database index
	TTL      time.Duration // defaults to DefaultTTL
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}

	return &RedisStore{client: client, ttl: cfg.TTL}, nil
}

// redisKey formats "reroute:<component>:<segment>".
func redisKey(key segment.Key) string {
	return redisKeyPrefix + key.Component + ":" + key.Segment
}

// Resolve returns the remembered target region for a segment.
func (s *RedisStore) Resolve(ctx context.Context, key segment.Key) (string, bool, error) {
	val, err := s.client.Get(ctx, redisKey(key)).Result()
	if err == redis.Nil {
		observability.Cache().OnMiss(ctx, key.String())
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolve %s: %w", key, err)
	}

	observability.Cache().OnHit(ctx, key.String())
	return val, true, nil
}

// Remember replaces the entry for key with the store's TTL. An empty
// regionKey clears the entry.
func (s *RedisStore) Remember(ctx context.Context, key segment.Key, regionKey string) error {
	if regionKey == "" {
		return s.Clear(ctx, key)
	}

	if err := s.client.Set(ctx, redisKey(key), regionKey, s.ttl).Err(); err != nil {
		return fmt.Errorf("remember %s: %w", key, err)
	}
	observability.Cache().OnRemember(ctx, key.String(), regionKey)
	return nil
}

// Clear removes the entry for key.
func (s *RedisStore) Clear(ctx context.Context, key segment.Key) error {
	if err := s.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("clear %s: %w", key, err)
	}
	observability.Cache().OnClear(ctx, key.String())
	return nil
}

// Snapshot scans the reroute namespace. Entry timestamps are approximated
// from the remaining TTL; this is diagnostics output only.
func (s *RedisStore) Snapshot(ctx context.Context) ([]Entry, error) {
	var out []Entry

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		val, err := s.client.Get(ctx, full).Result()
		if err == redis.Nil {
			continue // expired between scan and get
		}
		if err != nil {
			return nil, fmt.Errorf("snapshot get %s: %w", full, err)
		}

		remaining, err := s.client.TTL(ctx, full).Result()
		if err != nil {
			return nil, fmt.Errorf("snapshot ttl %s: %w", full, err)
		}

		key, ok := parseRedisKey(full)
		if !ok {
			continue
		}
		out = append(out, Entry{
			Key:       key,
			Region:    val,
			UpdatedAt: time.Now().Add(remaining - s.ttl),
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("snapshot scan: %w", err)
	}
	return out, nil
}

// parseRedisKey splits "reroute:<component>:<segment>" back into a segment key.
// Component IDs cannot contain colons (validated at decompose time), so the
// first colon after the prefix is the separator.
func parseRedisKey(full string) (segment.Key, bool) {
	rest := full[len(redisKeyPrefix):]
	for i := 0; i < len(rest); i++ {
		if rest[i] == ':' {
			return segment.Key{Component: rest[:i], Segment: rest[i+1:]}, true
		}
	}
	return segment.Key{}, false
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
