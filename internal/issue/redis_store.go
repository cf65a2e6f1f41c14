package issue

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore is a Redis-backed DismissedStore. Fingerprints live in one set
// per editing session with a TTL matching the session lifetime, so they
// survive an API restart mid-session but never outlive the session itself.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore connects to Redis and returns a store scoped to sessionID.
func NewRedisStore(redisURL, sessionID string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, sessionID, ttl), nil
}

// NewRedisStoreWithClient builds a store from an existing Redis client.
// The client is shared and the caller owns its lifecycle.
func NewRedisStoreWithClient(client *redis.Client, sessionID string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		client: client,
		key:    "dismissed:" + sessionID,
		ttl:    ttl,
	}
}

func (s *RedisStore) Add(ctx context.Context, fingerprint string) error {
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, s.key, fingerprint)
	pipe.Expire(ctx, s.key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add fingerprint: %w", err)
	}
	return nil
}

func (s *RedisStore) Contains(ctx context.Context, fingerprint string) (bool, error) {
	member, err := s.client.SIsMember(ctx, s.key, fingerprint).Result()
	if err != nil {
		return false, fmt.Errorf("lookup fingerprint: %w", err)
	}
	return member, nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear fingerprints: %w", err)
	}
	return nil
}
