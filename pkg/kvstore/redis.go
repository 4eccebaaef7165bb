package kvstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the Redis connection used by RedisStore and RedisFlash.
type RedisConfig struct {
	ConnectionURL  string        `env:"AUTH_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RetryAttempts  int           `env:"AUTH_REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"AUTH_REDIS_RETRY_INTERVAL" envDefault:"5s"`
	ConnectTimeout time.Duration `env:"AUTH_REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
	Namespace      string        `env:"AUTH_REDIS_NAMESPACE" envDefault:"authkit"`
}

// Connect establishes a connection to a Redis server using the provided
// configuration, retrying up to RetryAttempts times with RetryInterval
// between attempts.
func Connect(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	opt, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseRedisConnString, err)
	}

	for i := 0; i < cfg.RetryAttempts; i++ {
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err == nil {
			return client, nil
		}
		_ = client.Close()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrRedisNotReady, ctx.Err())
		case <-time.After(cfg.RetryInterval):
		}
	}

	return nil, ErrRedisNotReady
}

// RedisStore implements Store on top of a Redis client. Useful when the
// hosting client runs server-side (SSR, BFF) and session state must be
// shared across instances.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore creates a Redis-backed store. Keys are prefixed with the
// namespace to keep session keys isolated from other users of the database.
func NewRedisStore(client *redis.Client, namespace string) *RedisStore {
	if namespace == "" {
		namespace = "authkit"
	}
	return &RedisStore{client: client, namespace: namespace}
}

func (r *RedisStore) key(key string) string {
	return r.namespace + ":" + key
}

// Get retrieves the value for a key.
func (r *RedisStore) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	value, err := r.client.Get(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

// Set stores a value under a key without expiry.
func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return r.client.Set(ctx, r.key(key), value, 0).Err()
}

// Remove deletes a key.
func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return r.client.Del(ctx, r.key(key)).Err()
}

// RedisFlash implements Flash on top of a Redis client using GETDEL, so the
// read-once guarantee holds across processes.
type RedisFlash struct {
	client    *redis.Client
	namespace string
}

// NewRedisFlash creates a Redis-backed read-once store.
func NewRedisFlash(client *redis.Client, namespace string) *RedisFlash {
	if namespace == "" {
		namespace = "authkit"
	}
	return &RedisFlash{client: client, namespace: namespace}
}

func (r *RedisFlash) key(key string) string {
	return r.namespace + ":flash:" + key
}

// Put stores a value with a TTL.
func (r *RedisFlash) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if key == "" {
		return ErrEmptyKey
	}
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

// Take retrieves and removes the value atomically.
func (r *RedisFlash) Take(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	value, err := r.client.GetDel(ctx, r.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", err
	}
	return value, nil
}

// Compile-time interface assertions
var (
	_ Store = (*RedisStore)(nil)
	_ Flash = (*RedisFlash)(nil)
)
