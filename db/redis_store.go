package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore keeps every blob as a plain string value under prefix+key
type RedisStore struct {
	Client *redis.Client
	Prefix string // Namespace for all keys, e.g. "campus:"
	log    *zap.Logger
}

// NewRedisStore creates a new RedisStore instance
func NewRedisStore(client *redis.Client, prefix string, log *zap.Logger) *RedisStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisStore{
		Client: client,
		Prefix: prefix,
		log:    log,
	}
}

// Helper to generate the namespaced redis key
func (s *RedisStore) redisKey(key string) string {
	return s.Prefix + key
}

// Read fetches the blob stored under key
func (s *RedisStore) Read(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.Client.Get(ctx, s.redisKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		s.log.Error("redis get failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get %s from Redis: %w", key, err)
	}
	return raw, nil
}

// Write replaces the blob stored under key
func (s *RedisStore) Write(ctx context.Context, key string, value []byte) error {
	if err := s.Client.Set(ctx, s.redisKey(key), value, 0).Err(); err != nil {
		s.log.Error("redis set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to set %s in Redis: %w", key, err)
	}
	return nil
}

// RedisOptions holds the connection settings for InitializeRedisClient
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// InitializeRedisClient creates a Redis client and tests the connection
func InitializeRedisClient(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	// Ping Redis to check connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("could not connect to Redis at %s: %w", opts.Addr, err)
	}
	return rdb, nil
}
