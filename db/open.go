package db

import (
	"context"
	"fmt"

	"campus-records-go/config"
	"go.uber.org/zap"
)

// Open builds the RecordStore selected by cfg.StoreBackend.
// The returned close function releases the backend's resources.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (RecordStore, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Info("using in-memory record store")
		return NewMemoryStore(), func() error { return nil }, nil

	case config.BackendRedis:
		client, err := InitializeRedisClient(ctx, RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to Redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
		return NewRedisStore(client, cfg.RedisKeyPrefix, log), client.Close, nil

	case config.BackendBolt:
		store, err := OpenBolt(cfg.BoltPath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("opened bolt record store", zap.String("path", cfg.BoltPath))
		return store, store.Close, nil

	case config.BackendSQLite:
		store, err := OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		log.Info("opened sqlite record store", zap.String("path", cfg.SQLitePath))
		return store, store.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
