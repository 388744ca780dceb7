package kvstore

import (
	"context"
	"fmt"

	"gomarketplace-cart/config"
	"gomarketplace-cart/pkg/kvstore"
)

// Open builds the store selected by cfg.StoreDriver.
func Open(ctx context.Context, cfg *config.Config) (kvstore.Store, error) {
	switch cfg.StoreDriver {
	case kvstore.DriverMemory:
		return NewMemoryStore(), nil
	case kvstore.DriverSQLite:
		return OpenSQLite(cfg.StoreSQLitePath)
	case kvstore.DriverRedis:
		store, err := NewRedisStore(cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		if err := store.Connect(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	case kvstore.DriverPostgres:
		return NewPostgresStore(ctx, PostgresPoolConfig{
			DSN:             cfg.DBUrl,
			MaxConns:        cfg.DBMaxConns,
			MinConns:        cfg.DBMinConns,
			MaxConnIdleTime: cfg.DBMaxConnIdleTime,
		})
	case kvstore.DriverS3:
		return NewS3Store(ctx, S3Config{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			Bucket:          cfg.S3Bucket,
			Prefix:          cfg.S3Prefix,
			AccessKeyID:     cfg.S3AccessKeyID,
			AccessKeySecret: cfg.S3AccessKeySecret,
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
