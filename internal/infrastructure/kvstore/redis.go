package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gomarketplace-cart/pkg/logger"

	"github.com/go-redis/redis/v8"
)

const redisConnectAttempts = 10

// RedisStore keeps values as plain Redis strings.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore accepts either a redis:// URL or a bare "host[:port]" address.
func NewRedisStore(redisAddr string) (*RedisStore, error) {
	if strings.TrimSpace(redisAddr) == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opts, err := redis.ParseURL(redisAddr)
	if err != nil {
		if !strings.Contains(redisAddr, ":") {
			redisAddr += ":6379"
		}
		opts = &redis.Options{
			Addr:         redisAddr,
			MinIdleConns: 1,
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
			PoolSize:     4,
			PoolTimeout:  4 * time.Second,
			IdleTimeout:  180 * time.Second,
		}
	}

	return &RedisStore{client: redis.NewClient(opts)}, nil
}

// Connect pings Redis until it answers, backing off exponentially between
// attempts.
func (r *RedisStore) Connect(ctx context.Context) error {
	log := logger.WithContext(ctx)
	for i := 0; i < redisConnectAttempts; i++ {
		err := r.Ping(ctx)
		if err == nil {
			log.Info().Int("attempt", i+1).Msg("Redis store connected")
			return nil
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("Redis ping failed")

		backoff := time.Duration(100*(1<<uint(i))) * time.Millisecond
		if backoff > 5*time.Second {
			backoff = 5 * time.Second
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("failed to connect to Redis after %d attempts", redisConnectAttempts)
}

func (r *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis GET: %w", err)
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis SET: %w", err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return r.client.Ping(pingCtx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
