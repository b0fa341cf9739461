package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	config "github.com/homewarden/homewarden/configs"
)

// pingTimeout bounds the startup connectivity check.
const pingTimeout = 5 * time.Second

// NewRedisClient opens the Redis connection backing the durable store. The
// short read/write timeouts come from configuration so one slow store call
// never stalls a request for long.
func NewRedisClient(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		PoolTimeout:  cfg.PoolTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("redis: connect: %w", err)
	}

	return client, nil
}
