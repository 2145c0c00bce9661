package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/morphcute/mlbb-gifters/internal/config"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis creates a redis client for the session store and verifies the
// connection with a ping.
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
