package database

import (
	"context"
	"fmt"
	"time"

	"github.com/GoodnessFx/GlowUp/internal/config"
	"github.com/GoodnessFx/GlowUp/internal/logger"
	"github.com/go-redis/redis/v8"
)

// ConnectRedis ouvre un client Redis et vérifie la connexion
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", cfg.Addr, err)
	}

	logger.Success("Connected to Redis at %s", cfg.Addr)
	return client, nil
}
