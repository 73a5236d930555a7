package cache

import (
	"context"
	"log"

	"github.com/redis/go-redis/v9"

	"prep-service/internal/config"
)

// NewRedisClient builds a client from config. Connectivity problems are
// logged, not fatal: every cache consumer falls back to its loader.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Printf("redis ping failed: %v", err)
	}
	return client
}
