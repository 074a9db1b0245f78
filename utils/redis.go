package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/amaturano/event-management/config"
	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// InitRedis connects and pings Redis; on failure Redis stays nil.
func InitRedis(cfg *config.Config) error {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword, // Empty if no password
		DB:       int(cfg.RedisDB),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}

	Redis = client
	log.Printf("✅ Redis connected at %s", cfg.RedisAddr)
	return nil
}
