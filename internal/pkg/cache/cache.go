package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/FelixKnapp/ShopFox/internal/pkg/env"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

// NewClient connects to the redis/Dragonfly cache server. A failed ping is
// logged but not fatal: the limiter and the sweep lock degrade gracefully.
func NewClient() *redis.Client {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: "",
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Warnf("[Cache] Could not connect to cache server: %v", err)
	}

	return client
}

// AcquireLock takes a best-effort distributed lock via SETNX. Returns true
// when this process holds the lock for ttl.
func AcquireLock(ctx context.Context, client *redis.Client, key string, ttl time.Duration) bool {
	ok, err := client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		// Cache unavailable: proceed without the lock rather than stall
		// reconciliation. Redriving events is idempotent anyway.
		log.Warnf("[Cache] lock %s unavailable: %v", key, err)
		return true
	}
	return ok
}

// ReleaseLock drops a previously acquired lock.
func ReleaseLock(ctx context.Context, client *redis.Client, key string) {
	if err := client.Del(ctx, key).Err(); err != nil {
		log.Warnf("[Cache] releasing lock %s failed: %v", key, err)
	}
}
