// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"floreria/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient is the generic cache client.
	CacheClient *redis.Client
	// PubSubClient is the dedicated client for realtime invalidation pub/sub.
	PubSubClient *redis.Client
)

// InitCache initializes the generic Redis cache client (using DB from AppConfig for general caching).
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitPubSub initializes the Redis client carrying the invalidation topics.
func InitPubSub() {
	PubSubClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisPubSubDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := PubSubClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (PubSub): %v", err)
	}
}

// GetPubSubClient returns the Redis client for realtime invalidation.
func GetPubSubClient() *redis.Client {
	if PubSubClient == nil {
		InitPubSub()
	}
	return PubSubClient
}

// InitRedis initializes all Redis clients at startup.
func InitRedis() {
	InitCache()
	InitPubSub()
}
