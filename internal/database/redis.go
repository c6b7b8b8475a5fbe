package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/Eugene-maposa/gweru-link-ups-sub000/internal/config"
	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client
var Ctx = context.Background()

func InitRedis() {
	Redis = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       0,
	})

	_, err := Redis.Ping(Ctx).Result()
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Per-user rate limiting will be disabled.", err)
	} else {
		log.Println("Connected to Redis successfully")
	}
}

// CheckRateLimit enforces a fixed-window counter per user and action.
// Returns true when the caller is still within the limit.
func CheckRateLimit(userID, action string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf("rate_limit:%s:%s", action, userID)
	count, err := Redis.Incr(Ctx, key).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		Redis.Expire(Ctx, key, window)
	}

	if count > int64(limit) {
		return false, nil
	}
	return true, nil
}
