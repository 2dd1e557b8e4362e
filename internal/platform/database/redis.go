package database

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/media-diary-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// OpenRedis 初始化与Redis数据库的连接，并验证其可用性。
func OpenRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("无法连接到Redis: %w", err)
	}

	fmt.Println("Redis 连接成功！")
	return rdb, nil
}
