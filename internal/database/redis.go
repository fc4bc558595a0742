package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var Redis *redis.Client

func ConnectRedis(redisURL string) error {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("unable to parse redis url: %w", err)
	}

	Redis = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("unable to ping redis: %w", err)
	}

	logrus.Info("connected to Redis")
	return nil
}

func CloseRedis() {
	if Redis != nil {
		if err := Redis.Close(); err != nil {
			logrus.WithError(err).Warn("close redis")
		}
	}
}
