package redis

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type IRedis interface {
	Publish(ctx context.Context, channel string, message []byte) error
	Close() error
}

type redisClient struct {
	client *redis.Client
}

// New connects using REDIS_ADDRESS, REDIS_PASSWORD and REDIS_DB. It returns
// nil when no address is configured so callers can skip the sink.
func New() IRedis {
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		logrus.Info("REDIS_ADDRESS not set, event publishing to Redis disabled")
		return nil
	}

	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisPassword := os.Getenv("REDIS_PASSWORD")

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func (r *redisClient) Publish(ctx context.Context, channel string, message []byte) error {
	receivers, err := r.client.Publish(ctx, channel, message).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error publishing to channel %s: %v", channel, err))
		return err
	}
	logrus.Debug(fmt.Sprintf("Published to channel %s, %d receivers", channel, receivers))
	return nil
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
