package redis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var (
	ErrCacheMiss     = errors.New("cache miss")
	ErrNotConfigured = errors.New("REDIS_ADDRESS not set")
)

type IRedis interface {
	SetResult(ctx context.Context, key string, value []byte, expiration time.Duration) error
	GetResult(ctx context.Context, key string) ([]byte, error)
	DeleteResult(ctx context.Context, key string) error
	Close() error
}

type redisClient struct {
	client *redis.Client
}

func New() (IRedis, error) {
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		return nil, ErrNotConfigured
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
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logrus.Info("Successfully connected to Redis")

	return &redisClient{client: client}, nil
}

// ResultKey namespaces cached detection results by profile, a digest of the
// effective pipeline config and the image hash.
func ResultKey(profile, configDigest, hash string) string {
	if len(configDigest) > 16 {
		configDigest = configDigest[:16]
	}
	return fmt.Sprintf("emotion:%s:%s:%s", profile, configDigest, hash)
}

func (r *redisClient) SetResult(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	logrus.Debug(fmt.Sprintf("Caching result for key %s with expiration %v", key, expiration))
	err := r.client.Set(ctx, key, value, expiration).Err()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error caching result for key %s: %v", key, err))
		return err
	}
	return nil
}

func (r *redisClient) GetResult(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logrus.Debug(fmt.Sprintf("Result not cached for key %s", key))
		return nil, ErrCacheMiss
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error reading cached result for key %s: %v", key, err))
		return nil, err
	}
	return val, nil
}

func (r *redisClient) DeleteResult(ctx context.Context, key string) error {
	result, err := r.client.Del(ctx, key).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error deleting cached result for key %s: %v", key, err))
		return err
	}

	if result == 0 {
		logrus.Debug(fmt.Sprintf("Result key %s not found for deletion", key))
	}
	return nil
}

func (r *redisClient) Close() error {
	return r.client.Close()
}
