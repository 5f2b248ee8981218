package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss 缓存中没有该键
var ErrCacheMiss = errors.New("cache miss")

// InterfaceRedisService defines the Redis service interface
type InterfaceRedisService interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
}

// NewRedisServiceWithClient wraps an existing client
func NewRedisServiceWithClient(client *redis.Client) InterfaceRedisService {
	return &RedisService{Client: client}
}

// 1 Set stores value as JSON with expiration
func (s *RedisService) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, key, jsonValue, expiration).Err()
}

// 2 Get decodes a JSON value, ErrCacheMiss when absent
func (s *RedisService) Get(ctx context.Context, key string, dest interface{}) error {
	val, err := s.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(val, dest)
}

// 3 Delete removes keys
func (s *RedisService) Delete(ctx context.Context, keys ...string) error {
	return s.Client.Del(ctx, keys...).Err()
}

// 4 Ping checks connectivity
func (s *RedisService) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}
