package service

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RedisSettingsStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisSettingsStore(client redis.UniversalClient, prefix string) *RedisSettingsStore {
	if prefix == "" {
		prefix = "settings"
	}
	return &RedisSettingsStore{client: client, prefix: prefix}
}

func (s *RedisSettingsStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.client == nil {
		return "", false, nil
	}
	value, err := s.client.Get(ctx, s.dataKey(key)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisSettingsStore) Set(ctx context.Context, key, value string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Set(ctx, s.dataKey(key), value, 0).Err()
}

func (s *RedisSettingsStore) dataKey(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, key)
}
