package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisBlobStore struct {
	client *redis.Client
}

func NewRedisBlobStore(client *redis.Client) BlobStore {
	return &redisBlobStore{client: client}
}

func (s *redisBlobStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *redisBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return val, err
}

func (s *redisBlobStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisBlobStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, key).Result()
	return n > 0, err
}
