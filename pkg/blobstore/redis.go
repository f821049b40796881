package blobstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps raw payloads as plain string values. Keys carry the
// full raw/channels/... namespace, so no extra prefixing happens here.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) PutJSON(ctx context.Context, key string, value interface{}) error {
	data, err := EncodeJSON(key, value)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return &UnavailableError{Op: "put", Key: key, Err: err}
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, &UnavailableError{Op: "get", Key: key, Err: err}
	}
	return data, nil
}
