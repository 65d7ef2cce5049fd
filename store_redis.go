package identity

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore maps the Store contract onto Redis GET/SET/DEL. Because every
// mutation is a single command, it is also the backend of choice when
// several processes share one deployment's data.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, wrapStorage(err, "redis read failed")
	}
	return val, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return wrapStorage(s.client.Set(ctx, key, value, 0).Err(), "redis write failed")
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	return wrapStorage(s.client.Del(ctx, key).Err(), "redis delete failed")
}
