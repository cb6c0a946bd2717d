package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/rocketshoes-cart/internal/port"
	"github.com/redis/go-redis/v9"
)

const keyNamespace = "storefront"

type redisStore struct {
	client redis.Cmdable
}

// NewRedisStore keeps slots as plain string keys without expiry.
func NewRedisStore(client redis.Cmdable) port.CartStore {
	return &redisStore{client: client}
}

func (s *redisStore) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	payload, err := s.client.Get(ctx, slotKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, port.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("client.Get: %w", err)
	}

	return payload, nil
}

func (s *redisStore) Save(ctx context.Context, key string, payload []byte) error {
	if key == "" {
		return fmt.Errorf("key is empty")
	}

	if err := s.client.Set(ctx, slotKey(key), payload, 0).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func slotKey(key string) string {
	return fmt.Sprintf("%s:%s", keyNamespace, key)
}
