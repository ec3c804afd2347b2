package cache

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/aq2208/storefront-api/internal/entity"
	"github.com/aq2208/storefront-api/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisCartStore keeps the serialized cart under a single key, no TTL:
// the cart outlives sessions by design.
type RedisCartStore struct {
	rdb *redis.Client
	key string
}

func NewRedisCartStore(rdb *redis.Client, key string) *RedisCartStore {
	if key == "" {
		key = "cart:items"
	}
	return &RedisCartStore{rdb: rdb, key: key}
}

func (s *RedisCartStore) Load(ctx context.Context) ([]domain.CartLine, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	var items []domain.CartLine
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode cart snapshot: %w", err)
	}
	return items, nil
}

func (s *RedisCartStore) Save(ctx context.Context, items []domain.CartLine) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

var _ usecase.CartPersistence = (*RedisCartStore)(nil)
