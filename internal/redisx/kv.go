package redisx

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// KV is the kv.Store used by the API: cart and wishlist blobs keyed per
// shopper session, refreshed on every write.
type KV struct {
	Redis *redis.Client
}

func (s *KV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.Redis.Get(ctx, fmt.Sprintf(KeyKV, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *KV) Set(ctx context.Context, key string, val []byte) error {
	return s.Redis.Set(ctx, fmt.Sprintf(KeyKV, key), val, TTLSession).Err()
}

func (s *KV) Remove(ctx context.Context, key string) error {
	return s.Redis.Del(ctx, fmt.Sprintf(KeyKV, key)).Err()
}
