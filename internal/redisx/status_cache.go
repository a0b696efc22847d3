package redisx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type CachedStatus struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// StatusCache is a read-through cache for GET /orders/{id}.
type StatusCache struct {
	Redis *redis.Client
}

// Get returns ok=false on a miss or on any Redis error; the caller falls
// back to the record store.
func (c *StatusCache) Get(ctx context.Context, orderID string) (CachedStatus, bool) {
	b, err := c.Redis.Get(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Bytes()
	if err != nil {
		return CachedStatus{}, false
	}
	var s CachedStatus
	if json.Unmarshal(b, &s) != nil || s.Status == "" {
		return CachedStatus{}, false
	}
	return s, true
}

func (c *StatusCache) Put(ctx context.Context, orderID, status string) error {
	b, err := json.Marshal(CachedStatus{ID: orderID, Status: status})
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, fmt.Sprintf(KeyOrderStatus, orderID), b, TTLStatusCache).Err()
}

func (c *StatusCache) Drop(ctx context.Context, orderID string) error {
	err := c.Redis.Del(ctx, fmt.Sprintf(KeyOrderStatus, orderID)).Err()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	return err
}
