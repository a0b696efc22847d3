package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sheon-shop/storefront/internal/logging"
	"go.uber.org/zap"
)

var ErrLockBusy = errors.New("lock busy")

// Release only deletes the key if it still holds our token, so a holder
// whose TTL expired cannot free someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is an inventory.Locker shared across API instances. TTL bounds how
// long a crashed holder can block others; Wait bounds acquisition.
type Locker struct {
	Redis *redis.Client
	TTL   time.Duration
	Wait  time.Duration
	Log   *zap.Logger
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	ttl := l.TTL
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	wait := l.Wait
	if wait <= 0 {
		wait = 2 * ttl
	}
	rkey := fmt.Sprintf(KeyMutex, key)
	token := uuid.NewString()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 250 * time.Millisecond

	_, err := backoff.Retry(ctx, func() (bool, error) {
		ok, err := l.Redis.SetNX(ctx, rkey, token, ttl).Result()
		if err != nil {
			return false, backoff.Permanent(err)
		}
		if !ok {
			return false, ErrLockBusy
		}
		return true, nil
	}, backoff.WithBackOff(b), backoff.WithMaxElapsedTime(wait))
	if err != nil {
		return nil, fmt.Errorf("acquire %s: %w", key, err)
	}

	return func() {
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.Redis, []string{rkey}, token).Err(); err != nil {
			logging.OrNop(l.Log).Warn("lock release failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
