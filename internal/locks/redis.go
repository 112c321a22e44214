package locks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes the key only while it still holds our token, so an
// expired lease re-acquired by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lease-based distributed lock using SET NX PX.
type Redis struct {
	Client        redis.UniversalClient
	TTL           time.Duration
	RetryInterval time.Duration
	Logger        *zap.Logger
}

// NewRedis constructs a Redis locker with a 30s lease.
func NewRedis(client redis.UniversalClient, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{
		Client:        client,
		TTL:           30 * time.Second,
		RetryInterval: 25 * time.Millisecond,
		Logger:        logger,
	}
}

// Lock polls SET NX until the key is acquired or ctx is done.
func (r *Redis) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ticker := time.NewTicker(r.retryInterval())
	defer ticker.Stop()
	for {
		ok, err := r.Client.SetNX(ctx, key, token, r.ttl()).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
			}
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
		case <-ticker.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(releaseCtx, r.Client, []string{key}, token).Err(); err != nil {
				r.Logger.Warn("lock release failed; lease will expire", zap.String("key", key), zap.Error(err))
			}
		})
	}, nil
}

func (r *Redis) ttl() time.Duration {
	if r.TTL <= 0 {
		return 30 * time.Second
	}
	return r.TTL
}

func (r *Redis) retryInterval() time.Duration {
	if r.RetryInterval <= 0 {
		return 25 * time.Millisecond
	}
	return r.RetryInterval
}
