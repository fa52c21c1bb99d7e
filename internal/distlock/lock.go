// Package distlock provides short Redis leases so that a campaign's dispatch
// step runs in at most one process at a time.
package distlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-server/internal/observability"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

var ErrNoClient = errors.New("redis client is nil")

// Locker hands out leases of a fixed ttl
type Locker struct {
	client redis.UniversalClient
	ttl    time.Duration
	prefix string
	logger *observability.Logger
}

func New(client redis.UniversalClient, ttl time.Duration, logger *observability.Logger) (*Locker, error) {
	if client == nil {
		return nil, ErrNoClient
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Locker{client: client, ttl: ttl, prefix: "crm:lock:", logger: logger}, nil
}

// TryLock takes the lease for key without waiting. The returned release is
// safe to call after the lease expired; it never deletes another holder's lease.
func (l *Locker) TryLock(ctx context.Context, key string) (func(), bool, error) {
	fullKey := l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lease %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		// The caller's ctx may already be done when the step times out
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Error(observability.WithFields(ctx, observability.Field{Key: "lock_key", Value: fullKey}), "failed to release lease", err)
		}
	}
	return release, true, nil
}
