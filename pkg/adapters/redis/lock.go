// Package redis provides a Redis-backed ports.Locker, used to serialize
// access to a shared inference engine across processes.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/mln/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockNotHeld is returned by an unlock whose lock already expired or was taken over.
	ErrLockNotHeld = errors.New("lock is no longer held")
)

const defaultPollInterval = 100 * time.Millisecond

// releaseScript deletes the key only if it still holds our token.
var releaseScript = backend.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// Locker implements ports.Locker using Redis SET NX PX.
type Locker struct {
	client backend.Cmdable
	prefix string
	poll   time.Duration
}

// Option configures the locker.
type Option func(*Locker)

// WithPrefix namespaces lock keys (default "mln:").
func WithPrefix(prefix string) Option {
	return func(l *Locker) {
		l.prefix = prefix
	}
}

// WithPollInterval sets how often a contended lock is retried.
func WithPollInterval(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.poll = d
		}
	}
}

// NewLocker creates a new Redis locker.
func NewLocker(client backend.Cmdable, opts ...Option) *Locker {
	l := &Locker{
		client: client,
		prefix: "mln:",
		poll:   defaultPollInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Key returns the Redis key guarding name.
func (l *Locker) Key(name string) string {
	return l.prefix + "lock:" + name
}

// Lock blocks until the lock for key is acquired or ctx is done.
// The lock expires after ttl even if it is never released.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.Key(key)
	token := uuid.NewString()

	ticker := time.NewTicker(l.poll)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis error acquiring lock %s: %w", key, err)
		}
		if ok {
			return l.unlockFunc(lockKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %s: %w", key, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (l *Locker) unlockFunc(lockKey, token string) ports.UnlockFunc {
	return func(ctx context.Context) error {
		n, err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Int()
		if err != nil {
			return fmt.Errorf("redis error releasing lock: %w", err)
		}
		if n == 0 {
			return ErrLockNotHeld
		}
		return nil
	}
}
