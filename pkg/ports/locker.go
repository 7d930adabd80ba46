package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a lock.
type UnlockFunc func(ctx context.Context) error

// Locker defines the interface for cross-session (or cross-process)
// serialization of engine calls.
type Locker interface {
	// Lock acquires the lock for the given key.
	// It blocks until the lock is acquired, the context is canceled, or the
	// implementation gives up. The returned UnlockFunc MUST be called.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
