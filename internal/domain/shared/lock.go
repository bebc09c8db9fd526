package shared

import (
	"context"
	"time"
)

// ErrLockNotAcquired is returned when a keyed lock could not be taken before the deadline
var ErrLockNotAcquired = NewDomainError("LOCK_NOT_ACQUIRED", "Resource is locked by another operation")

// UnlockFunc releases a lock obtained from a Locker
type UnlockFunc func(ctx context.Context) error

// Locker serializes work per key across goroutines or processes.
type Locker interface {
	// Acquire blocks until the key is locked, ctx is done, or wait elapses.
	Acquire(ctx context.Context, key string, wait time.Duration) (UnlockFunc, error)
}
