package providers

import (
	"context"
	"time"
)

// ReleaseLock is a held distributed lock.
type ReleaseLock interface {
	// Release frees the lock if this holder still owns it.
	Release(ctx context.Context) error

	// Extend pushes the expiry out if this holder still owns it.
	Extend(ctx context.Context, ttl time.Duration) error
}

// ReleaseLocker hands out distributed locks keyed by name. Acquire blocks up
// to the locker's configured timeout and returns
// apperrors.ErrLockContention when the lock stays busy.
type ReleaseLocker interface {
	Acquire(ctx context.Context, key string) (ReleaseLock, error)
}
