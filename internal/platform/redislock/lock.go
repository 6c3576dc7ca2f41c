package redislock

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/ports/providers"
)

// ErrLockNotHeld indicates a release or extend on a lock this holder no
// longer owns (the TTL expired and someone else took it).
var ErrLockNotHeld = errors.New("lock not held by this holder")

// pollInterval is how often a blocked Acquire retries SET NX.
const pollInterval = 50 * time.Millisecond

// releaseScript deletes the key only if this holder still owns it.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`

// extendScript refreshes the TTL only if this holder still owns the key.
const extendScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end`

// Locker hands out TTL-bound distributed locks backed by Redis SET NX.
// Every lock carries a random token so a holder can only release or extend
// its own acquisition.
type Locker struct {
	client         *redis.Client
	ttl            time.Duration
	acquireTimeout time.Duration
	tokenFn        func() string
}

// NewLocker creates a Locker. ttl bounds how long a crashed holder can block
// others; acquireTimeout bounds how long Acquire polls before giving up.
func NewLocker(client *redis.Client, ttl, acquireTimeout time.Duration) *Locker {
	return &Locker{
		client:         client,
		ttl:            ttl,
		acquireTimeout: acquireTimeout,
		tokenFn:        uuid.NewString,
	}
}

var _ providers.ReleaseLocker = (*Locker)(nil)

// Acquire blocks up to the configured timeout polling for the lock.
// A lock that stays busy yields apperrors.ErrLockContention.
func (l *Locker) Acquire(ctx context.Context, key string) (providers.ReleaseLock, error) {
	token := l.tokenFn()
	deadline := time.Now().Add(l.acquireTimeout)

	for {
		acquired, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to contact redis for lock "+key, err)
		}
		if acquired {
			return &lock{client: l.client, key: key, token: token}, nil
		}

		if l.acquireTimeout <= 0 || !time.Now().Add(pollInterval).Before(deadline) {
			return nil, apperrors.ErrLockContention
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

type lock struct {
	client *redis.Client
	key    string
	token  string
}

var _ providers.ReleaseLock = (*lock)(nil)

// Release frees the lock if this holder still owns it.
func (k *lock) Release(ctx context.Context) error {
	deleted, err := k.client.Eval(ctx, releaseScript, []string{k.key}, k.token).Int64()
	if err != nil {
		return apperrors.NewAppError(500, "failed to release lock "+k.key, err)
	}
	if deleted == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Extend pushes the expiry out if this holder still owns the lock.
func (k *lock) Extend(ctx context.Context, ttl time.Duration) error {
	extended, err := k.client.Eval(ctx, extendScript, []string{k.key}, k.token, ttl.Milliseconds()).Int64()
	if err != nil {
		return apperrors.NewAppError(500, "failed to extend lock "+k.key, err)
	}
	if extended == 0 {
		return ErrLockNotHeld
	}
	return nil
}
