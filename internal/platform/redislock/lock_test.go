package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentorhub/payments-backend/internal/apperrors"
)

const testToken = "token-1234"

func newTestLocker(t *testing.T, ttl, timeout time.Duration) (*Locker, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	locker := NewLocker(client, ttl, timeout)
	locker.tokenFn = func() string { return testToken }
	return locker, mock
}

func TestLocker_AcquireAndRelease(t *testing.T) {
	locker, mock := newTestLocker(t, time.Minute, 10*time.Second)

	mock.ExpectSetNX("release:order_1", testToken, time.Minute).SetVal(true)
	mock.ExpectEval(releaseScript, []string{"release:order_1"}, testToken).SetVal(int64(1))

	held, err := locker.Acquire(context.Background(), "release:order_1")
	require.NoError(t, err)

	assert.NoError(t, held.Release(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocker_AcquireRetriesUntilFree(t *testing.T) {
	locker, mock := newTestLocker(t, time.Minute, time.Second)

	mock.ExpectSetNX("release:order_1", testToken, time.Minute).SetVal(false)
	mock.ExpectSetNX("release:order_1", testToken, time.Minute).SetVal(true)

	held, err := locker.Acquire(context.Background(), "release:order_1")
	require.NoError(t, err)
	require.NotNil(t, held)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLocker_AcquireContention(t *testing.T) {
	// Zero timeout: a busy lock must fail immediately with contention.
	locker, mock := newTestLocker(t, time.Minute, 0)

	mock.ExpectSetNX("release:order_1", testToken, time.Minute).SetVal(false)

	_, err := locker.Acquire(context.Background(), "release:order_1")
	assert.ErrorIs(t, err, apperrors.ErrLockContention)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLock_ReleaseNotHeld(t *testing.T) {
	locker, mock := newTestLocker(t, time.Minute, time.Second)

	mock.ExpectSetNX("release:order_1", testToken, time.Minute).SetVal(true)
	// The key expired and another holder took over; delete must be refused.
	mock.ExpectEval(releaseScript, []string{"release:order_1"}, testToken).SetVal(int64(0))

	held, err := locker.Acquire(context.Background(), "release:order_1")
	require.NoError(t, err)

	assert.ErrorIs(t, held.Release(context.Background()), ErrLockNotHeld)
}

func TestLock_Extend(t *testing.T) {
	locker, mock := newTestLocker(t, time.Minute, time.Second)

	mock.ExpectSetNX("release:order_1", testToken, time.Minute).SetVal(true)
	mock.ExpectEval(extendScript, []string{"release:order_1"}, testToken, int64(30000)).SetVal(int64(1))

	held, err := locker.Acquire(context.Background(), "release:order_1")
	require.NoError(t, err)

	assert.NoError(t, held.Extend(context.Background(), 30*time.Second))
	assert.NoError(t, mock.ExpectationsWereMet())
}
