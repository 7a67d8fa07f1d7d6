package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillpath_quiz/internal/quizerr"
)

func assertSerialized(t *testing.T, locker Locker) {
	t.Helper()
	var (
		wg      sync.WaitGroup
		active  atomic.Int32
		maxSeen atomic.Int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "u1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()
			n := active.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			time.Sleep(2 * time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen.Load())
}

func TestKeyedLockerSerializesOneUser(t *testing.T) {
	l := NewKeyedLocker()
	assertSerialized(t, l)
	assert.Zero(t, l.held())
}

func TestKeyedLockerIndependentUsers(t *testing.T) {
	l := NewKeyedLocker()
	unlock, err := l.Lock(context.Background(), "u1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	other, err := l.Lock(ctx, "u2")
	require.NoError(t, err)
	other()
}

func TestKeyedLockerHonoursContext(t *testing.T) {
	l := NewKeyedLocker()
	unlock, err := l.Lock(context.Background(), "u1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "u1")
	assert.ErrorIs(t, err, quizerr.ErrStorage)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()
	assert.Zero(t, l.held())
}

func TestRedisLockerSerializesOneUser(t *testing.T) {
	_, client := newRedis(t)
	assertSerialized(t, NewRedisLocker(client, time.Second))
}

func TestRedisLockerHonoursContext(t *testing.T) {
	_, client := newRedis(t)
	l := NewRedisLocker(client, time.Minute)

	unlock, err := l.Lock(context.Background(), "u1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "u1")
	assert.ErrorIs(t, err, quizerr.ErrStorage)
}

func TestRedisLockerUnlockKeepsForeignLease(t *testing.T) {
	mr, client := newRedis(t)
	l := NewRedisLocker(client, time.Second)

	stale, err := l.Lock(context.Background(), "u1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)
	fresh, err := l.Lock(context.Background(), "u1")
	require.NoError(t, err)
	defer fresh()

	stale()
	assert.True(t, mr.Exists(lockPrefix+"u1"), "stale unlock must not release the new holder")
}
