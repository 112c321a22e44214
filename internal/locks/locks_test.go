package locks

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseSerialization(t *testing.T, locker Locker) {
	t.Helper()
	var (
		wg      sync.WaitGroup
		inside  int32
		maxSeen int32
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(context.Background(), UserKey("u1"))
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			defer release()
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxSeen)
				if n <= m || atomic.CompareAndSwapInt32(&maxSeen, m, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)
}

func TestMemorySerializesSameKey(t *testing.T) {
	m := NewMemory()
	exerciseSerialization(t, m)
	assert.Equal(t, 0, m.held(UserKey("u1")))
}

func TestMemoryHonorsContext(t *testing.T) {
	m := NewMemory()
	release, err := m.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotAcquired))
	assert.Equal(t, 1, m.held("k"))
}

func TestMemoryIndependentKeys(t *testing.T) {
	m := NewMemory()
	r1, err := m.Lock(context.Background(), "a")
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	r2, err := m.Lock(ctx, "b")
	require.NoError(t, err)
	r1()
	r1()
	r2()
}

func newRedisLocker(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	locker := NewRedis(client, nil)
	locker.RetryInterval = time.Millisecond
	return locker, mr
}

func TestRedisSerializesSameKey(t *testing.T) {
	locker, _ := newRedisLocker(t)
	exerciseSerialization(t, locker)
}

func TestRedisReleaseOnlyOwnToken(t *testing.T) {
	locker, mr := newRedisLocker(t)
	release, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)

	// Simulate lease expiry and takeover by another instance.
	mr.Del("k")
	require.NoError(t, mr.Set("k", "other-token"))

	release()
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "other-token", got)
}

func TestRedisHonorsContext(t *testing.T) {
	locker, _ := newRedisLocker(t)
	release, err := locker.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "k")
	assert.True(t, errors.Is(err, ErrNotAcquired))
}
