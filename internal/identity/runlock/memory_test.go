package runlock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryExclusive(t *testing.T) {
	ctx := context.Background()
	l := NewInMemory()

	release, err := l.Acquire(ctx, Key, time.Minute)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, Key, time.Minute)
	assert.ErrorIs(t, err, ErrHeld)

	_, err = l.Acquire(ctx, "other", time.Minute)
	assert.NoError(t, err, "keys are independent")

	require.NoError(t, release(ctx))
	_, err = l.Acquire(ctx, Key, time.Minute)
	assert.NoError(t, err)
}

func TestInMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewInMemory(WithClock(func() time.Time { return now }))

	stale, err := l.Acquire(ctx, Key, time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	_, err = l.Acquire(ctx, Key, time.Minute)
	require.NoError(t, err, "expired lock can be taken over")

	// The first holder must not release the new holder's lock.
	require.NoError(t, stale(ctx))
	_, err = l.Acquire(ctx, Key, time.Minute)
	assert.ErrorIs(t, err, ErrHeld)
}

func TestInMemoryConcurrentAcquire(t *testing.T) {
	ctx := context.Background()
	l := NewInMemory()

	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Acquire(ctx, Key, time.Minute); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
