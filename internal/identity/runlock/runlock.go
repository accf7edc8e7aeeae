// Package runlock keeps live sync runs from overlapping.
package runlock

import (
	"context"
	"errors"
	"time"
)

// Key is the single lock shared by every live run.
const Key = "identity-sync"

// ErrHeld is returned when another run holds the lock.
var ErrHeld = errors.New("run lock held")

// Release gives the lock back. Releasing an expired lock is a no-op.
type Release func(ctx context.Context) error

// Locker acquires a named lock for at most ttl.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}
