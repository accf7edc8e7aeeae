package runlock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	token     string
	expiresAt time.Time
}

// InMemory is a process-local Locker.
type InMemory struct {
	mu    sync.Mutex
	held  map[string]entry
	clock func() time.Time
}

type MemoryOption func(*InMemory)

func WithClock(clock func() time.Time) MemoryOption {
	return func(m *InMemory) {
		m.clock = clock
	}
}

func NewInMemory(opts ...MemoryOption) *InMemory {
	m := &InMemory{held: make(map[string]entry), clock: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *InMemory) Acquire(_ context.Context, key string, ttl time.Duration) (Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	if e, ok := m.held[key]; ok && now.Before(e.expiresAt) {
		return nil, ErrHeld
	}

	token := uuid.NewString()
	m.held[key] = entry{token: token, expiresAt: now.Add(ttl)}

	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if e, ok := m.held[key]; ok && e.token == token {
			delete(m.held, key)
		}
		return nil
	}, nil
}
