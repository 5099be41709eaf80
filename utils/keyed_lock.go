package utils

import (
	"context"
	"sync"
)

// KeyedLock serializes work per string key. Unlike a plain mutex map it is
// context-aware: a blocked Lock returns when the context is cancelled, so a
// shutdown mid-batch never leaves the next scheduler tick deadlocked.
type KeyedLock struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

// NewKeyedLock creates an empty KeyedLock.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{held: make(map[string]chan struct{})}
}

// Lock blocks until the key is free or ctx is done. On success the caller
// owns the key and must call Unlock.
func (l *KeyedLock) Lock(ctx context.Context, key string) error {
	for {
		l.mu.Lock()
		ch, taken := l.held[key]
		if !taken {
			l.held[key] = make(chan struct{})
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		select {
		case <-ch:
			// Holder released; try to take it again.
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Unlock releases the key and wakes all waiters.
func (l *KeyedLock) Unlock(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ch, taken := l.held[key]; taken {
		delete(l.held, key)
		close(ch)
	}
}
