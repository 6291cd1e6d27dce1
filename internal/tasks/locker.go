package tasks

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Locker provides mutual exclusion keyed by name. Implementations may be
// process-local or distributed.
type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned function
	// releases the lock and is safe to call more than once.
	Lock(ctx context.Context, key string) (func(), error)
}

// LockKey is the lock name guarding updates of one classifier.
func LockKey(id int64) string {
	return fmt.Sprintf("classifier-update-%d", id)
}

// KeyedLocker is a process-local [Locker]. Keys nobody holds or waits for are forgotten.
type KeyedLocker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sem  *semaphore.Weighted
	refs int
}

// NewKeyedLocker creates an empty KeyedLocker.
func NewKeyedLocker() *KeyedLocker {
	return &KeyedLocker{locks: make(map[string]*keyedLock)}
}

func (l *KeyedLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyedLock{sem: semaphore.NewWeighted(1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	if err := kl.sem.Acquire(ctx, 1); err != nil {
		l.release(key, kl)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			kl.sem.Release(1)
			l.release(key, kl)
		})
	}, nil
}

func (l *KeyedLocker) release(key string, kl *keyedLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// Len returns the number of keys currently held or awaited.
func (l *KeyedLocker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
