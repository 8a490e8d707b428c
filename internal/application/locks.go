package application

import (
	"fmt"
	"sync"
)

// LockRegistry serializes operations that share a key. Booking creation locks
// per resource so the read-check-write cycle never races, and reconciliation
// locks per home so a booking cannot land between the full-replace delete and
// the reimport. The booking and sync services must share one registry for the
// home keys to exclude each other.
type LockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLockRegistry() *LockRegistry {
	return &LockRegistry{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for key and returns its release function.
func (k *LockRegistry) acquire(key string) func() {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func resourceLockKey(resourceID int64) string {
	return fmt.Sprintf("resource:%d", resourceID)
}

func homeLockKey(homeID int64) string {
	return fmt.Sprintf("home:%d", homeID)
}
