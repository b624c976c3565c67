/**
 * @description
 * This file provides KeyedMutex, a per-key lock map the orchestration layer
 * uses to serialize writes for the same user_id within one process. The store's
 * find-then-replace upsert is not safe against two concurrent writers racing on
 * the same key; taking the user's lock before writing removes the in-process
 * lost-update anomaly. Writers in separate processes still race.
 */

package store

import "sync"

// KeyedMutex serializes critical sections per string key.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyedMutex creates an empty keyed mutex.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the lock for the given key and returns the matching unlock
// function. Locks are retained for the process lifetime; the population is
// bounded by the number of distinct user ids seen.
func (k *KeyedMutex) Lock(key string) func() {
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
