package keylock

import "sync"

// KeyLock serializes work per string key. The scan path holds the key's
// lock across its resolve-then-upsert sequence so two workers can never
// both observe "no live case" for the same (product, failure-mode) pair
// and both create one.
//
// Locks are in-process; running multiple scanner processes against one case
// store requires external single-writer scheduling.
//
// Mutexes are never evicted, so the map grows with the number of distinct
// keys seen over the process lifetime. Keys come from the aggregation's
// product and failure-mode buckets, not from request input, which caps the
// map at the catalog's cluster cardinality.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a new KeyLock
func New() *KeyLock {
	return &KeyLock{
		locks: make(map[string]*sync.Mutex),
	}
}

// Lock acquires the lock for key and returns the unlock function
func (k *KeyLock) Lock(key string) func() {
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
