package usecase

import "sync"

// KeyLocker hands out one mutex per logical record key so writes racing in
// from several devices apply one at a time. Mutexes are never reclaimed; the
// key space (passengers and bags per day) is small enough that this does not
// matter.
type KeyLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewKeyLocker creates an empty locker.
func NewKeyLocker() *KeyLocker {
	return &KeyLocker{
		locks: make(map[string]*sync.Mutex),
	}
}

// Get returns the mutex guarding key within the given namespace.
func (k *KeyLocker) Get(ns, key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()

	id := ns + "|" + key
	m, ok := k.locks[id]
	if !ok {
		m = &sync.Mutex{}
		k.locks[id] = m
	}
	return m
}
