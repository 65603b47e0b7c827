package collection

import "sync"

// keyLock serializes work per recipe id. Entries are dropped once nobody holds
// or waits on them.
type keyLock struct {
	mu    sync.Mutex
	locks map[int]*keyEntry
}

type keyEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[int]*keyEntry)}
}

// Lock blocks until id is free and returns the matching unlock func.
func (k *keyLock) Lock(id int) func() {
	k.mu.Lock()
	e, ok := k.locks[id]
	if !ok {
		e = &keyEntry{}
		k.locks[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

func (k *keyLock) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
