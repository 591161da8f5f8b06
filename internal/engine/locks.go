package engine

import "sync"

// keyedMutex serializes operations per profile. Entries are created on
// demand and removed once the last holder releases, so the map does not
// grow with the user population.
type keyedMutex struct {
	mu   sync.Mutex
	held map[int64]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{held: make(map[int64]*lockEntry)}
}

// lock acquires the mutex for the given id and returns its release func.
func (k *keyedMutex) lock(id int64) func() {
	k.mu.Lock()
	e, ok := k.held[id]
	if !ok {
		e = &lockEntry{}
		k.held[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.held, id)
		}
		k.mu.Unlock()
	}
}

// lockPair acquires both ids in ascending order so two referral flows
// touching the same pair cannot deadlock each other.
func (k *keyedMutex) lockPair(a, b int64) func() {
	if a == b {
		return k.lock(a)
	}
	if a > b {
		a, b = b, a
	}
	unlockA := k.lock(a)
	unlockB := k.lock(b)
	return func() {
		unlockB()
		unlockA()
	}
}
