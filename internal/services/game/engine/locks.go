package engine

import "sync"

// lockRegistry hands out one mutex per game id. The phase state machine
// assumes a single writer per game; nothing below this layer coordinates
// concurrent operations, so every mutating engine operation must hold the
// game's lock for its full duration.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{locks: make(map[string]*sync.Mutex)}
}

// acquire blocks until the game's lock is held and returns its release.
// Locks are never evicted; one mutex per game id is cheap at this scale.
func (r *lockRegistry) acquire(gameID string) func() {
	r.mu.Lock()
	lock, ok := r.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[gameID] = lock
	}
	r.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
