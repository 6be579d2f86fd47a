package mutex

import "sync"

// KeyedMutex serializes work per user id while letting distinct ids
// proceed independently. Entries stay resident once created: dropping a
// mutex on unlock could hand the lock to two goroutines at once when a
// third locker recreates the entry under a blocked waiter.
type KeyedMutex struct {
	muMap sync.Map
}

func (km *KeyedMutex) Lock(key int64) {
	mu, _ := km.muMap.LoadOrStore(key, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
}

func (km *KeyedMutex) Unlock(key int64) {
	mu, ok := km.muMap.Load(key)
	if ok {
		mu.(*sync.Mutex).Unlock()
	}
}
