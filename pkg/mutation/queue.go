package mutation

import (
	"sync"

	"github.com/uninav/navcore/pkg/cache"
)

// KeyedQueue serializes mutations that overlap on any affected cache key.
// Without it, two concurrent mutations on the same key race and the last
// optimistic write (or the last-settling rollback) silently wins.
// Non-overlapping mutations proceed concurrently.
type KeyedQueue struct {
	mu   sync.Mutex
	cond *sync.Cond
	held map[string]bool
}

// NewKeyedQueue creates an empty queue.
func NewKeyedQueue() *KeyedQueue {
	q := &KeyedQueue{held: make(map[string]bool)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Acquire blocks until none of the keys is held, then holds them all.
// Keys are claimed atomically so two waiters cannot deadlock on partial
// overlaps.
func (q *KeyedQueue) Acquire(keys []cache.Key) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.anyHeld(keys) {
		q.cond.Wait()
	}
	for _, key := range keys {
		q.held[key.String()] = true
	}
}

// Release frees the keys and wakes waiters.
func (q *KeyedQueue) Release(keys []cache.Key) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, key := range keys {
		delete(q.held, key.String())
	}
	q.cond.Broadcast()
}

func (q *KeyedQueue) anyHeld(keys []cache.Key) bool {
	for _, key := range keys {
		if q.held[key.String()] {
			return true
		}
	}
	return false
}
