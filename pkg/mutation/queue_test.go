package mutation

import (
	"testing"
	"time"

	"github.com/uninav/navcore/pkg/cache"
)

func TestKeyedQueueBlocksOverlap(t *testing.T) {
	q := NewKeyedQueue()
	a := cache.K("bookmarks")
	b := cache.K("materials")
	c := cache.K("courses")

	q.Acquire([]cache.Key{a, b})

	acquired := make(chan struct{})
	go func() {
		q.Acquire([]cache.Key{b, c})
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("overlapping acquire succeeded while keys were held")
	case <-time.After(20 * time.Millisecond):
	}

	q.Release([]cache.Key{a, b})

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("acquire did not proceed after release")
	}
	q.Release([]cache.Key{b, c})
}

func TestKeyedQueueDisjointProceeds(t *testing.T) {
	q := NewKeyedQueue()
	a := cache.K("bookmarks")
	b := cache.K("materials")

	q.Acquire([]cache.Key{a})
	// Must not block; the keys are disjoint.
	q.Acquire([]cache.Key{b})

	q.Release([]cache.Key{a})
	q.Release([]cache.Key{b})
}

func TestKeyedQueueSequencesWriters(t *testing.T) {
	q := NewKeyedQueue()
	key := []cache.Key{cache.K("bookmarks")}

	var order []int
	done := make(chan struct{})

	q.Acquire(key)
	go func() {
		q.Acquire(key)
		order = append(order, 2)
		q.Release(key)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	order = append(order, 1)
	q.Release(key)

	<-done
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("order = %v", order)
	}
}
