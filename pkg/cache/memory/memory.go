// Package memory provides the in-process cache.Store used by the client.
// Entries live in a bounded LRU so a long browsing session cannot grow the
// cache without limit.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/uninav/navcore/pkg/cache"
)

// DefaultSize bounds the number of cached query results.
const DefaultSize = 512

type record struct {
	key       cache.Key
	value     any
	updatedAt time.Time
	stale     bool
}

// Store is an LRU-backed cache.Store implementation.
type Store struct {
	mu        sync.RWMutex
	lru       *lru.Cache[string, *record]
	refetch   cache.Refetcher
	inflight  map[string]context.CancelFunc
	clock     func() time.Time
	refetchWG sync.WaitGroup
}

// New creates a store with the given capacity; size <= 0 uses DefaultSize.
func New(size int) (*Store, error) {
	if size <= 0 {
		size = DefaultSize
	}
	l, err := lru.New[string, *record](size)
	if err != nil {
		return nil, err
	}
	return &Store{
		lru:      l,
		inflight: make(map[string]context.CancelFunc),
		clock:    time.Now,
	}, nil
}

// SetRefetcher registers the background reload hook. Pass nil to disable.
func (s *Store) SetRefetcher(fn cache.Refetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refetch = fn
}

// SetClock overrides the time source, for tests.
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

// Get returns the entry for a key. A stale hit schedules a background
// refetch when a refetcher is registered.
func (s *Store) Get(key cache.Key) (cache.Entry, bool) {
	s.mu.Lock()
	rec, ok := s.lru.Get(key.String())
	if !ok {
		s.mu.Unlock()
		return cache.Entry{}, false
	}
	entry := cache.Entry{
		Key:       rec.key.Clone(),
		Value:     rec.value,
		UpdatedAt: rec.updatedAt,
		Stale:     rec.stale,
	}
	needsRefetch := rec.stale && s.refetch != nil && s.inflight[key.String()] == nil
	if needsRefetch {
		s.startRefetchLocked(rec.key.Clone())
	}
	s.mu.Unlock()
	return entry, true
}

// Set writes a value and marks the entry fresh.
func (s *Store) Set(key cache.Key, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Add(key.String(), &record{
		key:       key.Clone(),
		value:     value,
		updatedAt: s.clock(),
		stale:     false,
	})
}

// Delete removes a key outright.
func (s *Store) Delete(key cache.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lru.Remove(key.String())
}

// SnapshotKeys captures current state of the given keys, absence included.
func (s *Store) SnapshotKeys(keys []cache.Key) []cache.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := make([]cache.Snapshot, 0, len(keys))
	for _, key := range keys {
		rec, ok := s.lru.Peek(key.String())
		if !ok {
			snaps = append(snaps, cache.Snapshot{Key: key.Clone()})
			continue
		}
		snaps = append(snaps, cache.Snapshot{
			Key:       key.Clone(),
			Value:     rec.value,
			Existed:   true,
			UpdatedAt: rec.updatedAt,
		})
	}
	return snaps
}

// RestoreSnapshot puts every captured key back exactly as it was.
func (s *Store) RestoreSnapshot(snaps []cache.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snaps {
		if !snap.Existed {
			s.lru.Remove(snap.Key.String())
			continue
		}
		s.lru.Add(snap.Key.String(), &record{
			key:       snap.Key.Clone(),
			value:     snap.Value,
			updatedAt: snap.UpdatedAt,
			stale:     false,
		})
	}
}

// Invalidate marks all entries under the prefix stale.
func (s *Store) Invalidate(prefix cache.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, k := range s.lru.Keys() {
		rec, ok := s.lru.Peek(k)
		if !ok || !rec.key.HasPrefix(prefix) {
			continue
		}
		rec.stale = true
		count++
	}
	log.Debugf("Invalidated %d cache entries under %q", count, prefix.String())
	return count
}

// CancelOutstanding aborts in-flight refetches under the prefix.
func (s *Store) CancelOutstanding(prefix cache.Key) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for canonical, cancel := range s.inflight {
		if !keyFromCanonical(canonical).HasPrefix(prefix) {
			continue
		}
		cancel()
		delete(s.inflight, canonical)
		count++
	}
	if count > 0 {
		log.Debugf("Cancelled %d outstanding refetches under %q", count, prefix.String())
	}
	return count
}

// Len returns the number of cached entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lru.Len()
}

// Wait blocks until background refetches settle. Test helper.
func (s *Store) Wait() {
	s.refetchWG.Wait()
}

// startRefetchLocked spawns the background reload for one key.
// Caller holds s.mu.
func (s *Store) startRefetchLocked(key cache.Key) {
	ctx, cancel := context.WithCancel(context.Background())
	canonical := key.String()
	s.inflight[canonical] = cancel
	refetch := s.refetch

	s.refetchWG.Add(1)
	go func() {
		defer s.refetchWG.Done()
		defer cancel()

		value, err := refetch(ctx, key)

		s.mu.Lock()
		defer s.mu.Unlock()
		// A CancelOutstanding call between fetch and apply means an
		// optimistic write owns this key now; drop the result.
		if s.inflight[canonical] == nil || ctx.Err() != nil {
			log.Debugf("Dropping cancelled refetch for %q", canonical)
			return
		}
		delete(s.inflight, canonical)

		if err != nil {
			log.Warnf("Refetch failed for %q: %v", canonical, err)
			return
		}
		s.lru.Add(canonical, &record{
			key:       key,
			value:     value,
			updatedAt: s.clock(),
			stale:     false,
		})
	}()
}

func keyFromCanonical(canonical string) cache.Key {
	if canonical == "" {
		return cache.Key{}
	}
	return cache.Key(strings.Split(canonical, "/"))
}
