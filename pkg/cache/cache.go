/*
Package cache defines the client-side query cache the mutation layer writes
through. A key is an ordered tuple (entity type plus filters) naming one
logical cached query result; values are whatever the remote API returned for
it. At most one value exists per key and updates are last-write-wins.

The store is injected into every consumer rather than accessed as a global,
so tests can swap implementations freely.
*/
package cache

import (
	"context"
	"strings"
	"time"
)

// Key is an ordered identifier for one logical cached query result,
// e.g. {"bookmarks"} or {"materials", "recent"}.
type Key []string

// K is shorthand for building a key from parts.
func K(parts ...string) Key {
	return Key(parts)
}

// String renders the canonical form used for storage and logging.
func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether k falls under the given key prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i, part := range prefix {
		if k[i] != part {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the key.
func (k Key) Clone() Key {
	out := make(Key, len(k))
	copy(out, k)
	return out
}

// Entry is one cached region: the value plus freshness bookkeeping.
type Entry struct {
	Key       Key
	Value     any
	UpdatedAt time.Time
	Stale     bool
}

// Snapshot records the exact prior state of one key, including absence,
// so a rollback can restore it byte-for-byte.
type Snapshot struct {
	Key       Key
	Value     any
	Existed   bool
	UpdatedAt time.Time
}

// Refetcher reloads server truth for a single key. Registered by the host
// application; the store calls it in the background when a stale entry is
// read.
type Refetcher func(ctx context.Context, key Key) (any, error)

// Store is the query cache contract. Writes from the mutation layer go
// through the snapshot/restore discipline; everything else reads.
type Store interface {
	// Get returns the entry for a key. Reading a stale entry may trigger a
	// background refetch if a refetcher is registered.
	Get(key Key) (Entry, bool)

	// Set writes a value and marks the entry fresh.
	Set(key Key, value any)

	// Delete removes a key outright.
	Delete(key Key)

	// SnapshotKeys captures the current state of the given keys, absence
	// included, in the order given.
	SnapshotKeys(keys []Key) []Snapshot

	// RestoreSnapshot puts every captured key back exactly as it was.
	RestoreSnapshot(snaps []Snapshot)

	// Invalidate marks all entries under the prefix stale so the next read
	// refetches. Returns the number of entries touched.
	Invalidate(prefix Key) int

	// CancelOutstanding aborts in-flight refetches under the prefix so they
	// cannot clobber an optimistic write. Returns the number cancelled.
	CancelOutstanding(prefix Key) int
}
