package memory

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/uninav/navcore/pkg/cache"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(0)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestSetGet(t *testing.T) {
	s := newTestStore(t)
	key := cache.K("bookmarks")

	if _, ok := s.Get(key); ok {
		t.Fatal("Get on empty store succeeded")
	}

	s.Set(key, []string{"a", "b"})
	entry, ok := s.Get(key)
	if !ok {
		t.Fatal("Get after Set failed")
	}
	if entry.Stale {
		t.Error("fresh entry reported stale")
	}
	if !reflect.DeepEqual(entry.Value, []string{"a", "b"}) {
		t.Errorf("Value = %v", entry.Value)
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	key := cache.K("bookmarks")

	s.Set(key, 1)
	s.Delete(key)
	if _, ok := s.Get(key); ok {
		t.Error("Get after Delete succeeded")
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := newTestStore(t)
	existing := cache.K("materials")
	absent := cache.K("materials", "recent")

	s.Set(existing, []string{"m1", "m2"})

	snaps := s.SnapshotKeys([]cache.Key{existing, absent})
	if len(snaps) != 2 {
		t.Fatalf("got %d snapshots", len(snaps))
	}
	if !snaps[0].Existed || snaps[1].Existed {
		t.Fatalf("Existed flags = %v, %v", snaps[0].Existed, snaps[1].Existed)
	}

	// Clobber both keys, then restore.
	s.Set(existing, []string{"changed"})
	s.Set(absent, []string{"should not exist"})
	s.RestoreSnapshot(snaps)

	entry, ok := s.Get(existing)
	if !ok || !reflect.DeepEqual(entry.Value, []string{"m1", "m2"}) {
		t.Errorf("restored value = %v, ok = %v", entry.Value, ok)
	}
	// A key that did not exist at snapshot time is removed again.
	if _, ok := s.Get(absent); ok {
		t.Error("restore kept a key that was absent in the snapshot")
	}
}

func TestInvalidatePrefix(t *testing.T) {
	s := newTestStore(t)
	s.Set(cache.K("materials"), 1)
	s.Set(cache.K("materials", "recent"), 2)
	s.Set(cache.K("bookmarks"), 3)

	if n := s.Invalidate(cache.K("materials")); n != 2 {
		t.Errorf("Invalidate marked %d entries, want 2", n)
	}

	entry, _ := s.Get(cache.K("bookmarks"))
	if entry.Stale {
		t.Error("unrelated entry marked stale")
	}
	entry, _ = s.Get(cache.K("materials", "recent"))
	if !entry.Stale {
		t.Error("nested entry not marked stale")
	}
}

func TestStaleGetTriggersRefetch(t *testing.T) {
	s := newTestStore(t)
	key := cache.K("bookmarks")
	s.Set(key, "old")

	var calls atomic.Int32
	s.SetRefetcher(func(ctx context.Context, k cache.Key) (any, error) {
		calls.Add(1)
		return "fresh", nil
	})

	s.Invalidate(key)
	if _, ok := s.Get(key); !ok {
		t.Fatal("stale entry should still be served")
	}
	s.Wait()

	if calls.Load() != 1 {
		t.Fatalf("refetcher ran %d times", calls.Load())
	}
	entry, _ := s.Get(key)
	if entry.Value != "fresh" || entry.Stale {
		t.Errorf("entry after refetch = %+v", entry)
	}
}

func TestRefetchFailureKeepsStaleValue(t *testing.T) {
	s := newTestStore(t)
	key := cache.K("bookmarks")
	s.Set(key, "old")

	s.SetRefetcher(func(ctx context.Context, k cache.Key) (any, error) {
		return nil, errors.New("backend down")
	})

	s.Invalidate(key)
	s.Get(key)
	s.Wait()

	entry, ok := s.Get(key)
	if !ok || entry.Value != "old" {
		t.Errorf("entry after failed refetch = %+v, ok = %v", entry, ok)
	}
}

func TestCancelOutstandingDropsRefetchResult(t *testing.T) {
	s := newTestStore(t)
	key := cache.K("bookmarks")
	s.Set(key, "old")

	release := make(chan struct{})
	s.SetRefetcher(func(ctx context.Context, k cache.Key) (any, error) {
		<-release
		return "late", nil
	})

	s.Invalidate(key)
	s.Get(key)

	// The optimistic writer takes over the key while the refetch hangs.
	if n := s.CancelOutstanding(key); n != 1 {
		t.Fatalf("CancelOutstanding = %d, want 1", n)
	}
	s.Set(key, "optimistic")

	close(release)
	s.Wait()

	entry, _ := s.Get(key)
	if entry.Value != "optimistic" {
		t.Errorf("cancelled refetch overwrote the cache: %v", entry.Value)
	}
}

func TestLRUEviction(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatal(err)
	}
	s.Set(cache.K("a"), 1)
	s.Set(cache.K("b"), 2)
	s.Set(cache.K("c"), 3)

	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if _, ok := s.Get(cache.K("a")); ok {
		t.Error("oldest entry survived past capacity")
	}
}

func TestClockControlsTimestamps(t *testing.T) {
	s := newTestStore(t)
	fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	s.Set(cache.K("bookmarks"), 1)
	entry, _ := s.Get(cache.K("bookmarks"))
	if !entry.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", entry.UpdatedAt, fixed)
	}
}
