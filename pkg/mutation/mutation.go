/*
Package mutation wraps remote create/delete/unlink calls so the local query
cache reflects the change immediately, rolls back on failure, and always
resynchronizes with the server afterwards.

One Execute call runs in two phases. The synchronous phase cancels in-flight
refetches for the affected keys, snapshots their current values, and writes
the predicted post-mutation state in a single pass, so every reader sees the
change at once. The background phase issues the remote call: on success the
server-confirmed record is merged over the optimistic guess, on failure the
snapshot is restored exactly. Either way the affected keys are marked stale
so the next read refetches server truth.
*/
package mutation

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/uninav/navcore/pkg/cache"
	"github.com/uninav/navcore/pkg/notify"
	"github.com/uninav/navcore/pkg/remote"
)

// Target names the entity class a mutation acts on.
type Target string

const (
	TargetBookmark   Target = "bookmark"
	TargetMaterial   Target = "material"
	TargetCourseLink Target = "course-link"
)

// Op names the operation kind.
type Op string

const (
	OpCreate Op = "create"
	OpDelete Op = "delete"
	OpUnlink Op = "unlink"
)

// Request describes one mutation to execute.
type Request struct {
	Target Target
	Op     Op

	// ID is the target entity id; required for delete and unlink.
	ID string

	// DepartmentID qualifies unlink operations.
	DepartmentID string

	// Create carries the payload for bookmark creation.
	Create *remote.CreateBookmarkRequest
}

// Outcome reports how a mutation settled.
type Outcome struct {
	// Err is nil on remote success.
	Err error

	// Confirmed holds the server-issued record for create operations.
	Confirmed *remote.Bookmark

	// TempID is the placeholder id that was visible until confirmation.
	TempID string
}

// Pending is one in-flight optimistic change: the affected keys, the exact
// prior state of each, and the placeholder id when the op is a create.
type Pending struct {
	Target   Target
	Op       Op
	Keys     []cache.Key
	Snapshot []cache.Snapshot
	TempID   string
}

// Executor runs mutations against an injected cache store and remote API.
type Executor struct {
	store    cache.Store
	api      remote.API
	notifier notify.Notifier
	queue    *KeyedQueue
	tempSeq  atomic.Uint64
}

// NewExecutor wires a mutation executor. A nil notifier drops notifications.
func NewExecutor(store cache.Store, api remote.API, notifier notify.Notifier) *Executor {
	if notifier == nil {
		notifier = notify.Logger{}
	}
	return &Executor{
		store:    store,
		api:      api,
		notifier: notifier,
		queue:    NewKeyedQueue(),
	}
}

// Execute validates the request, applies the optimistic write synchronously,
// and settles the remote call in the background. The returned channel
// receives exactly one Outcome when the mutation settles.
//
// Precondition violations are returned immediately and never touch the
// cache. Remote failures are not returned here; they roll the cache back
// and surface as a failure notification plus a non-nil Outcome.Err.
func (e *Executor) Execute(ctx context.Context, req Request) (<-chan Outcome, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	keys := affectedKeys(req)
	e.queue.Acquire(keys)

	pending := &Pending{
		Target: req.Target,
		Op:     req.Op,
		Keys:   keys,
	}
	if req.Op == OpCreate {
		pending.TempID = e.nextTempID()
	}

	// Synchronous phase: no reader may observe a half-applied state.
	for _, key := range keys {
		e.store.CancelOutstanding(key)
	}
	pending.Snapshot = e.store.SnapshotKeys(keys)
	e.applyOptimistic(req, pending)

	log.Debugf("Optimistic %s %s applied across %d keys", req.Op, req.Target, len(keys))

	done := make(chan Outcome, 1)
	go e.settle(ctx, req, pending, done)
	return done, nil
}

// applyOptimistic writes the predicted post-state for every affected key.
func (e *Executor) applyOptimistic(req Request, pending *Pending) {
	for _, snap := range pending.Snapshot {
		predicted, ok := predict(req, pending.TempID, snap)
		if !ok {
			continue
		}
		e.store.Set(snap.Key, predicted)
	}
}

// settle issues the remote call and reconciles the cache with its outcome.
func (e *Executor) settle(ctx context.Context, req Request, pending *Pending, done chan<- Outcome) {
	defer e.queue.Release(pending.Keys)

	outcome := Outcome{TempID: pending.TempID}
	confirmed, err := e.callRemote(ctx, req)
	if err != nil {
		// Restore the exact pre-mutation state, original ordering included.
		e.store.RestoreSnapshot(pending.Snapshot)
		outcome.Err = err
		e.notifier.Notify(notify.Failure, failureMessage(req, err))
		log.Debugf("Rolled back %s %s: %v", req.Op, req.Target, err)
	} else {
		if confirmed != nil {
			e.confirmCreate(pending, confirmed)
			outcome.Confirmed = confirmed
		}
		e.notifier.Notify(notify.Success, successMessage(req))
	}

	// Reconciliation runs regardless of outcome: the optimistic guess or the
	// rollback snapshot may both be imprecise by now.
	for _, key := range pending.Keys {
		e.store.Invalidate(key)
	}

	done <- outcome
}

// callRemote dispatches to the API endpoint matching the request.
func (e *Executor) callRemote(ctx context.Context, req Request) (*remote.Bookmark, error) {
	switch {
	case req.Target == TargetBookmark && req.Op == OpCreate:
		return e.api.CreateBookmark(ctx, *req.Create)
	case req.Target == TargetBookmark && req.Op == OpDelete:
		return nil, e.api.DeleteBookmark(ctx, req.ID)
	case req.Target == TargetMaterial && req.Op == OpDelete:
		return nil, e.api.DeleteMaterial(ctx, req.ID)
	case req.Target == TargetCourseLink && req.Op == OpDelete:
		return nil, e.api.DeleteCourse(ctx, req.ID)
	case req.Target == TargetCourseLink && req.Op == OpUnlink:
		return nil, e.api.UnlinkCourseFromDepartment(ctx, req.ID, req.DepartmentID)
	}
	return nil, fmt.Errorf("no endpoint for %s %s", req.Op, req.Target)
}

// confirmCreate swaps the temporary placeholder for the server record in
// every affected list. Server data is authoritative over the guess.
func (e *Executor) confirmCreate(pending *Pending, confirmed *remote.Bookmark) {
	for _, key := range pending.Keys {
		entry, ok := e.store.Get(key)
		if !ok {
			continue
		}
		list, ok := entry.Value.([]remote.Bookmark)
		if !ok {
			continue
		}
		replaced := false
		out := make([]remote.Bookmark, len(list))
		for i, b := range list {
			if b.ID == pending.TempID {
				out[i] = *confirmed
				replaced = true
			} else {
				out[i] = b
			}
		}
		if replaced {
			e.store.Set(key, out)
		}
	}
}

// nextTempID issues a placeholder id. Consumers must treat these as
// non-stable; they disappear at confirmation.
func (e *Executor) nextTempID() string {
	return fmt.Sprintf("%s%d", TempIDPrefix, e.tempSeq.Add(1))
}

// validate rejects malformed requests before any cache write.
func validate(req Request) error {
	switch req.Op {
	case OpCreate:
		if req.Target != TargetBookmark {
			return fmt.Errorf("create is only supported for bookmarks, got %s", req.Target)
		}
		if req.Create == nil || req.Create.MaterialID == "" {
			return fmt.Errorf("create bookmark requires a material id")
		}
	case OpDelete:
		if req.ID == "" {
			return fmt.Errorf("delete %s requires an id", req.Target)
		}
	case OpUnlink:
		if req.Target != TargetCourseLink {
			return fmt.Errorf("unlink is only supported for course links, got %s", req.Target)
		}
		if req.ID == "" || req.DepartmentID == "" {
			return fmt.Errorf("unlink requires course and department ids")
		}
	default:
		return fmt.Errorf("unknown operation %q", req.Op)
	}
	return nil
}

// affectedKeys lists every cache region one logical mutation touches.
// Deleting a material also touches the bookmark and discovery lists.
func affectedKeys(req Request) []cache.Key {
	switch req.Target {
	case TargetBookmark:
		return []cache.Key{cache.K("bookmarks")}
	case TargetMaterial:
		return []cache.Key{
			cache.K("materials"),
			cache.K("materials", "recent"),
			cache.K("materials", "recommended"),
			cache.K("bookmarks"),
		}
	case TargetCourseLink:
		if req.Op == OpUnlink {
			return []cache.Key{
				cache.K("courses"),
				cache.K("departments", req.DepartmentID, "courses"),
			}
		}
		return []cache.Key{cache.K("courses")}
	}
	return nil
}

func successMessage(req Request) string {
	switch req.Op {
	case OpCreate:
		return "Bookmark added"
	case OpUnlink:
		return "Course removed from department"
	}
	return fmt.Sprintf("%s deleted", titleFor(req.Target))
}

func failureMessage(req Request, err error) string {
	return fmt.Sprintf("Could not %s %s: %v", req.Op, req.Target, err)
}

func titleFor(target Target) string {
	switch target {
	case TargetBookmark:
		return "Bookmark"
	case TargetMaterial:
		return "Material"
	case TargetCourseLink:
		return "Course"
	}
	return string(target)
}
