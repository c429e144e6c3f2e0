package server

import (
	"bytes"
	"context"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/uninav/navcore/pkg/cache"
	cachemem "github.com/uninav/navcore/pkg/cache/memory"
	"github.com/uninav/navcore/pkg/dictionary"
	"github.com/uninav/navcore/pkg/localstore/memory"
	"github.com/uninav/navcore/pkg/mutation"
	"github.com/uninav/navcore/pkg/notify"
	"github.com/uninav/navcore/pkg/remote"
	"github.com/uninav/navcore/pkg/suggest"
)

// stubAPI answers every mutation call successfully.
type stubAPI struct{}

func (stubAPI) CreateBookmark(ctx context.Context, req remote.CreateBookmarkRequest) (*remote.Bookmark, error) {
	return &remote.Bookmark{ID: "bm-confirmed", MaterialID: req.MaterialID, Label: req.Label}, nil
}
func (stubAPI) DeleteBookmark(ctx context.Context, id string) error   { return nil }
func (stubAPI) DeleteMaterial(ctx context.Context, id string) error   { return nil }
func (stubAPI) DeleteCourse(ctx context.Context, id string) error     { return nil }
func (stubAPI) UnlinkCourseFromDepartment(ctx context.Context, courseID, departmentID string) error {
	return nil
}

func newTestServer(t *testing.T, in *bytes.Buffer, out *bytes.Buffer) (*Server, *cachemem.Store) {
	t.Helper()

	store, err := cachemem.New(0)
	if err != nil {
		t.Fatal(err)
	}
	executor := mutation.NewExecutor(store, stubAPI{}, &notify.Recorder{})

	history := suggest.NewHistoryStore(memory.New(), suggest.DefaultMaxHistory)
	engine := suggest.NewEngine(history, dictionary.NewPrefixTable(), dictionary.NewAliasTable(), suggest.Options{
		Enabled:       true,
		MinCharacters: 1,
	})

	opts := suggest.Options{Enabled: true, MinCharacters: 1}
	return NewServerIO(engine, executor, opts, in, out), store
}

func encodeRequests(t *testing.T, requests ...Request) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	for _, req := range requests {
		if err := enc.Encode(req); err != nil {
			t.Fatal(err)
		}
	}
	return &buf
}

func TestServerSuggestFlow(t *testing.T) {
	in := encodeRequests(t,
		Request{ID: "r1", Command: "history_save", Query: "csc201 past questions"},
		Request{ID: "r2", Command: "suggest", Query: "csc"},
		Request{ID: "r3", Command: "complete", Query: "phy"},
		Request{ID: "r4", Command: "health"},
		Request{ID: "r5", Command: "teleport"},
	)
	var out bytes.Buffer

	srv, _ := newTestServer(t, in, &out)
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	dec := msgpack.NewDecoder(&out)

	var ready StatusResponse
	if err := dec.Decode(&ready); err != nil || ready.Status != "ready" {
		t.Fatalf("ready = %+v, %v", ready, err)
	}

	var saved StatusResponse
	if err := dec.Decode(&saved); err != nil || saved.ID != "r1" || saved.Status != "ok" {
		t.Fatalf("history_save = %+v, %v", saved, err)
	}

	var suggestResp SuggestResponse
	if err := dec.Decode(&suggestResp); err != nil {
		t.Fatal(err)
	}
	if suggestResp.ID != "r2" || suggestResp.Count == 0 {
		t.Fatalf("suggest = %+v", suggestResp)
	}
	if suggestResp.Suggestions[0].Text != "csc201 past questions" || suggestResp.Suggestions[0].Source != "history" {
		t.Errorf("top suggestion = %+v", suggestResp.Suggestions[0])
	}

	var complete CompleteResponse
	if err := dec.Decode(&complete); err != nil {
		t.Fatal(err)
	}
	if complete.ID != "r3" || !complete.Accepted || complete.Text != "Physics" {
		t.Errorf("complete = %+v", complete)
	}

	var health StatusResponse
	if err := dec.Decode(&health); err != nil || health.ID != "r4" || health.Status != "ok" {
		t.Fatalf("health = %+v, %v", health, err)
	}

	var unknown StatusResponse
	if err := dec.Decode(&unknown); err != nil {
		t.Fatal(err)
	}
	if unknown.ID != "r5" || unknown.Status != "error" || unknown.Code != 400 {
		t.Errorf("unknown command = %+v", unknown)
	}
}

func TestServerSuggestValidation(t *testing.T) {
	in := encodeRequests(t, Request{ID: "r1", Command: "suggest", Query: "   "})
	var out bytes.Buffer

	srv, _ := newTestServer(t, in, &out)
	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}

	dec := msgpack.NewDecoder(&out)
	var ready, errResp StatusResponse
	if err := dec.Decode(&ready); err != nil {
		t.Fatal(err)
	}
	if err := dec.Decode(&errResp); err != nil {
		t.Fatal(err)
	}
	if errResp.Status != "error" || errResp.Code != 400 {
		t.Errorf("response = %+v", errResp)
	}
}

func TestServerMutate(t *testing.T) {
	in := encodeRequests(t,
		Request{ID: "m1", Command: "mutate", Target: "bookmark", Op: "delete", TargetID: "bm-1"},
		Request{ID: "m2", Command: "mutate", Target: "bookmark", Op: "create", MaterialID: "mat-1", Label: "notes"},
		Request{ID: "m3", Command: "mutate", Target: "bookmark", Op: "delete"},
	)
	var out bytes.Buffer

	srv, store := newTestServer(t, in, &out)
	store.Set(cache.K("bookmarks"), []remote.Bookmark{{ID: "bm-1"}})

	if err := srv.Start(); err != nil {
		t.Fatal(err)
	}

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	if err := dec.Decode(&ready); err != nil {
		t.Fatal(err)
	}

	var deleted MutateResponse
	if err := dec.Decode(&deleted); err != nil {
		t.Fatal(err)
	}
	if deleted.ID != "m1" || deleted.Status != "done" {
		t.Errorf("delete = %+v", deleted)
	}

	var created MutateResponse
	if err := dec.Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.Status != "done" || created.ConfirmedID != "bm-confirmed" {
		t.Errorf("create = %+v", created)
	}
	if created.TempID == "" {
		t.Error("create reply missing the placeholder id")
	}

	// Missing target id is rejected before any cache write.
	var rejected StatusResponse
	if err := dec.Decode(&rejected); err != nil {
		t.Fatal(err)
	}
	if rejected.ID != "m3" || rejected.Status != "error" {
		t.Errorf("rejected = %+v", rejected)
	}
}
