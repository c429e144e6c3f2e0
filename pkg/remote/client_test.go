package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateBookmark(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody CreateBookmarkRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(Bookmark{ID: "bm-9", MaterialID: gotBody.MaterialID, Label: gotBody.Label})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "tok-123")
	created, err := client.CreateBookmark(context.Background(), CreateBookmarkRequest{
		MaterialID: "mat-1",
		Label:      "exam prep",
	})
	if err != nil {
		t.Fatal(err)
	}

	if gotPath != "POST /bookmarks" {
		t.Errorf("request = %q", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("auth = %q", gotAuth)
	}
	if gotBody.MaterialID != "mat-1" {
		t.Errorf("body = %+v", gotBody)
	}
	if created.ID != "bm-9" || created.Label != "exam prep" {
		t.Errorf("created = %+v", created)
	}
}

func TestDeleteRoutes(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")

	tests := []struct {
		name string
		call func() error
		want string
	}{
		{"bookmark", func() error { return client.DeleteBookmark(context.Background(), "bm-1") }, "DELETE /bookmarks/bm-1"},
		{"material", func() error { return client.DeleteMaterial(context.Background(), "mat-1") }, "DELETE /materials/mat-1"},
		{"course", func() error { return client.DeleteCourse(context.Background(), "crs-1") }, "DELETE /courses/crs-1"},
		{"unlink", func() error { return client.UnlinkCourseFromDepartment(context.Background(), "crs-1", "dep-1") }, "DELETE /departments/dep-1/courses/crs-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err != nil {
				t.Fatal(err)
			}
			if gotPath != tt.want {
				t.Errorf("request = %q, want %q", gotPath, tt.want)
			}
		})
	}
}

func TestErrorResponseMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]string{"message": "not your bookmark"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	err := client.DeleteBookmark(context.Background(), "bm-1")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "not your bookmark") {
		t.Errorf("err = %v", err)
	}
}

func TestErrorResponseWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	err := client.DeleteBookmark(context.Background(), "bm-1")
	if err == nil || !strings.Contains(err.Error(), "status 502") {
		t.Errorf("err = %v", err)
	}
}

func TestListEndpoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bookmarks":
			json.NewEncoder(w).Encode([]Bookmark{{ID: "bm-1"}})
		case "/materials/recent":
			json.NewEncoder(w).Encode([]Material{{ID: "mat-1"}, {ID: "mat-2"}})
		case "/departments/dep-1/courses":
			json.NewEncoder(w).Encode([]CourseLink{{CourseID: "crs-1", DepartmentID: "dep-1"}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	ctx := context.Background()

	bookmarks, err := client.ListBookmarks(ctx)
	if err != nil || len(bookmarks) != 1 {
		t.Errorf("ListBookmarks = %v, %v", bookmarks, err)
	}
	materials, err := client.ListMaterials(ctx, "recent")
	if err != nil || len(materials) != 2 {
		t.Errorf("ListMaterials = %v, %v", materials, err)
	}
	links, err := client.ListDepartmentCourses(ctx, "dep-1")
	if err != nil || len(links) != 1 {
		t.Errorf("ListDepartmentCourses = %v, %v", links, err)
	}
}

func TestKeyProviderHeader(t *testing.T) {
	var gotKeys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKeys = append(gotKeys, r.Header.Get("X-Api-Key"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	keys := []string{"k1", "k2"}
	i := 0
	client.SetKeyProvider(func() (string, bool) {
		key := keys[i%len(keys)]
		i++
		return key, true
	})

	for range keys {
		if err := client.DeleteBookmark(context.Background(), "bm-1"); err != nil {
			t.Fatal(err)
		}
	}

	if len(gotKeys) != 2 || gotKeys[0] != "k1" || gotKeys[1] != "k2" {
		t.Errorf("keys = %v", gotKeys)
	}
}
