package mutation

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/uninav/navcore/pkg/cache"
	"github.com/uninav/navcore/pkg/remote"
)

// TempIDPrefix marks placeholder ids issued before server confirmation.
const TempIDPrefix = "tmp:"

// IsTempID reports whether an id is a client-issued placeholder.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// predict computes the post-mutation value for one snapshotted key. The
// second return is false when the key should be left untouched: deletes
// against an absent entry have nothing to remove, and an unexpected value
// shape is safer skipped than guessed at (reconciliation fixes it anyway).
func predict(req Request, tempID string, snap cache.Snapshot) (any, bool) {
	if req.Op == OpCreate {
		return predictCreate(req, tempID, snap)
	}
	if !snap.Existed {
		return nil, false
	}

	switch list := snap.Value.(type) {
	case []remote.Bookmark:
		return predictBookmarkList(req, list)
	case []remote.Material:
		if req.Target == TargetMaterial {
			return removeMaterial(list, req.ID), true
		}
	case []remote.CourseLink:
		if req.Target == TargetCourseLink {
			return removeCourseLink(list, req.ID, req.DepartmentID), true
		}
	default:
		log.Debugf("No predictor for %T at %q, leaving entry for reconciliation", snap.Value, snap.Key.String())
	}
	return nil, false
}

// predictCreate prepends a placeholder bookmark; an absent list starts as a
// single-element list so the item shows up immediately.
func predictCreate(req Request, tempID string, snap cache.Snapshot) (any, bool) {
	placeholder := remote.Bookmark{
		ID:         tempID,
		MaterialID: req.Create.MaterialID,
		Label:      req.Create.Label,
		CreatedAt:  time.Now(),
	}

	if !snap.Existed {
		return []remote.Bookmark{placeholder}, true
	}
	list, ok := snap.Value.([]remote.Bookmark)
	if !ok {
		return nil, false
	}

	out := make([]remote.Bookmark, 0, len(list)+1)
	out = append(out, placeholder)
	out = append(out, list...)
	return out, true
}

// predictBookmarkList handles bookmark lists affected by bookmark deletes
// and by material deletes (which sweep all bookmarks of that material).
func predictBookmarkList(req Request, list []remote.Bookmark) (any, bool) {
	switch req.Target {
	case TargetBookmark:
		return removeBookmark(list, req.ID), true
	case TargetMaterial:
		return removeBookmarksByMaterial(list, req.ID), true
	}
	return nil, false
}

// Removal helpers build fresh slices so the snapshot's original slice is
// never mutated in place; rollback depends on that.

func removeBookmark(list []remote.Bookmark, id string) []remote.Bookmark {
	out := make([]remote.Bookmark, 0, len(list))
	for _, b := range list {
		if b.ID == id {
			continue
		}
		out = append(out, b)
	}
	return out
}

func removeBookmarksByMaterial(list []remote.Bookmark, materialID string) []remote.Bookmark {
	out := make([]remote.Bookmark, 0, len(list))
	for _, b := range list {
		if b.MaterialID == materialID {
			continue
		}
		out = append(out, b)
	}
	return out
}

func removeMaterial(list []remote.Material, id string) []remote.Material {
	out := make([]remote.Material, 0, len(list))
	for _, m := range list {
		if m.ID == id {
			continue
		}
		out = append(out, m)
	}
	return out
}

// removeCourseLink drops links for the course; an empty departmentID
// matches every department (whole-course delete).
func removeCourseLink(list []remote.CourseLink, courseID, departmentID string) []remote.CourseLink {
	out := make([]remote.CourseLink, 0, len(list))
	for _, l := range list {
		if l.CourseID == courseID && (departmentID == "" || l.DepartmentID == departmentID) {
			continue
		}
		out = append(out, l)
	}
	return out
}
