package remote

import "time"

// Bookmark is a saved reference to a study material.
type Bookmark struct {
	ID         string    `json:"id"`
	MaterialID string    `json:"materialId"`
	Label      string    `json:"label,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Material is one uploaded study document.
type Material struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	CourseCode   string    `json:"courseCode,omitempty"`
	DepartmentID string    `json:"departmentId,omitempty"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// CourseLink ties a course to the department that lists it.
type CourseLink struct {
	CourseID     string `json:"courseId"`
	DepartmentID string `json:"departmentId"`
}

// CreateBookmarkRequest is the payload for bookmark creation.
type CreateBookmarkRequest struct {
	MaterialID string `json:"materialId"`
	Label      string `json:"label,omitempty"`
}

// apiError is the backend's error envelope.
type apiError struct {
	Message string `json:"message"`
	Status  int    `json:"status,omitempty"`
}
