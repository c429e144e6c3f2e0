/*
Package remote is the thin client for the UniNav backend API. The mutation
layer talks to the API interface only, so tests inject fakes and never touch
the network.
*/
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
)

// API is the slice of the backend the mutation layer depends on.
type API interface {
	CreateBookmark(ctx context.Context, req CreateBookmarkRequest) (*Bookmark, error)
	DeleteBookmark(ctx context.Context, id string) error
	DeleteMaterial(ctx context.Context, id string) error
	DeleteCourse(ctx context.Context, id string) error
	UnlinkCourseFromDepartment(ctx context.Context, courseID, departmentID string) error
}

// Client is the HTTP implementation of API.
type Client struct {
	baseURL     string
	token       string
	httpClient  *http.Client
	keyProvider func() (string, bool)
}

// NewClient creates a client for the given base URL. An empty token sends
// unauthenticated requests.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetKeyProvider installs a per-request API key source, e.g. a rotator over
// a pool of drive keys. Each request asks the provider once.
func (c *Client) SetKeyProvider(fn func() (string, bool)) {
	c.keyProvider = fn
}

// CreateBookmark creates a bookmark and returns the server-issued record.
// The response is authoritative over any optimistic guess.
func (c *Client) CreateBookmark(ctx context.Context, req CreateBookmarkRequest) (*Bookmark, error) {
	var created Bookmark
	if err := c.do(ctx, http.MethodPost, "/bookmarks", req, &created); err != nil {
		return nil, fmt.Errorf("create bookmark: %w", err)
	}
	return &created, nil
}

// DeleteBookmark removes a bookmark by id.
func (c *Client) DeleteBookmark(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/bookmarks/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete bookmark %s: %w", id, err)
	}
	return nil
}

// DeleteMaterial removes an uploaded material by id.
func (c *Client) DeleteMaterial(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/materials/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete material %s: %w", id, err)
	}
	return nil
}

// DeleteCourse removes a course by id.
func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, "/courses/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete course %s: %w", id, err)
	}
	return nil
}

// UnlinkCourseFromDepartment detaches a course from a department listing.
func (c *Client) UnlinkCourseFromDepartment(ctx context.Context, courseID, departmentID string) error {
	path := fmt.Sprintf("/departments/%s/courses/%s", url.PathEscape(departmentID), url.PathEscape(courseID))
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("unlink course %s from department %s: %w", courseID, departmentID, err)
	}
	return nil
}

// ListBookmarks fetches the user's bookmark list.
func (c *Client) ListBookmarks(ctx context.Context) ([]Bookmark, error) {
	var out []Bookmark
	if err := c.do(ctx, http.MethodGet, "/bookmarks", nil, &out); err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return out, nil
}

// ListMaterials fetches a material listing. Section narrows the listing,
// e.g. "recent" or "recommended"; empty fetches everything.
func (c *Client) ListMaterials(ctx context.Context, section string) ([]Material, error) {
	path := "/materials"
	if section != "" {
		path += "/" + url.PathEscape(section)
	}
	var out []Material
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return out, nil
}

// ListCourses fetches the course catalog.
func (c *Client) ListCourses(ctx context.Context) ([]CourseLink, error) {
	var out []CourseLink
	if err := c.do(ctx, http.MethodGet, "/courses", nil, &out); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return out, nil
}

// ListDepartmentCourses fetches the courses linked to one department.
func (c *Client) ListDepartmentCourses(ctx context.Context, departmentID string) ([]CourseLink, error) {
	path := fmt.Sprintf("/departments/%s/courses", url.PathEscape(departmentID))
	var out []CourseLink
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("list department courses: %w", err)
	}
	return out, nil
}

// do issues one JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.keyProvider != nil {
		if key, ok := c.keyProvider(); ok {
			req.Header.Set("X-Api-Key", key)
		}
	}

	log.Debugf("%s %s", method, path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Message != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
