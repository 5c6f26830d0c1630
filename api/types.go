// Package api is a minimal Confluence Cloud REST client: enough to look up
// a space and create or replace the page a converted document is published to.
package api

import (
	"fmt"
	"time"
)

// PaginatedResponse wraps paginated API responses.
type PaginatedResponse[T any] struct {
	Results []T   `json:"results"`
	Links   Links `json:"_links,omitempty"`
}

// Links contains pagination and navigation links.
type Links struct {
	Next     string `json:"next,omitempty"`
	Base     string `json:"base,omitempty"`
	WebUI    string `json:"webui,omitempty"`
	Download string `json:"download,omitempty"`
}

// HasMore returns true if there are more results available.
func (p *PaginatedResponse[T]) HasMore() bool {
	return p.Links.Next != ""
}

// Space is a Confluence space.
type Space struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Page is a Confluence page.
type Page struct {
	ID        string   `json:"id"`
	Status    string   `json:"status"`
	Title     string   `json:"title"`
	SpaceID   string   `json:"spaceId"`
	ParentID  string   `json:"parentId,omitempty"`
	CreatedAt Time     `json:"createdAt,omitempty"`
	Version   *Version `json:"version,omitempty"`
	Body      *Body    `json:"body,omitempty"`
	Links     Links    `json:"_links,omitempty"`
}

// Version is a page version.
type Version struct {
	Number  int    `json:"number"`
	Message string `json:"message,omitempty"`
}

// Body holds page content; exactly one representation is set on writes.
type Body struct {
	Storage        *BodyRepresentation `json:"storage,omitempty"`
	AtlasDocFormat *BodyRepresentation `json:"atlas_doc_format,omitempty"`
}

// BodyRepresentation holds content in a specific format.
type BodyRepresentation struct {
	Representation string `json:"representation"`
	Value          string `json:"value"`
}

// Attachment is a file attached to a page, as the v1 content API returns it.
type Attachment struct {
	ID         string               `json:"id"`
	Title      string               `json:"title"`
	Extensions AttachmentExtensions `json:"extensions"`
	Links      Links                `json:"_links,omitempty"`
}

// AttachmentExtensions carries the media details of an attachment.
type AttachmentExtensions struct {
	MediaType string `json:"mediaType,omitempty"`
	FileSize  int64  `json:"fileSize,omitempty"`
	FileID    string `json:"fileId,omitempty"`
}

// Time parses the ISO 8601 timestamps Confluence returns.
type Time struct {
	time.Time
}

// UnmarshalJSON accepts RFC 3339 with or without fractional seconds.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` || s == "" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

// MarshalJSON formats time in ISO 8601 format.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

// CreatePageRequest is the request body for creating a page.
type CreatePageRequest struct {
	SpaceID  string `json:"spaceId"`
	Status   string `json:"status,omitempty"`
	Title    string `json:"title"`
	ParentID string `json:"parentId,omitempty"`
	Body     *Body  `json:"body"`
}

// UpdatePageRequest is the request body for updating a page.
type UpdatePageRequest struct {
	ID      string   `json:"id"`
	Status  string   `json:"status"`
	Title   string   `json:"title"`
	Body    *Body    `json:"body"`
	Version *Version `json:"version"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitempty"`
}

func (e *ErrorResponse) Error() string {
	msg := e.Message
	if len(e.Errors) > 0 {
		msg = e.Errors[0]
	}
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, msg)
}
