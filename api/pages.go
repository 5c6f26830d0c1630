package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Body representations a page can be written in.
const (
	RepresentationStorage = "storage"
	RepresentationADF     = "atlas_doc_format"
)

// NewBody wraps content in the given representation.
func NewBody(representation, value string) *Body {
	r := &BodyRepresentation{Representation: representation, Value: value}
	if representation == RepresentationADF {
		return &Body{AtlasDocFormat: r}
	}
	return &Body{Storage: r}
}

// GetPage returns a single page by ID without its body.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/api/v2/pages/"+url.PathEscape(pageID), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// CreatePage creates a new page.
func (c *Client) CreatePage(ctx context.Context, req *CreatePageRequest) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodPost, "/api/v2/pages", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage replaces the body of an existing page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, req *UpdatePageRequest) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodPut, "/api/v2/pages/"+url.PathEscape(pageID), req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ReplacePage overwrites a page's title and body, bumping its version.
func (c *Client) ReplacePage(ctx context.Context, pageID, title string, body *Body, message string) (*Page, error) {
	current, err := c.GetPage(ctx, pageID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page %s: %w", pageID, err)
	}
	if title == "" {
		title = current.Title
	}
	next := 1
	if current.Version != nil {
		next = current.Version.Number + 1
	}
	return c.UpdatePage(ctx, pageID, &UpdatePageRequest{
		ID:      pageID,
		Status:  "current",
		Title:   title,
		Body:    body,
		Version: &Version{Number: next, Message: message},
	})
}
