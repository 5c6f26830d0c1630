package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// ListSpacesOptions filters a space listing.
type ListSpacesOptions struct {
	Limit int
	Keys  []string
}

// ListSpaces returns one page of spaces.
func (c *Client) ListSpaces(ctx context.Context, opts *ListSpacesOptions) (*PaginatedResponse[Space], error) {
	params := url.Values{}
	params.Set("limit", "25")
	if opts != nil {
		if opts.Limit > 0 {
			params.Set("limit", strconv.Itoa(opts.Limit))
		}
		for _, key := range opts.Keys {
			params.Add("keys", key)
		}
	}

	var result PaginatedResponse[Space]
	if err := c.do(ctx, http.MethodGet, "/api/v2/spaces?"+params.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetSpaceByKey returns a space by its key.
func (c *Client) GetSpaceByKey(ctx context.Context, key string) (*Space, error) {
	result, err := c.ListSpaces(ctx, &ListSpacesOptions{Keys: []string{key}, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(result.Results) == 0 {
		return nil, &ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    "space with key '" + key + "' not found",
		}
	}
	return &result.Results[0], nil
}
