package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Ickli/gostdocx/internal/version"
)

const defaultTimeout = 30 * time.Second

// Client is the Confluence Cloud API client used to publish converted
// documents.
type Client struct {
	baseURL    string
	email      string
	apiToken   string
	httpClient *http.Client
}

// NewClient creates a new Confluence API client.
func NewClient(baseURL, email, apiToken string) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		email:    email,
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// do executes a request with a JSON body and decodes a JSON response into
// out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var reqBody io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.send(ctx, method, path, reqBody, contentType, nil, out)
}

// send executes a request with a prepared body.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, contentType string, header http.Header, out interface{}) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "gostdocx/"+version.Version)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		errResp := &ErrorResponse{}
		if err := json.Unmarshal(respBody, errResp); err != nil || (errResp.Message == "" && len(errResp.Errors) == 0) {
			errResp.Message = strings.TrimSpace(string(respBody))
		}
		errResp.StatusCode = resp.StatusCode
		return errResp
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse %s %s response: %w", method, path, err)
	}
	return nil
}

// Ping checks that the credentials can read at least one space.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.ListSpaces(ctx, &ListSpacesOptions{Limit: 1})
	return err
}
