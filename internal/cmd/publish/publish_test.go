package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ickli/gostdocx/api"
)

const source = `(paragraph-styled heading-1
    Weekly report
)
All systems nominal.
`

func setup(t *testing.T, handler http.HandlerFunc) (*publishOptions, *bytes.Buffer) {
	t.Helper()
	t.Setenv("GOSTDOCX_URL", "https://example.atlassian.net/wiki")
	t.Setenv("GOSTDOCX_EMAIL", "user@example.com")
	t.Setenv("GOSTDOCX_API_TOKEN", "token")
	t.Setenv("GOSTDOCX_DEFAULT_SPACE", "DEV")
	t.Setenv("GOSTDOCX_STYLES", "")

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	dir := t.TempDir()
	input := filepath.Join(dir, "weekly.txt")
	require.NoError(t, os.WriteFile(input, []byte(source), 0o644))

	var stdout bytes.Buffer
	return &publishOptions{
		input:      input,
		configPath: filepath.Join(dir, "config.yml"),
		noColor:    true,
		stdin:      strings.NewReader(""),
		stdout:     &stdout,
		stderr:     &bytes.Buffer{},
		client:     api.NewClient(server.URL, "user@example.com", "token"),
	}, &stdout
}

func TestRunPublish_Create(t *testing.T) {
	var created api.CreatePageRequest
	opts, stdout := setup(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/spaces":
			assert.Equal(t, "DEV", r.URL.Query().Get("keys"))
			w.Write([]byte(`{"results": [{"id": "100", "key": "DEV"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/pages":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.Write([]byte(`{"id": "555", "title": "Weekly report", "version": {"number": 1},
				"_links": {"webui": "/spaces/DEV/pages/555"}}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL)
		}
	})

	require.NoError(t, runPublish(context.Background(), opts))

	assert.Equal(t, "100", created.SpaceID)
	assert.Equal(t, "Weekly report", created.Title)
	require.NotNil(t, created.Body.Storage)
	assert.Contains(t, created.Body.Storage.Value, "All systems nominal.</p>")

	out := stdout.String()
	assert.Contains(t, out, "Created page: Weekly report")
	assert.Contains(t, out, "ID: 555")
	assert.Contains(t, out, "https://example.atlassian.net/wiki/spaces/DEV/pages/555")
}

func TestRunPublish_ReplaceAsADF(t *testing.T) {
	var update api.UpdatePageRequest
	opts, stdout := setup(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/pages/777", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"id": "777", "title": "Existing", "version": {"number": 2}}`))
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&update))
			w.Write([]byte(`{"id": "777", "title": "Existing", "version": {"number": 3}}`))
		}
	})
	opts.pageID = "777"
	opts.representation = "adf"
	opts.message = "nightly"
	opts.output = "json"

	require.NoError(t, runPublish(context.Background(), opts))

	require.NotNil(t, update.Body.AtlasDocFormat)
	var adf map[string]any
	require.NoError(t, json.Unmarshal([]byte(update.Body.AtlasDocFormat.Value), &adf))
	assert.Equal(t, "doc", adf["type"])
	assert.Equal(t, 3, update.Version.Number)
	assert.Equal(t, "nightly", update.Version.Message)

	var page api.Page
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &page))
	assert.Equal(t, "777", page.ID)
}

func TestRunPublish_ConversionErrorSkipsUpload(t *testing.T) {
	opts, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL)
	})
	require.NoError(t, os.WriteFile(opts.input, []byte("(frobnicate)\n"), 0o644))

	err := runPublish(context.Background(), opts)
	assert.ErrorContains(t, err, `unknown macro "frobnicate"`)
}

func TestRunPublish_Validation(t *testing.T) {
	opts, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {})
	opts.representation = "markdown"
	assert.ErrorContains(t, runPublish(context.Background(), opts), "invalid representation")

	opts, _ = setup(t, func(w http.ResponseWriter, r *http.Request) {})
	t.Setenv("GOSTDOCX_DEFAULT_SPACE", "")
	assert.ErrorContains(t, runPublish(context.Background(), opts), "space is required")

	opts, _ = setup(t, func(w http.ResponseWriter, r *http.Request) {})
	t.Setenv("GOSTDOCX_API_TOKEN", "")
	t.Setenv("ATLASSIAN_API_TOKEN", "")
	assert.ErrorContains(t, runPublish(context.Background(), opts), "api_token is required")
}

func TestRunPublish_SpaceNotFound(t *testing.T) {
	opts, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": []}`))
	})
	assert.ErrorContains(t, runPublish(context.Background(), opts), "failed to find space 'DEV'")
}

const imageSource = `(paragraph-styled heading-1
    Weekly report
)
(image img/logo.png)
(image ../shared/logo.png)
`

// withImages adds the image source and its files beside the input.
func withImages(t *testing.T, opts *publishOptions) {
	t.Helper()
	dir := filepath.Dir(opts.input)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "img"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "..", "shared"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img", "logo.png"), []byte("local"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "..", "shared", "logo.png"), []byte("shared"), 0o644))
	require.NoError(t, os.WriteFile(opts.input, []byte(imageSource), 0o644))
}

// uploaded reads an attachment upload and answers with a media file ID.
func uploaded(t *testing.T, w http.ResponseWriter, r *http.Request, files map[string]string) {
	t.Helper()
	assert.Equal(t, "nocheck", r.Header.Get("X-Atlassian-Token"))
	f, hdr, err := r.FormFile("file")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	files[hdr.Filename] = string(data)
	fmt.Fprintf(w, `{"results": [{"id": "att-%d", "title": %q, "extensions": {"fileId": "file-%s"}}]}`,
		len(files), hdr.Filename, hdr.Filename)
}

func TestRunPublish_CreateUploadsImages(t *testing.T) {
	var created api.CreatePageRequest
	files := map[string]string{}
	var order []string
	opts, stdout := setup(t, func(w http.ResponseWriter, r *http.Request) {
		order = append(order, r.Method+" "+r.URL.Path)
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/spaces":
			w.Write([]byte(`{"results": [{"id": "100", "key": "DEV"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/pages":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.Write([]byte(`{"id": "555", "title": "Weekly report", "version": {"number": 1}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/rest/api/content/555/child/attachment":
			uploaded(t, w, r, files)
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL)
		}
	})
	withImages(t, opts)

	require.NoError(t, runPublish(context.Background(), opts))

	assert.Equal(t, []string{
		"GET /api/v2/spaces",
		"POST /api/v2/pages",
		"PUT /rest/api/content/555/child/attachment",
		"PUT /rest/api/content/555/child/attachment",
	}, order)
	assert.Equal(t, map[string]string{"logo.png": "local", "2-logo.png": "shared"}, files)

	require.NotNil(t, created.Body.Storage)
	assert.Contains(t, created.Body.Storage.Value, `<ri:attachment ri:filename="logo.png" />`)
	assert.Contains(t, created.Body.Storage.Value, `<ri:attachment ri:filename="2-logo.png" />`)
	assert.Contains(t, stdout.String(), "Attachments: 2")
}

func TestRunPublish_ReplaceUploadsBeforeUpdate(t *testing.T) {
	var update api.UpdatePageRequest
	files := map[string]string{}
	var order []string
	opts, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		order = append(order, r.Method+" "+r.URL.Path)
		switch {
		case r.URL.Path == "/rest/api/content/777/child/attachment":
			uploaded(t, w, r, files)
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/pages/777":
			w.Write([]byte(`{"id": "777", "title": "Existing", "version": {"number": 2}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/api/v2/pages/777":
			require.NoError(t, json.NewDecoder(r.Body).Decode(&update))
			w.Write([]byte(`{"id": "777", "title": "Existing", "version": {"number": 3}}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL)
		}
	})
	withImages(t, opts)
	opts.pageID = "777"
	opts.representation = "adf"

	require.NoError(t, runPublish(context.Background(), opts))

	assert.Equal(t, []string{
		"PUT /rest/api/content/777/child/attachment",
		"PUT /rest/api/content/777/child/attachment",
		"GET /api/v2/pages/777",
		"PUT /api/v2/pages/777",
	}, order)
	require.NotNil(t, update.Body.AtlasDocFormat)
	body := update.Body.AtlasDocFormat.Value
	assert.Contains(t, body, `"id":"file-logo.png"`)
	assert.Contains(t, body, `"id":"file-2-logo.png"`)
	assert.Contains(t, body, `"collection":"contentId-777"`)
}

func TestRunPublish_CreateAsADFUpdatesMediaAfterUpload(t *testing.T) {
	var bodies []string
	files := map[string]string{}
	opts, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/spaces":
			w.Write([]byte(`{"results": [{"id": "100", "key": "DEV"}]}`))
		case r.Method == http.MethodPost && r.URL.Path == "/api/v2/pages":
			var req api.CreatePageRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			bodies = append(bodies, req.Body.AtlasDocFormat.Value)
			w.Write([]byte(`{"id": "555", "title": "Weekly report", "version": {"number": 1}}`))
		case r.URL.Path == "/rest/api/content/555/child/attachment":
			uploaded(t, w, r, files)
		case r.Method == http.MethodGet && r.URL.Path == "/api/v2/pages/555":
			w.Write([]byte(`{"id": "555", "title": "Weekly report", "version": {"number": 1}}`))
		case r.Method == http.MethodPut && r.URL.Path == "/api/v2/pages/555":
			var req api.UpdatePageRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, 2, req.Version.Number)
			bodies = append(bodies, req.Body.AtlasDocFormat.Value)
			w.Write([]byte(`{"id": "555", "title": "Weekly report", "version": {"number": 2}}`))
		default:
			t.Errorf("unexpected %s %s", r.Method, r.URL)
		}
	})
	withImages(t, opts)
	opts.representation = "adf"

	require.NoError(t, runPublish(context.Background(), opts))

	require.Len(t, bodies, 2)
	assert.NotContains(t, bodies[0], "file-logo.png")
	assert.Contains(t, bodies[1], `"id":"file-logo.png"`)
	assert.Contains(t, bodies[1], `"collection":"contentId-555"`)
}

func TestRunPublish_UploadError(t *testing.T) {
	opts, _ := setup(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/rest/api/content/777/child/attachment" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"statusCode": 403, "message": "not permitted"}`))
			return
		}
		t.Errorf("unexpected %s %s", r.Method, r.URL)
	})
	withImages(t, opts)
	opts.pageID = "777"

	assert.ErrorContains(t, runPublish(context.Background(), opts), "failed to upload image 2-logo.png")
}
