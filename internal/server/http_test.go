package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/quire/internal/db"
	"github.com/mithrel/quire/internal/journal"
	"github.com/mithrel/quire/internal/logging"
)

type tickClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := db.Open(context.Background(), "memory://")
	require.NoError(t, err)
	cfg := viper.New()
	cfg.Set("server.default_page_size", 2)
	cfg.Set("server.max_page_size", 3)
	clock := &tickClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	srv := New(cfg, journal.New(store, journal.WithClock(clock)), nil)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, u, contentType string, body io.Reader, hdr ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, u, body)
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func doJSON(t *testing.T, method, u string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	return do(t, method, u, "application/json", bytes.NewReader(b))
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	for _, p := range []string{"/health", "/healthz"} {
		resp := do(t, http.MethodGet, ts.URL+p, "", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		b, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "ok", string(b))
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	}
}

func TestCreateAndGet(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/entries", map[string]string{"title": "Hello", "content_md": "# Hi"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[map[string]any](t, resp)
	assert.Len(t, created, 4, "wire form has exactly id, title, content_md, content_html")
	assert.Equal(t, "Hello", created["title"])
	assert.Contains(t, created["content_html"], "<h1>Hi</h1>")
	loc := resp.Header.Get("Location")
	require.NotEmpty(t, loc)

	resp = do(t, http.MethodGet, ts.URL+loc, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[entryView](t, resp)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "# Hi", got.ContentMD)
	tag := resp.Header.Get("ETag")
	require.NotEmpty(t, tag)
	assert.NotEmpty(t, resp.Header.Get("Last-Modified"))

	resp = do(t, http.MethodGet, ts.URL+loc, "", nil, "If-None-Match", tag)
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestCreateFromForm(t *testing.T) {
	ts := newTestServer(t)
	form := url.Values{"title": {"Form"}, "content_md": {"see https://example.com"}}

	resp := do(t, http.MethodPost, ts.URL+"/entries/", "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	got := decode[entryView](t, resp)
	assert.Equal(t, "Form", got.Title)
	assert.Contains(t, got.ContentHTML, `rel="nofollow"`)
}

func TestCreateValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/entries", map[string]string{"title": "", "content_md": "x"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[map[string]map[string]string](t, resp)
	assert.Contains(t, body["detail"], "title")

	resp = doJSON(t, http.MethodPost, ts.URL+"/entries", map[string]string{"title": strings.Repeat("t", 121), "content_md": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, http.MethodPost, ts.URL+"/entries", "application/json", strings.NewReader("{not json"))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/entries", "", nil)
	assert.Equal(t, "0", resp.Header.Get("X-Total-Count"))
}

func TestNotFound(t *testing.T) {
	ts := newTestServer(t)
	for _, p := range []string{"/entries/999", "/entries/abc", "/entries/-1"} {
		resp := do(t, http.MethodGet, ts.URL+p, "", nil)
		require.Equal(t, http.StatusNotFound, resp.StatusCode, p)
		body := decode[map[string]string](t, resp)
		assert.Equal(t, "Entry not found.", body["detail"])
	}

	resp := doJSON(t, http.MethodPatch, ts.URL+"/entries/999", map[string]string{"title": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+"/entries/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPatchAndPut(t *testing.T) {
	ts := newTestServer(t)
	resp := doJSON(t, http.MethodPost, ts.URL+"/entries", map[string]string{"title": "Hello", "content_md": "# Hi"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	loc := resp.Header.Get("Location")
	lastMod := resp.Header.Get("Last-Modified")
	tag := resp.Header.Get("ETag")

	// same title: nothing changes, not even the validators
	resp = doJSON(t, http.MethodPatch, ts.URL+loc, map[string]string{"title": "Hello"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, lastMod, resp.Header.Get("Last-Modified"))
	assert.Equal(t, tag, resp.Header.Get("ETag"))

	resp = doJSON(t, http.MethodPatch, ts.URL+loc, map[string]any{"title": nil, "content_md": "*new*"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[entryView](t, resp)
	assert.Equal(t, "Hello", got.Title)
	assert.Contains(t, got.ContentHTML, "<em>new</em>")
	assert.NotEqual(t, lastMod, resp.Header.Get("Last-Modified"))

	resp = doJSON(t, http.MethodPut, ts.URL+loc, map[string]string{"title": "Only"})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[map[string]map[string]string](t, resp)
	assert.Contains(t, body["detail"], "content_md")

	resp = doJSON(t, http.MethodPut, ts.URL+loc, map[string]string{"title": "Both", "content_md": "plain"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got = decode[entryView](t, resp)
	assert.Equal(t, "Both", got.Title)
	assert.Equal(t, "plain", got.ContentMD)

	resp = doJSON(t, http.MethodPatch, ts.URL+loc, map[string]string{"content_md": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestDelete(t *testing.T) {
	ts := newTestServer(t)
	resp := doJSON(t, http.MethodPost, ts.URL+"/entries", map[string]string{"title": "gone", "content_md": "x"})
	loc := resp.Header.Get("Location")

	resp = do(t, http.MethodDelete, ts.URL+loc, "", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = do(t, http.MethodDelete, ts.URL+loc, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListAndSearch(t *testing.T) {
	ts := newTestServer(t)
	for _, title := range []string{"alpha milk", "beta", "gamma MILK", "delta"} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/entries", map[string]string{"title": title, "content_md": "body"})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	}

	resp := do(t, http.MethodGet, ts.URL+"/entries", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "4", resp.Header.Get("X-Total-Count"))
	list := decode[[]entryView](t, resp)
	require.Len(t, list, 2, "default page size")
	assert.Equal(t, "delta", list[0].Title)
	assert.Equal(t, "gamma MILK", list[1].Title)

	resp = do(t, http.MethodGet, ts.URL+"/entries?limit=50", "", nil)
	assert.Len(t, decode[[]entryView](t, resp), 3, "clamped to max page size")

	resp = do(t, http.MethodGet, ts.URL+"/entries?limit=2&offset=3", "", nil)
	list = decode[[]entryView](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "alpha milk", list[0].Title)

	resp = do(t, http.MethodGet, ts.URL+"/entries?limit=x", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/entries?offset=-1", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = do(t, http.MethodGet, ts.URL+"/entries/search?q=milk", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hits := decode[[]entryView](t, resp)
	require.Len(t, hits, 2)
	assert.Equal(t, "gamma MILK", hits[0].Title)
	assert.Equal(t, "alpha milk", hits[1].Title)

	resp = do(t, http.MethodGet, ts.URL+"/entries/search?q=%20%20", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]entryView](t, resp))
}

func TestRequestIDPropagates(t *testing.T) {
	ts := newTestServer(t)
	resp := do(t, http.MethodGet, ts.URL+"/healthz", "", nil, "X-Request-ID", "abc-123")
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestRecoverer(t *testing.T) {
	h := recoverer(logging.Nop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestETagMatches(t *testing.T) {
	assert.True(t, etagMatches(`"a", "b"`, `"b"`))
	assert.True(t, etagMatches(`W/"b"`, `"b"`))
	assert.True(t, etagMatches(`*`, `"b"`))
	assert.False(t, etagMatches(``, `"b"`))
}
