package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/schemaviz/pkg/cache"
	"github.com/matzehuels/schemaviz/pkg/compiler"
	"github.com/matzehuels/schemaviz/pkg/observability"
	"github.com/matzehuels/schemaviz/pkg/pipeline"
)

const allocatorYAML = `
Allocator:
  ptr: "*anyopaque"
  vtable: "*VTable"
VTable:
  alloc: "*const fn (*anyopaque, usize) ?[*]u8"
  free: "*const fn (*anyopaque, []u8) void"
`

func newTestServer(t *testing.T, c cache.Cache) *Server {
	t.Helper()
	runner := pipeline.NewRunner(c, nil, nil)
	t.Cleanup(func() { _ = runner.Close() })
	return New(runner, nil)
}

func do(t *testing.T, s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodGet, "/healthz", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "version")
}

func TestCompile(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/v1/compile?type=yaml", "", allocatorYAML)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var g compiler.Graph
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "struct0", g.Nodes[0].ID)
	assert.Equal(t, []string{"ptr: *anyopaque", "vtable: *VTable"}, g.Nodes[0].Labels)
	assert.Equal(t, []string{"alloc: (Function)", "free: (Function)"}, g.Nodes[1].Labels)
	assert.Equal(t, []compiler.Edge{{From: "struct0", Slot: 1, To: "struct1"}}, g.Edges)
}

func TestCompile_ContentTypeDetection(t *testing.T) {
	s := newTestServer(t, nil)
	body := `{"A": {"b": "*B"}, "B": {}}`
	rec := do(t, s, http.MethodPost, "/api/v1/compile", "application/json; charset=utf-8", body)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var g compiler.Graph
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	assert.Len(t, g.Edges, 1)
}

func TestCompile_Focus(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/v1/compile?type=yaml&focus=VTable", "", allocatorYAML)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var g compiler.Graph
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &g))
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "struct1", g.Nodes[0].ID)
	assert.Empty(t, g.Edges)
}

func TestRender_DOT(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/v1/render?type=yaml&format=dot&rankdir=LR&fontsize=10", "", allocatorYAML)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/vnd.graphviz; charset=utf-8", rec.Header().Get("Content-Type"))
	out := rec.Body.String()
	assert.Contains(t, out, `rankdir = "LR"`)
	assert.Contains(t, out, "fontsize = 10")
	assert.Contains(t, out, "struct0:f1 -> struct1")
}

func TestRender_SVGDefault(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/api/v1/render", "application/yaml", allocatorYAML)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")
}

func TestRender_CacheHeader(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	s := newTestServer(t, fc)

	target := "/api/v1/render?type=yaml&format=dot"
	first := do(t, s, http.MethodPost, target, "", allocatorYAML)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "miss", first.Header().Get(CacheHeader))

	second := do(t, s, http.MethodPost, target, "", allocatorYAML)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "hit", second.Header().Get(CacheHeader))
	assert.Equal(t, first.Body.String(), second.Body.String())

	refreshed := do(t, s, http.MethodPost, target+"&refresh=true", "", allocatorYAML)
	assert.Equal(t, "miss", refreshed.Header().Get(CacheHeader))
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		contentType string
		body        string
		wantStatus  int
		wantCode    string
	}{
		{"invalid schema", "/api/v1/compile?type=yaml", "", "- a\n- b\n", http.StatusBadRequest, "INVALID_SCHEMA"},
		{"empty body", "/api/v1/compile?type=yaml", "", "", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad depth", "/api/v1/compile?type=yaml&depth=x", "", allocatorYAML, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", "/api/v1/render?type=yaml&format=gif", "", allocatorYAML, http.StatusBadRequest, "INVALID_FORMAT"},
		{"bad rankdir", "/api/v1/render?type=yaml&format=dot&rankdir=UP", "", allocatorYAML, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown focus", "/api/v1/compile?type=yaml&focus=Nope", "", allocatorYAML, http.StatusNotFound, "UNKNOWN_RECORD"},
		{"unknown type", "/api/v1/compile?type=xml", "", allocatorYAML, http.StatusUnsupportedMediaType, "UNSUPPORTED_SCHEMA"},
		{"no type", "/api/v1/compile", "", allocatorYAML, http.StatusUnsupportedMediaType, "UNSUPPORTED_SCHEMA"},
		{"unknown content type", "/api/v1/compile", "text/plain", allocatorYAML, http.StatusUnsupportedMediaType, "UNSUPPORTED_SCHEMA"},
	}

	s := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, tt.contentType, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			body := decodeError(t, rec)
			assert.EqualValues(t, tt.wantCode, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestBodyLimit(t *testing.T) {
	runner := pipeline.NewRunner(nil, nil, nil)
	s := New(runner, nil, WithBodyLimit(16))

	rec := do(t, s, http.MethodPost, "/api/v1/compile?type=yaml", "", allocatorYAML)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestNotFoundAndMethod(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.EqualValues(t, "NOT_FOUND", decodeError(t, rec).Code)

	rec = do(t, s, http.MethodGet, "/api/v1/render", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(t, s, http.MethodGet, "/healthz", "", "")
	assert.Len(t, rec.Header().Get(RequestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks
	mu       sync.Mutex
	requests []string
	statuses []int
}

func (h *recordingHTTPHooks) OnRequest(_ context.Context, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	s := newTestServer(t, nil)
	do(t, s, http.MethodGet, "/healthz", "", "")
	do(t, s, http.MethodPost, "/api/v1/compile?type=xml", "", "A: {}")

	assert.Equal(t, []string{"GET /healthz", "POST /api/v1/compile"}, hooks.requests)
	assert.Equal(t, []int{http.StatusOK, http.StatusUnsupportedMediaType}, hooks.statuses)
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s := newTestServer(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
