package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/schemaviz/pkg/cache"
	"github.com/matzehuels/schemaviz/pkg/errors"
	"github.com/matzehuels/schemaviz/pkg/observability"
	"github.com/matzehuels/schemaviz/pkg/schema"
)

const visualYAML = `
Server:
  listener: "*Listener"
  handler: "*const fn (*Request) void"
  routes: "[]Route"
Listener:
  port: u16
  server: "?*Server"
Route:
  path: "[]const u8"
Unrelated:
  n: u8
`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "visual.yml")
	if err := os.WriteFile(path, []byte(visualYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newFileRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return NewRunner(c, nil, nil)
}

func TestExecute(t *testing.T) {
	r := newFileRunner(t)
	defer r.Close()

	result, err := r.Execute(context.Background(), Options{
		Input:   writeSchema(t),
		Formats: []string{"dot", "json"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.Stats.Records != 4 || result.Stats.References != 3 {
		t.Errorf("stats = %+v, want 4 records, 3 references", result.Stats)
	}
	if result.SchemaHash == "" {
		t.Error("SchemaHash should be set")
	}
	if result.CacheInfo.RenderHit {
		t.Error("first run should not hit the cache")
	}
	dot := string(result.Artifacts["dot"])
	for _, want := range []string{
		"struct0:f0 -> struct1",
		"struct0:f2 -> struct2",
		"struct1:f1 -> struct0",
		"handler: (Function)",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("dot artifact missing %q", want)
		}
	}
	if len(result.Artifacts["json"]) == 0 {
		t.Error("json artifact missing")
	}
}

func TestExecuteCachesArtifacts(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()
	opts := Options{Input: writeSchema(t), Formats: []string{"dot"}}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run should hit the cache")
	}
	if string(first.Artifacts["dot"]) != string(second.Artifacts["dot"]) {
		t.Error("cached artifact differs from rendered one")
	}

	opts.Refresh = true
	third, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}

	opts.Refresh = false
	opts.Formats = []string{"dot", "json"}
	fourth, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.RenderHit {
		t.Error("a newly requested format is not a full cache hit")
	}
	if len(fourth.Artifacts) != 2 {
		t.Errorf("got %d artifacts, want 2", len(fourth.Artifacts))
	}
}

func TestRunOptionsChangeCacheKey(t *testing.T) {
	r := newFileRunner(t)
	ctx := context.Background()
	s, err := schema.LoadFile(writeSchema(t), "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := r.Run(ctx, s, Options{Formats: []string{"dot"}}); err != nil {
		t.Fatal(err)
	}
	lr, err := r.Run(ctx, s, Options{Formats: []string{"dot"}, RankDir: "LR"})
	if err != nil {
		t.Fatal(err)
	}
	if lr.CacheInfo.RenderHit {
		t.Error("a different rankdir must not reuse the cached artifact")
	}
	if !strings.Contains(string(lr.Artifacts["dot"]), `rankdir = "LR"`) {
		t.Error("LR artifact missing rankdir")
	}
}

func TestRunFocus(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	s, err := schema.LoadFile(writeSchema(t), "")
	if err != nil {
		t.Fatal(err)
	}

	result, err := r.Run(context.Background(), s, Options{Formats: []string{"dot"}, Focus: "Listener", Depth: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Stats.Records != 2 {
		t.Errorf("focused records = %d, want 2 (Listener, Server)", result.Stats.Records)
	}
	if strings.Contains(string(result.Artifacts["dot"]), "Unrelated") {
		t.Error("focused output contains an unreachable record")
	}

	_, err = r.Run(context.Background(), s, Options{Formats: []string{"dot"}, Focus: "Missing"})
	if !errors.Is(err, errors.ErrCodeUnknownRecord) {
		t.Errorf("Run() error = %v, want UNKNOWN_RECORD", err)
	}
}

func TestExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no input", Options{}, errors.ErrCodeInvalidInput},
		{"missing file", Options{Input: filepath.Join(t.TempDir(), "nope.yml")}, errors.ErrCodeFileNotFound},
		{"unknown extension", Options{Input: "schema.txt"}, errors.ErrCodeUnsupportedSchema},
		{"bad format", Options{Input: writeSchema(t), Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(ctx, tt.opts)
			if !errors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRunInvalidSchema(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	s := &schema.Schema{Records: []schema.Record{{Name: "A"}, {Name: "A"}}}
	_, err := r.Run(context.Background(), s, Options{})
	if !errors.Is(err, errors.ErrCodeInvalidSchema) {
		t.Errorf("Run() error = %v, want INVALID_SCHEMA", err)
	}
}

func TestRunCancelled(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	s := schema.New()
	_ = s.AddRecord("A")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Run(ctx, s, Options{Formats: []string{"dot"}}); err != context.Canceled {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}

func TestHashSchemaOrderSensitive(t *testing.T) {
	a := schema.New()
	_ = a.AddRecord("A")
	_ = a.AddRecord("B")
	b := schema.New()
	_ = b.AddRecord("B")
	_ = b.AddRecord("A")

	if HashSchema(a) == HashSchema(b) {
		t.Error("reordered schemas must hash differently")
	}
	if HashSchema(a) != HashSchema(a) {
		t.Error("HashSchema should be deterministic")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) add(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLoadStart(context.Context, string) { h.add("load-start") }
func (h *recordingHooks) OnLoadComplete(_ context.Context, _ string, n int, _ time.Duration, err error) {
	h.add("load-complete")
}
func (h *recordingHooks) OnCompileComplete(context.Context, int, int, time.Duration, error) {
	h.add("compile")
}
func (h *recordingHooks) OnRenderStart(context.Context, []string) { h.add("render-start") }
func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.add("render-complete")
}

type countingCacheHooks struct {
	observability.NoopCacheHooks
	mu                sync.Mutex
	hits, misses, set int
}

func (h *countingCacheHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	h.hits++
	h.mu.Unlock()
}
func (h *countingCacheHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	h.misses++
	h.mu.Unlock()
}
func (h *countingCacheHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	h.set++
	h.mu.Unlock()
}

func TestExecuteEmitsHooks(t *testing.T) {
	observability.Reset()
	defer observability.Reset()

	ph := &recordingHooks{}
	ch := &countingCacheHooks{}
	observability.SetPipelineHooks(ph)
	observability.SetCacheHooks(ch)

	r := newFileRunner(t)
	opts := Options{Input: writeSchema(t), Formats: []string{"dot", "json"}}
	for i := 0; i < 2; i++ {
		if _, err := r.Execute(context.Background(), opts); err != nil {
			t.Fatal(err)
		}
	}

	want := "load-start,load-complete,compile,render-start,render-complete"
	if got := strings.Join(ph.events[:5], ","); got != want {
		t.Errorf("hook order = %s, want %s", got, want)
	}
	if len(ph.events) != 10 {
		t.Errorf("got %d pipeline events, want 10", len(ph.events))
	}
	if ch.misses != 2 || ch.set != 2 || ch.hits != 2 {
		t.Errorf("cache hooks: hits %d, misses %d, set %d; want 2/2/2", ch.hits, ch.misses, ch.set)
	}
}
