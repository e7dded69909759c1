package pipeline

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/schemaviz/pkg/compiler"
	"github.com/matzehuels/schemaviz/pkg/errors"
	"github.com/matzehuels/schemaviz/pkg/render"
)

func testGraph() *compiler.Graph {
	return &compiler.Graph{
		Nodes: []compiler.Node{
			{ID: "struct0", Name: "A", Labels: []string{"x: *B"}},
			{ID: "struct1", Name: "B", Labels: []string{"y: i32"}},
		},
		Edges: []compiler.Edge{{From: "struct0", Slot: 0, To: "struct1"}},
	}
}

func TestRenderDOTAndJSON(t *testing.T) {
	opts := Options{Formats: []string{"dot", "json"}, RankDir: "LR"}
	opts.SetDefaults()

	artifacts, err := Render(testGraph(), opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	src := string(artifacts["dot"])
	if !strings.Contains(src, "struct0:f0 -> struct1") || !strings.Contains(src, `rankdir = "LR"`) {
		t.Errorf("unexpected DOT:\n%s", src)
	}

	var g compiler.Graph
	if err := json.Unmarshal(artifacts["json"], &g); err != nil {
		t.Fatalf("json artifact does not decode: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 || g.Nodes[1].Labels[0] != "y: i32" {
		t.Errorf("decoded graph = %+v", g)
	}
}

func TestRenderSVG(t *testing.T) {
	opts := Options{Formats: []string{"svg"}}
	opts.SetDefaults()

	artifacts, err := Render(testGraph(), opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(artifacts["svg"]), "<svg") {
		t.Error("svg artifact missing <svg> tag")
	}
}

func TestRenderRaster(t *testing.T) {
	if !render.ConverterAvailable() {
		t.Skip("rsvg-convert not installed")
	}
	opts := Options{Formats: []string{"png", "pdf"}}
	opts.SetDefaults()

	artifacts, err := Render(testGraph(), opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasPrefix(string(artifacts["png"]), "\x89PNG") {
		t.Error("png artifact has wrong magic")
	}
	if !strings.HasPrefix(string(artifacts["pdf"]), "%PDF") {
		t.Error("pdf artifact has wrong magic")
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	_, err := Render(testGraph(), Options{Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render() error = %v, want INVALID_FORMAT", err)
	}
}

func TestMarshalGraphEmptyLists(t *testing.T) {
	data, err := MarshalGraph(&compiler.Graph{Nodes: []compiler.Node{}, Edges: []compiler.Edge{}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"edges": []`) {
		t.Errorf("empty edges should encode as []: %s", data)
	}
}
