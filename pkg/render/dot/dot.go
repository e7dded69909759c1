package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/schemaviz/pkg/compiler"
	"github.com/matzehuels/schemaviz/pkg/render"
)

// DefaultFontSize is the font size used for the graph, nodes and edges
// when [Options.FontSize] is zero.
const DefaultFontSize = 12

// Options configures class-diagram rendering.
type Options struct {
	// RankDir sets the Graphviz layout direction (TB, LR, BT or RL).
	// Empty leaves the Graphviz default (TB) and emits nothing.
	RankDir string

	// FontSize applies to the graph, node and edge defaults.
	// Zero means [DefaultFontSize].
	FontSize int
}

func (o Options) fontSize() int {
	if o.FontSize <= 0 {
		return DefaultFontSize
	}
	return o.FontSize
}

// horizontal reports whether the layout flips record orientation.
func (o Options) horizontal() bool {
	switch strings.ToUpper(o.RankDir) {
	case "LR", "RL":
		return true
	}
	return false
}

// ToDOT converts a compiled graph to Graphviz DOT.
//
// Every node is a record whose first cell is the record name and whose
// following cells are the field labels, each with the port f<slot>. Edges
// leave from the field's port and point at the whole target node:
//
//	struct0:f1 -> struct3
//
// The result can be rendered with [RenderSVG], [RenderPDF] or [RenderPNG].
func ToDOT(g *compiler.Graph, opts Options) string {
	fs := opts.fontSize()

	var buf bytes.Buffer
	buf.WriteString("digraph {\n")
	fmt.Fprintf(&buf, "  fontsize = %d\n", fs)
	if opts.RankDir != "" {
		fmt.Fprintf(&buf, "  rankdir = %q\n", strings.ToUpper(opts.RankDir))
	}
	buf.WriteString("\n")
	fmt.Fprintf(&buf, "  node [\n    fontsize = %d\n    shape = \"record\"\n  ]\n\n", fs)
	fmt.Fprintf(&buf, "  edge [\n    fontsize = %d\n  ]\n", fs)

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "\n  %s [\n", n.ID)
		fmt.Fprintf(&buf, "    label = \"%s\"\n", recordLabel(n, opts.horizontal()))
		buf.WriteString("  ]\n")
	}

	if len(g.Edges) > 0 {
		buf.WriteString("\n")
	}
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %s:f%d -> %s\n", e.From, e.Slot, e.To)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// recordLabel builds the record-shape label. In TB/BT layouts the outer
// braces turn the top-level horizontal split into a vertical stack; LR/RL
// layouts already stack top-level cells vertically.
func recordLabel(n compiler.Node, horizontal bool) string {
	var b strings.Builder
	if !horizontal {
		b.WriteByte('{')
	}
	b.WriteString(escape(n.Name))
	for slot, label := range n.Labels {
		fmt.Fprintf(&b, "|<f%d>%s\\l", slot, escape(label))
	}
	if !horizontal {
		b.WriteByte('}')
	}
	return b.String()
}

// labelEscaper escapes text for a record label inside a quoted DOT string.
// Backslash and quote are DOT string escapes; the rest are record syntax.
// Line breaks become left-justified record line breaks.
var labelEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
	"\r\n", `\l`,
	"\n", `\l`,
	"\r", `\l`,
)

func escape(s string) string {
	return labelEscaper.Replace(s)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing starts at the
// origin and carries explicit pixel dimensions.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// A scale of 2.0 produces a 2x resolution image suitable for high-DPI displays.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
