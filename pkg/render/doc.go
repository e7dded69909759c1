// Package render holds output-format helpers shared by the diagram
// renderers.
//
// # Formats
//
// [Formats] lists the supported outputs: dot, svg, png, pdf and json.
// [ParseFormats] reads the comma-separated lists accepted by the CLI and the
// API, and [ContentType] maps a format to the MIME type the API serves.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg):
//
//	src := dot.ToDOT(g, dot.Options{})
//	svg, err := dot.RenderSVG(src)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// The Graphviz class-diagram renderer lives in the [dot] subpackage.
//
// [dot]: github.com/matzehuels/schemaviz/pkg/render/dot
package render
