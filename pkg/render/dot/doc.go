// Package dot renders compiled schema graphs as Graphviz record diagrams.
//
// [ToDOT] produces the DOT source: one record-shaped node per schema
// record, with one addressable cell per field, and one edge per resolved
// reference from the field's cell to the referenced node.
//
//	g, _ := compiler.Compile(s)
//	src := dot.ToDOT(g, dot.Options{RankDir: "LR"})
//	svg, err := dot.RenderSVG(src)
//
// Record names and field labels are escaped for record-label syntax, so
// types such as "[]u8", "?*const fn (*T) void" or names containing "<>"
// render as written.
//
// # Rendering
//
// [RenderSVG] runs Graphviz in-process via [github.com/goccy/go-graphviz].
// [RenderPDF] and [RenderPNG] convert that SVG with rsvg-convert, which must
// be installed separately.
package dot
