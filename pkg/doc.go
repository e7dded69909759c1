// Package pkg provides the libraries behind schemaviz, a compiler from
// record schemas to Graphviz class diagrams.
//
// # Overview
//
// The pkg directory is organized by pipeline stage:
//
//  1. [schema] - Ordered record/field model and the YAML, TOML, HCL and GraphQL loaders
//  2. [registry] - Synthetic node identifiers for records
//  3. [compiler] - Field labels, reference resolution and focusing
//  4. [render] - DOT generation, Graphviz SVG and PNG/PDF conversion
//  5. [pipeline] - Orchestration (load → compile → render) with caching
//
// Supporting packages: [cache], [observability], [errors] and [buildinfo].
//
// # Architecture
//
//	schema file (.yml .toml .hcl .graphql)
//	         ↓
//	    [schema] package (ordered records)
//	         ↓
//	    [compiler] package (nodes, labels, edges)
//	         ↓
//	    [render/dot] package (DOT, SVG)
//	         ↓
//	    DOT/SVG/PNG/PDF/JSON output
//
// # Quick Start
//
//	s, _ := schema.LoadFile("zig-out/visual.yml", "")
//	g, _ := compiler.Compile(s)
//	svg, _ := dot.RenderSVG(dot.ToDOT(g, dot.Options{}))
//
// [schema]: github.com/matzehuels/schemaviz/pkg/schema
// [registry]: github.com/matzehuels/schemaviz/pkg/registry
// [compiler]: github.com/matzehuels/schemaviz/pkg/compiler
// [render]: github.com/matzehuels/schemaviz/pkg/render
// [render/dot]: github.com/matzehuels/schemaviz/pkg/render/dot
// [pipeline]: github.com/matzehuels/schemaviz/pkg/pipeline
// [cache]: github.com/matzehuels/schemaviz/pkg/cache
// [observability]: github.com/matzehuels/schemaviz/pkg/observability
// [errors]: github.com/matzehuels/schemaviz/pkg/errors
// [buildinfo]: github.com/matzehuels/schemaviz/pkg/buildinfo
package pkg
