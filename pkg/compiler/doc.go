// Package compiler turns a [schema.Schema] into a class-diagram graph.
//
// # Overview
//
// Each record becomes a [Node] carrying a synthetic identifier ("struct0",
// "struct1", ...) and one display label per field. Each field whose type
// names another record becomes an [Edge] from that field's slot to the
// referenced node. Rendering is left to adapters such as pkg/render/dot;
// this package only computes values.
//
// # Field Labels
//
// Labels are "<field>: <type>" with the type copied verbatim. Types that
// contain [FunctionMarker] ("*const fn") are collapsed to "(Function)":
//
//	handler: *const fn (*Request) void   ->  handler: (Function)
//	port: u16                            ->  port: u16
//
// # References
//
// A value-typed field references a record when its type, with every
// [Decorators] character trimmed from both ends, equals the record name
// exactly:
//
//	*Listener, ?Listener, []Listener, [*]Listener   ->  Listener
//	ListenerConfig                                  ->  no edge
//	std.ArrayList(Listener)                         ->  no edge
//
// Nothing else about the type is interpreted. Unresolvable types are never
// errors, references to the record itself become self-loops, and two
// fields pointing at the same record give two edges.
//
// # Focus
//
// [Focus] trims a graph to what one record can reach, which keeps large
// schemas readable:
//
//	g, _ := compiler.Compile(s)
//	sub, err := compiler.Focus(g, "Server", 2)
//
// # Determinism
//
// Node order follows schema order and edge order follows record order then
// field order, so compiling the same schema twice yields identical graphs.
package compiler
