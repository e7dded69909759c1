package compiler

import (
	"strings"

	"github.com/matzehuels/schemaviz/pkg/registry"
	"github.com/matzehuels/schemaviz/pkg/schema"
)

// FunctionMarker is the substring that marks a field type as a function
// pointer. Any type containing it is rendered as "(Function)" and never
// resolved to a reference.
const FunctionMarker = "*const fn"

// Decorators is the set of characters stripped from both ends of a type
// string before it is matched against record names.
const Decorators = "[]*?!"

// FunctionLabel replaces the type text of function-typed fields.
const FunctionLabel = "(Function)"

// Kind classifies a field by its type string.
type Kind int

const (
	// KindValue is any field that is not a function pointer. Value fields
	// are candidates for reference resolution.
	KindValue Kind = iota
	// KindFunction is a field whose type contains [FunctionMarker].
	KindFunction
)

// String returns "value" or "function".
func (k Kind) String() string {
	if k == KindFunction {
		return "function"
	}
	return "value"
}

// Node is one compiled record: its synthetic identifier, its original name
// and one label per field, in field order.
type Node struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Labels []string `json:"labels"`
}

// Edge is a resolved reference from field slot Slot of node From to node To.
type Edge struct {
	From string `json:"from"`
	Slot int    `json:"slot"`
	To   string `json:"to"`
}

// Graph is the result of compiling a schema. Nodes follow schema order and
// edges follow record order, then field order. A Graph is never modified
// after it is returned.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Classify reports whether typ is a function pointer or a plain value.
func Classify(typ string) Kind {
	if strings.Contains(typ, FunctionMarker) {
		return KindFunction
	}
	return KindValue
}

// StripDecorators removes every leading and trailing [Decorators] character
// from typ in a single pass: "?*[]Node" becomes "Node", "[]u8" becomes "u8".
// Characters in the middle of the string are kept.
func StripDecorators(typ string) string {
	return strings.Trim(typ, Decorators)
}

// Label formats a field for display as "<name>: <type>", or
// "<name>: (Function)" for function-typed fields.
func Label(f schema.Field) string {
	if Classify(f.Type) == KindFunction {
		return f.Name + ": " + FunctionLabel
	}
	return f.Name + ": " + f.Type
}

// Compile turns a schema into a [Graph].
//
// Every record becomes a node whose identifier comes from a fresh
// [registry.Registry]. A value-typed field whose stripped type exactly names
// a record of s produces an edge from that field's slot to the record's
// node. Unresolvable types are not errors; they simply produce no edge.
// Self-references produce self-loops and duplicate references are kept.
//
// Compile returns an INVALID_SCHEMA error and no graph if s is nil or has
// duplicate record or field names.
func Compile(s *schema.Schema) (*Graph, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	reg := registry.New(s)
	g := &Graph{
		Nodes: make([]Node, 0, len(s.Records)),
		Edges: []Edge{},
	}

	for _, rec := range s.Records {
		id := reg.MustID(rec.Name)
		labels := make([]string, len(rec.Fields))
		for slot, f := range rec.Fields {
			labels[slot] = Label(f)
			if Classify(f.Type) == KindFunction {
				continue
			}
			if target, ok := reg.ID(StripDecorators(f.Type)); ok {
				g.Edges = append(g.Edges, Edge{From: id, Slot: slot, To: target})
			}
		}
		g.Nodes = append(g.Nodes, Node{ID: id, Name: rec.Name, Labels: labels})
	}
	return g, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.Edges) }

// Node returns the node with the given identifier.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeByName returns the node compiled from the named record.
func (g *Graph) NodeByName(name string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n, true
		}
	}
	return Node{}, false
}

// Outgoing returns the edges leaving id, in graph order.
func (g *Graph) Outgoing(id string) []Edge {
	var out []Edge
	for _, e := range g.Edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}
