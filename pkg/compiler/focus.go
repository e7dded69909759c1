package compiler

import (
	"github.com/matzehuels/schemaviz/pkg/errors"
)

// Focus returns the part of g reachable from the named record by following
// references forward. With depth <= 0 the whole reachable set is kept;
// otherwise at most depth hops are followed.
//
// Nodes keep their identifiers and relative order, so a focused graph
// renders with the same node IDs and ports as the full one. Only edges
// whose endpoints both survive are kept. An unknown name returns an
// UNKNOWN_RECORD error.
func Focus(g *Graph, name string, depth int) (*Graph, error) {
	root, ok := g.NodeByName(name)
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownRecord, "record %q not found", name)
	}

	adj := make(map[string][]string, len(g.Nodes))
	for _, e := range g.Edges {
		adj[e.From] = append(adj[e.From], e.To)
	}

	keep := map[string]bool{root.ID: true}
	frontier := []string{root.ID}
	for hop := 0; len(frontier) > 0 && (depth <= 0 || hop < depth); hop++ {
		var next []string
		for _, id := range frontier {
			for _, to := range adj[id] {
				if !keep[to] {
					keep[to] = true
					next = append(next, to)
				}
			}
		}
		frontier = next
	}

	out := &Graph{Nodes: []Node{}, Edges: []Edge{}}
	for _, n := range g.Nodes {
		if keep[n.ID] {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if keep[e.From] && keep[e.To] {
			out.Edges = append(out.Edges, e)
		}
	}
	return out, nil
}
