package pipeline

import (
	"github.com/matzehuels/schemaviz/pkg/compiler"
	"github.com/matzehuels/schemaviz/pkg/schema"
)

// Compile builds the graph for s and applies opts.Focus when set.
func Compile(s *schema.Schema, opts Options) (*compiler.Graph, error) {
	g, err := compiler.Compile(s)
	if err != nil {
		return nil, err
	}
	if opts.Focus == "" {
		return g, nil
	}
	return compiler.Focus(g, opts.Focus, opts.Depth)
}
