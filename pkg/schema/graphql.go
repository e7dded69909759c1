package schema

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/matzehuels/schemaviz/pkg/errors"
)

// GraphQL loads record types from a GraphQL SDL document. Object, interface
// and input object definitions become records; each field's type is its SDL
// rendering (e.g. "[Post!]!"), whose brackets and bangs are stripped during
// reference resolution. Field arguments are ignored.
//
// `extend type` definitions append their fields to the extended record.
type GraphQL struct{}

func (g *GraphQL) Type() string { return "graphql" }

func (g *GraphQL) Supports(filename string) bool {
	return hasExt(filename, ".graphql", ".graphqls", ".gql")
}

func (g *GraphQL) Parse(data []byte, filename string) (*Schema, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: filename, Input: string(data)})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "parse %s", filename)
	}

	var (
		order  []string
		fields = make(map[string][]Field)
	)
	for _, def := range doc.Definitions {
		if !isRecordKind(def.Kind) {
			continue
		}
		if _, ok := fields[def.Name]; ok {
			return nil, errors.New(errors.ErrCodeInvalidSchema, "%s: duplicate record %q", filename, def.Name)
		}
		order = append(order, def.Name)
		fields[def.Name] = graphqlFields(def)
	}
	for _, ext := range doc.Extensions {
		if !isRecordKind(ext.Kind) {
			continue
		}
		if _, ok := fields[ext.Name]; !ok {
			order = append(order, ext.Name)
		}
		fields[ext.Name] = append(fields[ext.Name], graphqlFields(ext)...)
	}

	s := New()
	for _, name := range order {
		if err := s.AddRecord(name, fields[name]...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func isRecordKind(k ast.DefinitionKind) bool {
	return k == ast.Object || k == ast.Interface || k == ast.InputObject
}

func graphqlFields(def *ast.Definition) []Field {
	out := make([]Field, 0, len(def.Fields))
	for _, f := range def.Fields {
		out = append(out, Field{Name: f.Name, Type: f.Type.String()})
	}
	return out
}
