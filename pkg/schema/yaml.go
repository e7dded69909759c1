package schema

import (
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/schemaviz/pkg/errors"
)

// YAML loads schemas written as a mapping of record name to a mapping of
// field name to type string:
//
//	Allocator:
//	  ptr: "*anyopaque"
//	  vtable: "*const VTable"
//	VTable:
//	  alloc: "*const fn (*anyopaque, usize) ?[*]u8"
//
// Documents are walked as [yaml.Node] trees so key order is preserved.
// Aliases are followed and "<<" merge keys are expanded in place, with
// explicit keys taking precedence over merged ones.
// JSON is a subset of YAML, so .json files are handled here as well.
type YAML struct{}

func (y *YAML) Type() string { return "yaml" }

func (y *YAML) Supports(filename string) bool {
	return hasExt(filename, ".yml", ".yaml", ".json")
}

func (y *YAML) Parse(data []byte, filename string) (*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "parse %s", filename)
	}

	s := New()
	// An empty document has no content node.
	if len(doc.Content) == 0 {
		return s, nil
	}

	root := resolveYAML(doc.Content[0])
	if root.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "%s:%d: expected a mapping of records", filename, root.Line)
	}

	records, err := yamlPairs(root, filename)
	if err != nil {
		return nil, err
	}
	for _, p := range records {
		key, body := p.key, p.value
		if key.Kind != yaml.ScalarNode {
			return nil, errors.New(errors.ErrCodeInvalidSchema, "%s:%d: record name must be a scalar", filename, key.Line)
		}

		fields, err := yamlFields(key.Value, body, filename)
		if err != nil {
			return nil, err
		}
		if err := s.AddRecord(key.Value, fields...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func yamlFields(record string, body *yaml.Node, filename string) ([]Field, error) {
	body = resolveYAML(body)
	if isYAMLNull(body) {
		return nil, nil
	}
	if body.Kind != yaml.MappingNode {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "%s:%d: record %q must be a mapping of fields", filename, body.Line, record)
	}

	pairs, err := yamlPairs(body, filename)
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, len(pairs))
	for _, p := range pairs {
		key, val := p.key, resolveYAML(p.value)
		if key.Kind != yaml.ScalarNode {
			return nil, errors.New(errors.ErrCodeInvalidSchema, "%s:%d: record %q: field name must be a scalar", filename, key.Line, record)
		}
		if val.Kind != yaml.ScalarNode || isYAMLNull(val) {
			return nil, errors.New(errors.ErrCodeInvalidSchema, "%s:%d: %s.%s: type must be a string", filename, val.Line, record, key.Value)
		}
		fields = append(fields, Field{Name: key.Value, Type: val.Value})
	}
	return fields, nil
}

func isYAMLNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

type yamlPair struct {
	key, value *yaml.Node
}

// yamlPairs returns the entries of mapping m in document order with merge
// keys expanded. Merged entries are spliced in at the position of their "<<"
// key. A key written explicitly anywhere in m overrides a merged one, and
// among merged mappings the first to define a key wins.
func yamlPairs(m *yaml.Node, filename string) ([]yamlPair, error) {
	return mergeYAML(m, filename, make(map[*yaml.Node]bool))
}

func mergeYAML(m *yaml.Node, filename string, active map[*yaml.Node]bool) ([]yamlPair, error) {
	if active[m] {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "%s:%d: mapping merges itself", filename, m.Line)
	}
	active[m] = true
	defer delete(active, m)

	explicit := make(map[string]bool)
	for i := 0; i+1 < len(m.Content); i += 2 {
		if key := resolveYAML(m.Content[i]); !isYAMLMerge(key) {
			explicit[key.Value] = true
		}
	}

	pairs := make([]yamlPair, 0, len(m.Content)/2)
	merged := make(map[string]bool)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := resolveYAML(m.Content[i]), m.Content[i+1]
		if !isYAMLMerge(key) {
			pairs = append(pairs, yamlPair{key: key, value: val})
			continue
		}

		sources, err := mergeSources(val, filename)
		if err != nil {
			return nil, err
		}
		for _, src := range sources {
			inherited, err := mergeYAML(src, filename, active)
			if err != nil {
				return nil, err
			}
			for _, p := range inherited {
				if explicit[p.key.Value] || merged[p.key.Value] {
					continue
				}
				merged[p.key.Value] = true
				pairs = append(pairs, p)
			}
		}
	}
	return pairs, nil
}

// mergeSources returns the mappings named by the value of a "<<" key: either
// a single mapping or a sequence of them.
func mergeSources(val *yaml.Node, filename string) ([]*yaml.Node, error) {
	val = resolveYAML(val)
	switch val.Kind {
	case yaml.MappingNode:
		return []*yaml.Node{val}, nil
	case yaml.SequenceNode:
		sources := make([]*yaml.Node, 0, len(val.Content))
		for _, item := range val.Content {
			item = resolveYAML(item)
			if item.Kind != yaml.MappingNode {
				return nil, errors.New(errors.ErrCodeInvalidSchema, "%s:%d: merge list entries must be mappings", filename, item.Line)
			}
			sources = append(sources, item)
		}
		return sources, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidSchema, "%s:%d: merge value must be a mapping or a list of mappings", filename, val.Line)
}

// resolveYAML follows alias nodes to the anchored node they refer to.
func resolveYAML(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func isYAMLMerge(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Value == "<<" && (n.Tag == "" || n.Tag == "!" || n.Tag == "!!merge")
}
