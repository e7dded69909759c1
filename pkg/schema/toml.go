package schema

import (
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/schemaviz/pkg/errors"
)

// TOML loads schemas written as one table per record:
//
//	[Server]
//	listener = "*Listener"
//	handler  = "*const fn (*Request) void"
//
//	["std.net.Address"]
//	port = "u16"
//
// Record and field order follow the document, taken from the decoder's
// key metadata.
type TOML struct{}

func (t *TOML) Type() string { return "toml" }

func (t *TOML) Supports(filename string) bool {
	return hasExt(filename, ".toml")
}

func (t *TOML) Parse(data []byte, filename string) (*Schema, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "parse %s", filename)
	}

	var (
		order  []string
		fields = make(map[string][]string)
	)
	for _, key := range md.Keys() {
		switch len(key) {
		case 1:
			order = append(order, key[0])
		case 2:
			fields[key[0]] = append(fields[key[0]], key[1])
		default:
			return nil, errors.New(errors.ErrCodeInvalidSchema, "%s: %s: records cannot be nested", filename, key)
		}
	}

	s := New()
	for _, name := range order {
		body, ok := raw[name].(map[string]any)
		if !ok {
			return nil, errors.New(errors.ErrCodeInvalidSchema, "%s: record %q must be a table of fields", filename, name)
		}

		names := completeKeys(fields[name], body)
		rec := make([]Field, 0, len(names))
		for _, f := range names {
			typ, ok := body[f].(string)
			if !ok {
				return nil, errors.New(errors.ErrCodeInvalidSchema, "%s: %s.%s: type must be a string", filename, name, f)
			}
			rec = append(rec, Field{Name: f, Type: typ})
		}
		if err := s.AddRecord(name, rec...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// completeKeys returns the ordered keys reported by the decoder followed by
// any keys of body it did not report, sorted for determinism.
func completeKeys(ordered []string, body map[string]any) []string {
	seen := make(map[string]struct{}, len(ordered))
	out := make([]string, 0, len(body))
	for _, k := range ordered {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	var rest []string
	for k := range body {
		if _, ok := seen[k]; !ok {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
