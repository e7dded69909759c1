package schema

import (
	"sort"

	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/matzehuels/schemaviz/pkg/errors"
)

// hclRecordBlock is the only block type accepted at the top level.
const hclRecordBlock = "record"

// HCL loads schemas written as labeled record blocks:
//
//	record "Server" {
//	  listener = "*Listener"
//	  handler  = "*const fn (*Request) void"
//	}
//
// Every attribute must be a literal string. Attribute order follows the
// source position, since HCL bodies store attributes in a map.
type HCL struct{}

func (h *HCL) Type() string { return "hcl" }

func (h *HCL) Supports(filename string) bool {
	return hasExt(filename, ".hcl")
}

func (h *HCL) Parse(data []byte, filename string) (*Schema, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchema, diags, "parse %s", filename)
	}

	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, errors.New(errors.ErrCodeInvalidSchema, "%s: unexpected HCL body type %T", filename, file.Body)
	}
	if len(body.Attributes) > 0 {
		attr := firstAttribute(body.Attributes)
		return nil, errors.New(errors.ErrCodeInvalidSchema, "%s: attribute %q must be inside a record block", attr.SrcRange, attr.Name)
	}

	s := New()
	for _, block := range body.Blocks {
		if block.Type != hclRecordBlock || len(block.Labels) != 1 {
			return nil, errors.New(errors.ErrCodeInvalidSchema, "%s: expected `record \"<name>\" { ... }`, got %q block with %d labels",
				block.DefRange(), block.Type, len(block.Labels))
		}
		name := block.Labels[0]
		if len(block.Body.Blocks) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidSchema, "%s: record %q cannot contain nested blocks",
				block.Body.Blocks[0].DefRange(), name)
		}

		fields, err := hclFields(name, block.Body.Attributes)
		if err != nil {
			return nil, err
		}
		if err := s.AddRecord(name, fields...); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func hclFields(record string, attrs hclsyntax.Attributes) ([]Field, error) {
	ordered := sortedAttributes(attrs)
	fields := make([]Field, 0, len(ordered))
	for _, attr := range ordered {
		val, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, errors.Wrap(errors.ErrCodeInvalidSchema, diags, "%s: %s.%s", attr.SrcRange, record, attr.Name)
		}
		if val.IsNull() || !val.IsKnown() || val.Type() != cty.String {
			return nil, errors.New(errors.ErrCodeInvalidSchema, "%s: %s.%s: type must be a string", attr.SrcRange, record, attr.Name)
		}
		fields = append(fields, Field{Name: attr.Name, Type: val.AsString()})
	}
	return fields, nil
}

func sortedAttributes(attrs hclsyntax.Attributes) []*hclsyntax.Attribute {
	out := make([]*hclsyntax.Attribute, 0, len(attrs))
	for _, a := range attrs {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SrcRange.Start.Byte < out[j].SrcRange.Start.Byte
	})
	return out
}

func firstAttribute(attrs hclsyntax.Attributes) *hclsyntax.Attribute {
	return sortedAttributes(attrs)[0]
}
