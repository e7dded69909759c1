package schema

import (
	"github.com/matzehuels/schemaviz/pkg/errors"
)

// Field is a named, typed slot within a record. Type is free-form text
// (e.g. "*Allocator", "[]u8", "?*const fn() void") and is never parsed.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Record is a named structured type with an ordered list of fields.
type Record struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// Schema is an ordered collection of records.
//
// Record order and field order are significant: they determine node
// identifiers, rendered field order and edge slot indices. Use [New] and
// [Schema.AddRecord] to build a schema with uniqueness checks, or construct
// the struct directly and call [Schema.Validate].
type Schema struct {
	Records []Record `json:"records"`

	index map[string]int
}

// New creates an empty schema.
func New() *Schema {
	return &Schema{index: make(map[string]int)}
}

// AddRecord appends a record with the given fields. It returns an
// INVALID_SCHEMA error if a record with the same name exists or if two
// fields share a name. The fields slice is copied.
func (s *Schema) AddRecord(name string, fields ...Field) error {
	s.ensureIndex()
	if _, ok := s.index[name]; ok {
		return errors.New(errors.ErrCodeInvalidSchema, "duplicate record %q", name)
	}
	if err := checkFields(name, fields); err != nil {
		return err
	}
	s.index[name] = len(s.Records)
	s.Records = append(s.Records, Record{Name: name, Fields: append([]Field(nil), fields...)})
	return nil
}

// Validate checks the ordered-mapping contract: record names are unique
// and field names are unique within each record.
func (s *Schema) Validate() error {
	if s == nil {
		return errors.New(errors.ErrCodeInvalidSchema, "schema is nil")
	}
	seen := make(map[string]struct{}, len(s.Records))
	for _, r := range s.Records {
		if _, ok := seen[r.Name]; ok {
			return errors.New(errors.ErrCodeInvalidSchema, "duplicate record %q", r.Name)
		}
		seen[r.Name] = struct{}{}
		if err := checkFields(r.Name, r.Fields); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of records.
func (s *Schema) Len() int { return len(s.Records) }

// Names returns record names in schema order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Records))
	for i, r := range s.Records {
		names[i] = r.Name
	}
	return names
}

// Record returns the record with the given name.
func (s *Schema) Record(name string) (Record, bool) {
	s.ensureIndex()
	i, ok := s.index[name]
	if !ok {
		return Record{}, false
	}
	return s.Records[i], true
}

// FieldCount returns the total number of fields across all records.
func (s *Schema) FieldCount() int {
	n := 0
	for _, r := range s.Records {
		n += len(r.Fields)
	}
	return n
}

// ensureIndex rebuilds the name index for schemas constructed as literals.
func (s *Schema) ensureIndex() {
	if s.index != nil && len(s.index) == len(s.Records) {
		return
	}
	s.index = make(map[string]int, len(s.Records))
	for i, r := range s.Records {
		if _, ok := s.index[r.Name]; !ok {
			s.index[r.Name] = i
		}
	}
}

func checkFields(record string, fields []Field) error {
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, ok := seen[f.Name]; ok {
			return errors.New(errors.ErrCodeInvalidSchema, "record %q: duplicate field %q", record, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}
