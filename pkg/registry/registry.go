// Package registry assigns every record of a schema a stable synthetic node
// identifier.
//
// Record names may contain characters that are unsafe as Graphviz node IDs
// (dots, colons, spaces), so nodes are addressed by generated identifiers
// instead: the i-th distinct record in schema order gets "struct<i>".
//
// A [Registry] is a bijection between record names and identifiers. It is
// backed by two maps built together, so a record literally named "struct0"
// can never be confused with the identifier "struct0". Registries are
// immutable once built and safe for concurrent reads.
//
//	reg := registry.New(s)
//	id := reg.MustID("Allocator")   // "struct0"
//	name := reg.MustName(id)        // "Allocator"
package registry

import (
	"strconv"

	"github.com/matzehuels/schemaviz/pkg/errors"
	"github.com/matzehuels/schemaviz/pkg/schema"
)

// IDPrefix is prepended to the record's position to form its identifier.
const IDPrefix = "struct"

// Registry is an immutable bidirectional mapping between record names and
// node identifiers.
type Registry struct {
	ids   map[string]string // record name -> identifier
	names map[string]string // identifier -> record name
	order []string          // record names in assignment order
}

// New builds a registry covering exactly the records of s, in schema order.
// A record name that repeats is assigned only on its first occurrence.
// Every name receives an identifier, however it is formed.
func New(s *schema.Schema) *Registry {
	r := &Registry{
		ids:   make(map[string]string),
		names: make(map[string]string),
	}
	if s == nil {
		return r
	}
	for _, rec := range s.Records {
		if _, seen := r.ids[rec.Name]; seen {
			continue
		}
		id := IDPrefix + strconv.Itoa(len(r.order))
		r.ids[rec.Name] = id
		r.names[id] = rec.Name
		r.order = append(r.order, rec.Name)
	}
	return r
}

// ID returns the identifier assigned to the named record.
func (r *Registry) ID(name string) (string, bool) {
	id, ok := r.ids[name]
	return id, ok
}

// Name returns the record name that owns the identifier.
func (r *Registry) Name(id string) (string, bool) {
	name, ok := r.names[id]
	return name, ok
}

// Has reports whether the named record is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.ids[name]
	return ok
}

// MustID returns the identifier of a registered record. Looking up a name
// outside the registry is a programming error and panics with an
// UNKNOWN_RECORD *errors.Error.
func (r *Registry) MustID(name string) string {
	id, ok := r.ids[name]
	if !ok {
		panic(errors.New(errors.ErrCodeUnknownRecord, "record %q is not registered", name))
	}
	return id
}

// MustName returns the record name for a known identifier. It panics like
// [Registry.MustID] for identifiers the registry did not assign.
func (r *Registry) MustName(id string) string {
	name, ok := r.names[id]
	if !ok {
		panic(errors.New(errors.ErrCodeUnknownRecord, "identifier %q is not registered", id))
	}
	return name
}

// Len returns the number of registered records.
func (r *Registry) Len() int { return len(r.order) }

// Names returns the registered record names in assignment order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}
