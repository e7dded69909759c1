// Package schema defines the ordered record/field model that schemaviz
// compiles, and the loaders that read it from disk.
//
// # Model
//
// A [Schema] is an ordered list of [Record] values, each holding an ordered
// list of [Field] name/type pairs. Type strings are opaque text; nothing in
// this package interprets them.
//
// # Formats
//
// Each file format has a [Loader]:
//
//   - [YAML]: .yml, .yaml and .json (mapping of record → mapping of field → type)
//   - [TOML]: .toml (one table per record)
//   - [HCL]: .hcl (record "Name" { field = "type" } blocks)
//   - [GraphQL]: .graphql, .graphqls, .gql (object, interface and input types)
//
// All loaders preserve document order. Malformed documents are reported as
// INVALID_SCHEMA errors and never partially loaded.
//
// # Usage
//
//	s, err := schema.LoadFile("zig-out/visual.yml", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, r := range s.Records {
//	    fmt.Println(r.Name, len(r.Fields))
//	}
package schema
