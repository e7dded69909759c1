package schema

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/schemaviz/pkg/errors"
)

// Loader reads a schema document in one concrete file format.
type Loader interface {
	// Parse decodes data into a schema. filename is used for diagnostics
	// only; it does not need to exist on disk.
	Parse(data []byte, filename string) (*Schema, error)
	// Supports reports whether this loader handles the given filename.
	Supports(filename string) bool
	// Type returns the format identifier (e.g., "yaml", "hcl").
	Type() string
}

// DefaultLoaders returns one instance of every built-in loader.
// YAML comes first so it also claims .json files.
func DefaultLoaders() []Loader {
	return []Loader{
		&YAML{},
		&TOML{},
		&HCL{},
		&GraphQL{},
	}
}

// Types returns the identifiers of the built-in loaders.
func Types() []string {
	loaders := DefaultLoaders()
	types := make([]string, len(loaders))
	for i, l := range loaders {
		types[i] = l.Type()
	}
	return types
}

// Detect finds a loader that supports the given file path.
// If no loaders are passed, [DefaultLoaders] is used.
func Detect(path string, loaders ...Loader) (Loader, error) {
	if len(loaders) == 0 {
		loaders = DefaultLoaders()
	}
	name := filepath.Base(path)
	for _, l := range loaders {
		if l.Supports(name) {
			return l, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnsupportedSchema, "unsupported schema file: %s (known types: %s)",
		name, strings.Join(Types(), ", "))
}

// LoaderFor returns the built-in loader with the given type identifier.
func LoaderFor(typ string) (Loader, error) {
	for _, l := range DefaultLoaders() {
		if l.Type() == strings.ToLower(typ) {
			return l, nil
		}
	}
	return nil, errors.New(errors.ErrCodeUnsupportedSchema, "unknown schema type %q (known types: %s)",
		typ, strings.Join(Types(), ", "))
}

// LoadFile reads and parses the schema at path. The loader is chosen by
// typ when non-empty, otherwise by file extension.
func LoadFile(path, typ string) (*Schema, error) {
	var (
		l   Loader
		err error
	)
	if typ != "" {
		l, err = LoaderFor(typ)
	} else {
		l, err = Detect(path)
	}
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "schema file %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return l.Parse(data, path)
}

// hasExt reports whether filename ends in one of exts, case-insensitively.
func hasExt(filename string, exts ...string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
